// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package types

import (
	"bytes"
	"testing"

	"github.com/ucbrise/confluo-sub001/errs"
)

func mustType(t *testing.T, name string, size int) Type {
	t.Helper()
	ty, err := Lookup(name, size)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}
	return ty
}

// TestParseFormatRoundTrip is round-trip law R1: parse(format(v)) == v.
func TestParseFormatRoundTrip(t *testing.T) {
	cases := []struct {
		typeName string
		size     int
		value    Numeric
	}{
		{"bool", 0, NewBool(true)},
		{"char", 0, NewChar(-12)},
		{"uchar", 0, NewUChar(200)},
		{"short", 0, NewShort(-1000)},
		{"ushort", 0, NewUShort(60000)},
		{"int", 0, NewInt(-123456)},
		{"uint", 0, NewUInt(123456)},
		{"long", 0, NewLong(-123456789012)},
		{"ulong", 0, NewULong(123456789012)},
		{"float", 0, NewFloat(3.5)},
		{"double", 0, NewDouble(2.718281828)},
	}
	for _, c := range cases {
		ty := mustType(t, c.typeName, c.size)
		s := ty.Format(c.value)
		got, err := ty.Parse(s)
		if err != nil {
			t.Fatalf("%s: Parse(%q): %v", c.typeName, s, err)
		}
		cmp, err := ty.Compare(got, c.value)
		if err != nil {
			t.Fatalf("%s: Compare: %v", c.typeName, err)
		}
		if cmp != 0 {
			t.Fatalf("%s: parse(format(v)) = %v, want %v", c.typeName, ty.Format(got), ty.Format(c.value))
		}
	}
}

// TestSerializeDeserializeRoundTrip is round-trip law R2.
func TestSerializeDeserializeRoundTrip(t *testing.T) {
	str := mustType(t, "string", 8)
	strVal, err := str.Parse("abc")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		typeName string
		size     int
		value    Numeric
	}{
		{"bool", 0, NewBool(true)},
		{"char", 0, NewChar(-1)},
		{"int", 0, NewInt(-7)},
		{"ulong", 0, NewULong(1 << 40)},
		{"double", 0, NewDouble(-1.5)},
		{"string", 8, strVal},
	}
	for _, c := range cases {
		ty := mustType(t, c.typeName, c.size)
		b := ty.Serialize(c.value)
		got, err := ty.Deserialize(b)
		if err != nil {
			t.Fatalf("%s: Deserialize: %v", c.typeName, err)
		}
		if c.typeName == "string" {
			if !bytes.Equal(got.Bytes(), c.value.Bytes()) {
				t.Fatalf("string: got %v, want %v", got.Bytes(), c.value.Bytes())
			}
			continue
		}
		cmp, err := ty.Compare(got, c.value)
		if err != nil {
			t.Fatalf("%s: Compare: %v", c.typeName, err)
		}
		if cmp != 0 {
			t.Fatalf("%s: deserialize(serialize(v)) != v", c.typeName)
		}
	}
}

// TestKeyTransformOrderPreserving is round-trip law R3.
func TestKeyTransformOrderPreserving(t *testing.T) {
	intT := mustType(t, "int", 0)
	pairs := [][2]int32{{-5, 10}, {-100, -5}, {0, 1}, {2147483646, 2147483647}}
	for _, p := range pairs {
		k1 := intT.KeyTransform(NewInt(p[0]), 1)
		k2 := intT.KeyTransform(NewInt(p[1]), 1)
		if bytes.Compare(k1, k2) >= 0 {
			t.Fatalf("K(%d) >= K(%d), want <", p[0], p[1])
		}
	}

	ulongT := mustType(t, "ulong", 0)
	k1 := ulongT.KeyTransform(NewULong(5), 1)
	k2 := ulongT.KeyTransform(NewULong(1<<62), 1)
	if bytes.Compare(k1, k2) >= 0 {
		t.Fatal("ulong key transform not order preserving")
	}

	doubleT := mustType(t, "double", 0)
	dk1 := doubleT.KeyTransform(NewDouble(-1.5), 1)
	dk2 := doubleT.KeyTransform(NewDouble(2.25), 1)
	if bytes.Compare(dk1, dk2) >= 0 {
		t.Fatal("double key transform not order preserving across sign")
	}
}

func TestMismatchedTypeArithmeticErrors(t *testing.T) {
	intT := mustType(t, "int", 0)
	_, err := intT.Add(NewInt(1), NewLong(2))
	if err == nil {
		t.Fatal("expected error mixing int and long operands")
	}
	if k, ok := errs.KindOf(err); !ok || k != errs.InvalidOp {
		t.Fatalf("expected InvalidOp kind, got %v (ok=%v)", k, ok)
	}
}

func TestStringUnsupportedArithmetic(t *testing.T) {
	str := mustType(t, "string", 4)
	v, _ := str.Parse("ab")
	_, err := str.Add(v, v)
	if err == nil {
		t.Fatal("expected UnsupportedOp for string Add")
	}
}

func TestCountAggregatorAddsOnePerRecord(t *testing.T) {
	_, agg, err := LookupAggregator("count")
	if err != nil {
		t.Fatal(err)
	}
	intT := mustType(t, "int", 0)
	resultType := agg.ResultType(intT)
	acc := agg.Identity(resultType)
	for i := 0; i < 5; i++ {
		acc, err = agg.SeqCombine(resultType, acc, NewInt(999)) // value should be ignored
		if err != nil {
			t.Fatal(err)
		}
	}
	if acc.ULong() != 5 {
		t.Fatalf("count = %d, want 5", acc.ULong())
	}
}
