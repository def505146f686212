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

package exprc

import (
	"testing"

	"github.com/ucbrise/confluo-sub001/schema"
	"github.com/ucbrise/confluo-sub001/types"
)

func buildDASchema(t *testing.T) (*schema.Schema, int, int) {
	t.Helper()
	intT, err := types.Lookup("int", 0)
	if err != nil {
		t.Fatal(err)
	}
	boolT, err := types.Lookup("bool", 0)
	if err != nil {
		t.Fatal(err)
	}
	s, err := schema.NewBuilder().AddColumn("d", intT).AddColumn("a", boolT).Build()
	if err != nil {
		t.Fatal(err)
	}
	dIdx, _ := s.FieldIndex("d")
	aIdx, _ := s.FieldIndex("a")
	return s, dIdx, aIdx
}

func rec(t *testing.T, s *schema.Schema, d int32, a bool) schema.Record {
	t.Helper()
	buf := make([]byte, s.RecordSize())
	tsCol, _ := s.Column(0)
	copy(buf[tsCol.Offset:tsCol.End()], tsCol.Type.Serialize(types.NewULong(0)))
	dCol, _ := s.Column(1)
	copy(buf[dCol.Offset:dCol.End()], dCol.Type.Serialize(types.NewInt(d)))
	aCol, _ := s.Column(2)
	copy(buf[aCol.Offset:aCol.End()], aCol.Type.Serialize(types.NewBool(a)))
	return s.Apply(0, buf)
}

func TestCompileSinglePredicate(t *testing.T) {
	s, _, _ := buildDASchema(t)
	e, err := Compile(s, "a==true")
	if err != nil {
		t.Fatal(err)
	}
	if len(e) != 1 || len(e[0]) != 1 {
		t.Fatalf("got %+v, want one minterm with one predicate", e)
	}
	ok, err := e.Test(rec(t, s, 1, true))
	if err != nil || !ok {
		t.Fatalf("Test(a=true) = %v, %v, want true, nil", ok, err)
	}
	ok, err = e.Test(rec(t, s, 1, false))
	if err != nil || ok {
		t.Fatalf("Test(a=false) = %v, %v, want false, nil", ok, err)
	}
}

func TestCompileAndDistributesOverMinterm(t *testing.T) {
	s, _, _ := buildDASchema(t)
	e, err := Compile(s, "d>5 && a==true")
	if err != nil {
		t.Fatal(err)
	}
	if len(e) != 1 || len(e[0]) != 2 {
		t.Fatalf("got %+v, want a single 2-predicate minterm", e)
	}
	if ok, _ := e.Test(rec(t, s, 6, true)); !ok {
		t.Fatal("expected d=6,a=true to match")
	}
	if ok, _ := e.Test(rec(t, s, 4, true)); ok {
		t.Fatal("expected d=4,a=true to not match (d>5 fails)")
	}
}

func TestCompileOrUnionsMinterms(t *testing.T) {
	s, _, _ := buildDASchema(t)
	e, err := Compile(s, "d==1 || d==2")
	if err != nil {
		t.Fatal(err)
	}
	if len(e) != 2 {
		t.Fatalf("got %d minterms, want 2", len(e))
	}
	if ok, _ := e.Test(rec(t, s, 1, false)); !ok {
		t.Fatal("expected d=1 to match")
	}
	if ok, _ := e.Test(rec(t, s, 3, false)); ok {
		t.Fatal("expected d=3 to not match")
	}
}

func TestCompileDistributesAndOverOr(t *testing.T) {
	s, _, _ := buildDASchema(t)
	// (d==1 || d==2) && a==true expands to two minterms:
	// {d==1,a==true} or {d==2,a==true}
	e, err := Compile(s, "(d==1 || d==2) && a==true")
	if err != nil {
		t.Fatal(err)
	}
	if len(e) != 2 {
		t.Fatalf("got %d minterms, want 2: %s", len(e), e.String())
	}
	if ok, _ := e.Test(rec(t, s, 2, true)); !ok {
		t.Fatal("expected d=2,a=true to match")
	}
	if ok, _ := e.Test(rec(t, s, 2, false)); ok {
		t.Fatal("expected d=2,a=false to not match")
	}
}

func TestCompileNegationFlipsRelOp(t *testing.T) {
	s, _, _ := buildDASchema(t)
	e, err := Compile(s, "!(d < 5)")
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := e.Test(rec(t, s, 5, false)); !ok {
		t.Fatal("expected d=5 (not < 5) to match")
	}
	if ok, _ := e.Test(rec(t, s, 4, false)); ok {
		t.Fatal("expected d=4 (< 5) to not match")
	}
}

func TestCompileDeMorganOnConjunction(t *testing.T) {
	s, _, _ := buildDASchema(t)
	// !(d==1 && a==true) == (d!=1 || a==false), two minterms.
	e, err := Compile(s, "!(d==1 && a==true)")
	if err != nil {
		t.Fatal(err)
	}
	if len(e) != 2 {
		t.Fatalf("got %d minterms, want 2: %s", len(e), e.String())
	}
	if ok, _ := e.Test(rec(t, s, 1, true)); ok {
		t.Fatal("expected d=1,a=true to not match the negated conjunction")
	}
	if ok, _ := e.Test(rec(t, s, 1, false)); !ok {
		t.Fatal("expected d=1,a=false to match")
	}
}

func TestCompileEmptyExpressionMatchesEverything(t *testing.T) {
	s, _, _ := buildDASchema(t)
	e, err := Compile(s, "")
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := e.Test(rec(t, s, 0, false)); !ok {
		t.Fatal("empty expression should match every record")
	}
}

func TestCompileCanonicalFormIsDeterministic(t *testing.T) {
	s, _, _ := buildDASchema(t)
	e1, err := Compile(s, "a==true && d==1")
	if err != nil {
		t.Fatal(err)
	}
	e2, err := Compile(s, "d==1 && a==true")
	if err != nil {
		t.Fatal(err)
	}
	if e1.String() != e2.String() {
		t.Fatalf("canonical forms differ: %q vs %q", e1.String(), e2.String())
	}
	if e1.Hash() != e2.Hash() {
		t.Fatal("hashes of equivalent expressions should match")
	}
}

func TestCompileUnknownFieldFails(t *testing.T) {
	s, _, _ := buildDASchema(t)
	if _, err := Compile(s, "nosuchfield==1"); err == nil {
		t.Fatal("expected an error referencing an unknown field")
	}
}
