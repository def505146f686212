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
	"fmt"

	"github.com/ucbrise/confluo-sub001/errs"
)

// stringType implements Type for a fixed-width string(N) column: values
// are zero-padded on the right to exactly N bytes, which makes the
// padded bytes themselves already a valid, order-preserving key (no
// numeric scaling applies, so KeyTransform ignores bucketSize).
type stringType struct {
	size int
}

func (t stringType) Name() string { return fmt.Sprintf("string(%d)", t.size) }
func (stringType) Kind() Kind     { return String }
func (t stringType) Size() int    { return t.size }

func (t stringType) pad(b []byte) []byte {
	out := make([]byte, t.size)
	n := copy(out, b)
	_ = n
	return out
}

func (t stringType) Zero() Numeric { return NewString(make([]byte, t.size)) }
func (t stringType) One() Numeric  { return Numeric{} }
func (t stringType) Min() Numeric  { return NewString(make([]byte, t.size)) }
func (t stringType) Max() Numeric {
	b := make([]byte, t.size)
	for i := range b {
		b[i] = 0xff
	}
	return NewString(b)
}

func (t stringType) Add(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "add") }
func (t stringType) Sub(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "sub") }
func (t stringType) Mul(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "mul") }
func (t stringType) Div(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "div") }
func (t stringType) Mod(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "mod") }
func (t stringType) And(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "bitwise and") }
func (t stringType) Or(a, b Numeric) (Numeric, error)  { return Numeric{}, unsupported(t.Name(), "bitwise or") }
func (t stringType) Xor(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "bitwise xor") }
func (t stringType) Shl(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "shift left") }
func (t stringType) Shr(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "shift right") }
func (t stringType) Neg(a Numeric) (Numeric, error)    { return Numeric{}, unsupported(t.Name(), "negate") }
func (t stringType) BNot(a Numeric) (Numeric, error)   { return Numeric{}, unsupported(t.Name(), "bitwise not") }

func (t stringType) Compare(a, b Numeric) (int, error) {
	if a.kind != String || b.kind != String {
		return 0, mismatched(t.Name())
	}
	return bytes.Compare(a.bytes, b.bytes), nil
}

func (t stringType) KeyTransform(a Numeric, _ float64) []byte {
	return t.pad(a.bytes)
}

func (t stringType) Parse(s string) (Numeric, error) {
	b := []byte(s)
	if len(b) > t.size {
		return Numeric{}, errs.New(errs.ParseError, "string %q exceeds string(%d)", s, t.size)
	}
	return NewString(t.pad(b)), nil
}

func (t stringType) Format(a Numeric) string {
	return string(bytes.TrimRight(a.bytes, "\x00"))
}

func (t stringType) Serialize(a Numeric) []byte {
	return t.pad(a.bytes)
}

func (t stringType) Deserialize(b []byte) (Numeric, error) {
	if len(b) < t.size {
		return Numeric{}, errs.New(errs.ParseError, "short buffer for string(%d): got %d", t.size, len(b))
	}
	cp := make([]byte, t.size)
	copy(cp, b[:t.size])
	return NewString(cp), nil
}
