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
	"strconv"

	"github.com/ucbrise/confluo-sub001/errs"
)

// boolType implements Type for Bool. It supports relational comparison
// and bitwise/logical ops (treating false/true as 0/1) but not
// arithmetic, matching the original engine's data_type for D_BOOL.
type boolType struct{}

func (boolType) Name() string { return "bool" }
func (boolType) Kind() Kind   { return Bool }
func (boolType) Size() int    { return 1 }

func (boolType) Zero() Numeric { return NewBool(false) }
func (boolType) One() Numeric  { return NewBool(true) }
func (boolType) Min() Numeric  { return NewBool(false) }
func (boolType) Max() Numeric  { return NewBool(true) }

func (t boolType) checkOperands(a, b Numeric) error {
	if a.kind != Bool || b.kind != Bool {
		return mismatched(t.Name())
	}
	return nil
}

func (t boolType) Add(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "add") }
func (t boolType) Sub(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "sub") }
func (t boolType) Mul(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "mul") }
func (t boolType) Div(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "div") }
func (t boolType) Mod(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "mod") }

func (t boolType) And(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return NewBool(a.Bool() && b.Bool()), nil
}

func (t boolType) Or(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return NewBool(a.Bool() || b.Bool()), nil
}

func (t boolType) Xor(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return NewBool(a.Bool() != b.Bool()), nil
}

func (t boolType) Shl(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "shift left") }
func (t boolType) Shr(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.Name(), "shift right") }
func (t boolType) Neg(a Numeric) (Numeric, error)    { return Numeric{}, unsupported(t.Name(), "negate") }

func (t boolType) BNot(a Numeric) (Numeric, error) {
	if a.kind != Bool {
		return Numeric{}, mismatched(t.Name())
	}
	return NewBool(!a.Bool()), nil
}

func (t boolType) Compare(a, b Numeric) (int, error) {
	if err := t.checkOperands(a, b); err != nil {
		return 0, err
	}
	x, y := a.Bool(), b.Bool()
	switch {
	case x == y:
		return 0, nil
	case !x && y:
		return -1, nil
	default:
		return 1, nil
	}
}

func (boolType) KeyTransform(a Numeric, _ float64) []byte {
	if a.Bool() {
		return []byte{1}
	}
	return []byte{0}
}

func (t boolType) Parse(s string) (Numeric, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return Numeric{}, errs.New(errs.ParseError, "parsing %q as bool: %v", s, err)
	}
	return NewBool(v), nil
}

func (boolType) Format(a Numeric) string { return strconv.FormatBool(a.Bool()) }

func (boolType) Serialize(a Numeric) []byte {
	if a.Bool() {
		return []byte{1}
	}
	return []byte{0}
}

func (t boolType) Deserialize(b []byte) (Numeric, error) {
	if len(b) < 1 {
		return Numeric{}, errs.New(errs.ParseError, "short buffer for bool")
	}
	return NewBool(b[0] != 0), nil
}
