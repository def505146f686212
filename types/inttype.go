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
	"encoding/binary"
	"math"
	"strconv"

	"golang.org/x/exp/constraints"

	"github.com/ucbrise/confluo-sub001/errs"
)

// intType implements Type for every fixed-width (un)signed integer Kind
// by parameterizing over Go's own integer types, rather than hand
// writing eight near-identical arithmetic tables the way the original
// engine's arithmetic_ops.h does per-type.
type intType[T constraints.Integer] struct {
	name   string
	kind   Kind
	size   int
	signed bool
	min    T
	max    T
}

func decodeInt[T constraints.Integer](n Numeric) T  { return T(n.bits) }
func encodeInt[T constraints.Integer](k Kind, v T) Numeric {
	return fromBits(k, uint64(v))
}

func (t intType[T]) Name() string { return t.name }
func (t intType[T]) Kind() Kind   { return t.kind }
func (t intType[T]) Size() int    { return t.size }

func (t intType[T]) Zero() Numeric { return encodeInt(t.kind, T(0)) }
func (t intType[T]) One() Numeric  { return encodeInt(t.kind, T(1)) }
func (t intType[T]) Min() Numeric  { return encodeInt(t.kind, t.min) }
func (t intType[T]) Max() Numeric  { return encodeInt(t.kind, t.max) }

func (t intType[T]) checkOperands(a, b Numeric) error {
	if a.kind != t.kind || b.kind != t.kind {
		return mismatched(t.name)
	}
	return nil
}

func (t intType[T]) Add(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return encodeInt(t.kind, decodeInt[T](a)+decodeInt[T](b)), nil
}

func (t intType[T]) Sub(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return encodeInt(t.kind, decodeInt[T](a)-decodeInt[T](b)), nil
}

func (t intType[T]) Mul(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return encodeInt(t.kind, decodeInt[T](a)*decodeInt[T](b)), nil
}

func (t intType[T]) Div(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	d := decodeInt[T](b)
	if d == 0 {
		return Numeric{}, errs.New(errs.InvalidOp, "division by zero")
	}
	return encodeInt(t.kind, decodeInt[T](a)/d), nil
}

func (t intType[T]) Mod(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	d := decodeInt[T](b)
	if d == 0 {
		return Numeric{}, errs.New(errs.InvalidOp, "modulo by zero")
	}
	return encodeInt(t.kind, decodeInt[T](a)%d), nil
}

func (t intType[T]) And(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return encodeInt(t.kind, decodeInt[T](a)&decodeInt[T](b)), nil
}

func (t intType[T]) Or(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return encodeInt(t.kind, decodeInt[T](a)|decodeInt[T](b)), nil
}

func (t intType[T]) Xor(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return encodeInt(t.kind, decodeInt[T](a)^decodeInt[T](b)), nil
}

func (t intType[T]) Shl(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return encodeInt(t.kind, decodeInt[T](a)<<uint(decodeInt[T](b))), nil
}

func (t intType[T]) Shr(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return encodeInt(t.kind, decodeInt[T](a)>>uint(decodeInt[T](b))), nil
}

func (t intType[T]) Neg(a Numeric) (Numeric, error) {
	if a.kind != t.kind {
		return Numeric{}, mismatched(t.name)
	}
	return encodeInt(t.kind, -decodeInt[T](a)), nil
}

func (t intType[T]) BNot(a Numeric) (Numeric, error) {
	if a.kind != t.kind {
		return Numeric{}, mismatched(t.name)
	}
	return encodeInt(t.kind, ^decodeInt[T](a)), nil
}

func (t intType[T]) Compare(a, b Numeric) (int, error) {
	if err := t.checkOperands(a, b); err != nil {
		return 0, err
	}
	x, y := decodeInt[T](a), decodeInt[T](b)
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	default:
		return 0, nil
	}
}

func (t intType[T]) KeyTransform(a Numeric, bucketSize float64) []byte {
	v := decodeInt[T](a)
	var scaled uint64
	if t.signed {
		sv := int64(v)
		if bucketSize != 1 {
			sv = int64(math.Floor(float64(sv) / bucketSize))
		}
		scaled = uint64(sv) ^ (uint64(1) << uint(t.size*8-1))
	} else {
		uv := uint64(v)
		if bucketSize != 1 {
			uv = uint64(math.Floor(float64(uv) / bucketSize))
		}
		scaled = uv
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, scaled)
	return buf[8-t.size:]
}

func (t intType[T]) Parse(s string) (Numeric, error) {
	if t.signed {
		v, err := strconv.ParseInt(s, 10, t.size*8)
		if err != nil {
			return Numeric{}, errs.New(errs.ParseError, "parsing %q as %s: %v", s, t.name, err)
		}
		return encodeInt(t.kind, T(v)), nil
	}
	v, err := strconv.ParseUint(s, 10, t.size*8)
	if err != nil {
		return Numeric{}, errs.New(errs.ParseError, "parsing %q as %s: %v", s, t.name, err)
	}
	return encodeInt(t.kind, T(v)), nil
}

func (t intType[T]) Format(a Numeric) string {
	v := decodeInt[T](a)
	if t.signed {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatUint(uint64(v), 10)
}

func (t intType[T]) Serialize(a Numeric) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, a.bits)
	return buf[:t.size]
}

func (t intType[T]) Deserialize(b []byte) (Numeric, error) {
	if len(b) < t.size {
		return Numeric{}, errs.New(errs.ParseError, "short buffer for %s: need %d bytes, got %d", t.name, t.size, len(b))
	}
	buf := make([]byte, 8)
	copy(buf, b[:t.size])
	return encodeInt(t.kind, T(binary.LittleEndian.Uint64(buf))), nil
}
