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

	"github.com/ucbrise/confluo-sub001/errs"
)

// floatType implements Type for Float (float32) and Double (float64).
type floatType struct {
	name   string
	kind   Kind
	size   int
	double bool
	maxVal float64
}

func (t floatType) decode(n Numeric) float64 {
	if t.double {
		return math.Float64frombits(n.bits)
	}
	return float64(math.Float32frombits(uint32(n.bits)))
}

func (t floatType) encode(v float64) Numeric {
	if t.double {
		return fromBits(t.kind, math.Float64bits(v))
	}
	return fromBits(t.kind, uint64(math.Float32bits(float32(v))))
}

func (t floatType) Name() string { return t.name }
func (t floatType) Kind() Kind   { return t.kind }
func (t floatType) Size() int    { return t.size }

func (t floatType) Zero() Numeric { return t.encode(0) }
func (t floatType) One() Numeric  { return t.encode(1) }
func (t floatType) Min() Numeric  { return t.encode(-t.maxVal) }
func (t floatType) Max() Numeric  { return t.encode(t.maxVal) }

func (t floatType) checkOperands(a, b Numeric) error {
	if a.kind != t.kind || b.kind != t.kind {
		return mismatched(t.name)
	}
	return nil
}

func (t floatType) Add(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return t.encode(t.decode(a) + t.decode(b)), nil
}

func (t floatType) Sub(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return t.encode(t.decode(a) - t.decode(b)), nil
}

func (t floatType) Mul(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return t.encode(t.decode(a) * t.decode(b)), nil
}

func (t floatType) Div(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	d := t.decode(b)
	if d == 0 {
		return Numeric{}, errs.New(errs.InvalidOp, "division by zero")
	}
	return t.encode(t.decode(a) / d), nil
}

func (t floatType) Mod(a, b Numeric) (Numeric, error) {
	if err := t.checkOperands(a, b); err != nil {
		return Numeric{}, err
	}
	return t.encode(math.Mod(t.decode(a), t.decode(b))), nil
}

func (t floatType) And(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.name, "bitwise and") }
func (t floatType) Or(a, b Numeric) (Numeric, error)  { return Numeric{}, unsupported(t.name, "bitwise or") }
func (t floatType) Xor(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.name, "bitwise xor") }
func (t floatType) Shl(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.name, "shift left") }
func (t floatType) Shr(a, b Numeric) (Numeric, error) { return Numeric{}, unsupported(t.name, "shift right") }
func (t floatType) BNot(a Numeric) (Numeric, error)   { return Numeric{}, unsupported(t.name, "bitwise not") }

func (t floatType) Neg(a Numeric) (Numeric, error) {
	if a.kind != t.kind {
		return Numeric{}, mismatched(t.name)
	}
	return t.encode(-t.decode(a)), nil
}

func (t floatType) Compare(a, b Numeric) (int, error) {
	if err := t.checkOperands(a, b); err != nil {
		return 0, err
	}
	x, y := t.decode(a), t.decode(b)
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	default:
		return 0, nil
	}
}

// KeyTransform uses the standard order-preserving IEEE-754 bit
// transform: flip every bit for negative values, flip only the sign bit
// for non-negative ones, so that the big-endian byte order of the
// result matches float order.
func (t floatType) KeyTransform(a Numeric, bucketSize float64) []byte {
	v := t.decode(a)
	if bucketSize != 1 {
		v = math.Floor(v / bucketSize)
	}
	if t.double {
		bits := math.Float64bits(v)
		if bits&(1<<63) != 0 {
			bits = ^bits
		} else {
			bits |= 1 << 63
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, bits)
		return buf
	}
	bits := math.Float32bits(float32(v))
	if bits&(1<<31) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 31
	}
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, bits)
	return buf
}

func (t floatType) Parse(s string) (Numeric, error) {
	bitSize := 32
	if t.double {
		bitSize = 64
	}
	v, err := strconv.ParseFloat(s, bitSize)
	if err != nil {
		return Numeric{}, errs.New(errs.ParseError, "parsing %q as %s: %v", s, t.name, err)
	}
	return t.encode(v), nil
}

func (t floatType) Format(a Numeric) string {
	bitSize := 32
	if t.double {
		bitSize = 64
	}
	return strconv.FormatFloat(t.decode(a), 'g', -1, bitSize)
}

func (t floatType) Serialize(a Numeric) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, a.bits)
	return buf[:t.size]
}

func (t floatType) Deserialize(b []byte) (Numeric, error) {
	if len(b) < t.size {
		return Numeric{}, errs.New(errs.ParseError, "short buffer for %s: need %d bytes, got %d", t.name, t.size, len(b))
	}
	buf := make([]byte, 8)
	copy(buf, b[:t.size])
	return fromBits(t.kind, binary.LittleEndian.Uint64(buf)), nil
}
