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

import "math"

// Numeric is a tagged union of a scalar Kind plus up to 8 bytes of
// inline storage, the way records and aggregate cells hold values
// in-memory. Comparisons and arithmetic require matching Kinds; there
// is no implicit promotion, except that a count aggregate always uses
// ULong regardless of the source column's type.
//
// String values don't fit the 8-byte inline budget, so a Numeric of
// Kind String instead carries its backing slice directly (the slice
// header itself is a small fixed descriptor, playing the same role the
// original engine's raw byte pointers play for variable-width values).
// Numerics of any other Kind never touch the Bytes field.
type Numeric struct {
	kind  Kind
	bits  uint64
	bytes []byte
}

// Kind returns the Numeric's scalar type tag.
func (n Numeric) Kind() Kind { return n.kind }

// Bits returns the raw inline bit pattern for a non-string Numeric.
func (n Numeric) Bits() uint64 { return n.bits }

// Bytes returns the backing slice of a String Numeric.
func (n Numeric) Bytes() []byte { return n.bytes }

func fromBits(k Kind, bits uint64) Numeric { return Numeric{kind: k, bits: bits} }

// NewBool constructs a Bool Numeric.
func NewBool(v bool) Numeric {
	var b uint64
	if v {
		b = 1
	}
	return fromBits(Bool, b)
}

// Bool returns the boolean value of a Bool Numeric.
func (n Numeric) Bool() bool { return n.bits != 0 }

// NewChar, NewUChar, ... construct Numerics of the matching Kind from
// their native Go representation, sign/zero-extended into the 64-bit
// inline storage so that a later truncating conversion back to the
// narrower type recovers the original bit pattern exactly.
func NewChar(v int8) Numeric     { return fromBits(Char, uint64(uint8(v))|signExtendMask(uint64(uint8(v)), 8)) }
func NewUChar(v uint8) Numeric   { return fromBits(UChar, uint64(v)) }
func NewShort(v int16) Numeric   { return fromBits(Short, uint64(uint16(v))|signExtendMask(uint64(uint16(v)), 16)) }
func NewUShort(v uint16) Numeric { return fromBits(UShort, uint64(v)) }
func NewInt(v int32) Numeric     { return fromBits(Int, uint64(uint32(v))|signExtendMask(uint64(uint32(v)), 32)) }
func NewUInt(v uint32) Numeric   { return fromBits(UInt, uint64(v)) }
func NewLong(v int64) Numeric    { return fromBits(Long, uint64(v)) }
func NewULong(v uint64) Numeric  { return fromBits(ULong, v) }
func NewFloat(v float32) Numeric { return fromBits(Float, uint64(math.Float32bits(v))) }
func NewDouble(v float64) Numeric {
	return fromBits(Double, math.Float64bits(v))
}

// NewString constructs a String Numeric over a fixed-width buffer. The
// caller owns b; callers that need independence should copy first.
func NewString(b []byte) Numeric { return Numeric{kind: String, bytes: b} }

func signExtendMask(v uint64, fromBits int) uint64 {
	signBit := uint64(1) << (fromBits - 1)
	if v&signBit == 0 {
		return 0
	}
	return ^uint64(0) << fromBits
}

func (n Numeric) Char() int8     { return int8(n.bits) }
func (n Numeric) UChar() uint8   { return uint8(n.bits) }
func (n Numeric) Short() int16   { return int16(n.bits) }
func (n Numeric) UShort() uint16 { return uint16(n.bits) }
func (n Numeric) Int() int32     { return int32(n.bits) }
func (n Numeric) UInt() uint32   { return uint32(n.bits) }
func (n Numeric) Long() int64    { return int64(n.bits) }
func (n Numeric) ULong() uint64  { return n.bits }
func (n Numeric) Float() float32 { return math.Float32frombits(uint32(n.bits)) }
func (n Numeric) Double() float64 {
	return math.Float64frombits(n.bits)
}

// AsFloat64 widens any numeric Kind to a float64 for generic use by
// aggregators and the planner; it is not subject to the "no implicit
// promotion" rule, which only governs Type.Add/Compare/etc. between two
// Numerics.
func (n Numeric) AsFloat64() float64 {
	switch n.kind {
	case Bool:
		if n.Bool() {
			return 1
		}
		return 0
	case Char:
		return float64(n.Char())
	case UChar:
		return float64(n.UChar())
	case Short:
		return float64(n.Short())
	case UShort:
		return float64(n.UShort())
	case Int:
		return float64(n.Int())
	case UInt:
		return float64(n.UInt())
	case Long:
		return float64(n.Long())
	case ULong:
		return float64(n.ULong())
	case Float:
		return float64(n.Float())
	case Double:
		return n.Double()
	default:
		return 0
	}
}
