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

// Kind tags the scalar type of a Numeric or a column. It mirrors the
// schema DSL of the external parser (bool, char, uchar, short, ushort,
// int, uint, long, ulong, float, double, string(N)).
type Kind uint8

const (
	// None is the invalid/zero Kind; a Numeric with this Kind carries
	// no value.
	None Kind = iota
	Bool
	Char
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	Float
	Double
	String
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Char:
		return "char"
	case UChar:
		return "uchar"
	case Short:
		return "short"
	case UShort:
		return "ushort"
	case Int:
		return "int"
	case UInt:
		return "uint"
	case Long:
		return "long"
	case ULong:
		return "ulong"
	case Float:
		return "float"
	case Double:
		return "double"
	case String:
		return "string"
	default:
		return "none"
	}
}

// IsNumeric reports whether Kind supports arithmetic and can therefore
// back an Aggregator.
func (k Kind) IsNumeric() bool {
	switch k {
	case Char, UChar, Short, UShort, Int, UInt, Long, ULong, Float, Double:
		return true
	default:
		return false
	}
}
