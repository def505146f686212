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

import "github.com/ucbrise/confluo-sub001/errs"

// Type is the capability set every scalar type in the engine supplies.
// Unsupported operations (e.g. arithmetic on String) return an
// errs.UnsupportedOp error rather than panicking.
type Type interface {
	// Name is the schema-DSL spelling of the type ("int", "string", ...).
	Name() string
	// Kind is this type's tag.
	Kind() Kind
	// Size is the fixed on-the-wire byte size of a value of this type.
	Size() int

	Zero() Numeric
	Min() Numeric
	Max() Numeric
	One() Numeric

	Add(a, b Numeric) (Numeric, error)
	Sub(a, b Numeric) (Numeric, error)
	Mul(a, b Numeric) (Numeric, error)
	Div(a, b Numeric) (Numeric, error)
	Mod(a, b Numeric) (Numeric, error)
	And(a, b Numeric) (Numeric, error)
	Or(a, b Numeric) (Numeric, error)
	Xor(a, b Numeric) (Numeric, error)
	Shl(a, b Numeric) (Numeric, error)
	Shr(a, b Numeric) (Numeric, error)
	Neg(a Numeric) (Numeric, error)
	BNot(a Numeric) (Numeric, error)

	// Compare returns -1, 0 or 1 the way bytes.Compare does, or an
	// error if either operand doesn't carry this type's Kind.
	Compare(a, b Numeric) (int, error)

	// KeyTransform maps a value plus a time/range bucket width to a
	// lexicographically-ordered fixed-length byte string, such that
	// K(v1) < K(v2) iff v1 < v2 (after bucket-size scaling). bucketSize
	// is ignored by types (such as String) for which scaling has no
	// meaning.
	KeyTransform(a Numeric, bucketSize float64) []byte

	Parse(s string) (Numeric, error)
	Format(a Numeric) string

	Serialize(a Numeric) []byte
	Deserialize(b []byte) (Numeric, error)
}

func unsupported(typeName, op string) error {
	return errs.New(errs.UnsupportedOp, "%s does not support %s", typeName, op)
}

func mismatched(typeName string) error {
	return errs.New(errs.InvalidOp, "operand does not have type %s", typeName)
}
