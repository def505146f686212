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
	"github.com/ucbrise/confluo-sub001/exprast"
	"github.com/ucbrise/confluo-sub001/schema"
	"github.com/ucbrise/confluo-sub001/types"
)

// CompiledPredicate is a leaf predicate with its attribute resolved to
// a schema column and its literal parsed into that column's type.
type CompiledPredicate struct {
	FieldName  string
	FieldIndex int
	Op         exprast.RelOp
	Value      types.Numeric
	fieldType  types.Type
}

func newCompiledPredicate(s *schema.Schema, p *exprast.Predicate) (*CompiledPredicate, error) {
	col, err := s.ColumnByName(p.Attr)
	if err != nil {
		return nil, err
	}
	v, err := col.Type.Parse(p.Value)
	if err != nil {
		return nil, err
	}
	return &CompiledPredicate{
		FieldName:  col.Name,
		FieldIndex: int(col.Idx),
		Op:         p.Op,
		Value:      v,
		fieldType:  col.Type,
	}, nil
}

// Test reports whether rec's field satisfies this predicate.
func (p *CompiledPredicate) Test(rec schema.Record) (bool, error) {
	v, err := rec.At(p.FieldIndex)
	if err != nil {
		return false, err
	}
	cmp, err := p.fieldType.Compare(v, p.Value)
	if err != nil {
		return false, err
	}
	return relHolds(p.Op, cmp), nil
}

func relHolds(op exprast.RelOp, cmp int) bool {
	switch op {
	case exprast.EQ:
		return cmp == 0
	case exprast.NEQ:
		return cmp != 0
	case exprast.LT:
		return cmp < 0
	case exprast.LE:
		return cmp <= 0
	case exprast.GT:
		return cmp > 0
	case exprast.GE:
		return cmp >= 0
	default:
		return false
	}
}

// String is the predicate's canonical form, used both for
// human-readable diagnostics and as the basis of minterm/expression
// deduplication and ordering.
func (p *CompiledPredicate) String() string {
	return p.FieldName + p.Op.String() + p.fieldType.Format(p.Value)
}
