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
	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/exprast"
	"github.com/ucbrise/confluo-sub001/exprparse"
	"github.com/ucbrise/confluo-sub001/schema"
)

// Compile parses and compiles src against s, producing a
// CompiledExpression in disjunctive normal form. An empty src compiles
// to the universal expression (matches every record).
func Compile(s *schema.Schema, src string) (CompiledExpression, error) {
	if src == "" {
		return CompiledExpression{}, nil
	}
	n, err := exprparse.Parse(src)
	if err != nil {
		return nil, err
	}
	return CompileNode(s, n)
}

// CompileNode compiles an already-parsed exprast.Node, for callers
// that build or rewrite trees directly rather than through exprparse.
func CompileNode(s *schema.Schema, n exprast.Node) (CompiledExpression, error) {
	if n == nil {
		return CompiledExpression{}, nil
	}
	return compileDNF(s, normalize(n, false))
}

// normalize eliminates every Not node by pushing negation down to the
// leaves: a negated predicate swaps its relational operator; a negated
// And becomes an Or of negated children and vice versa (De Morgan); a
// nested Not flips the carried sign back off. The returned tree
// contains only Predicate/And/Or nodes.
func normalize(n exprast.Node, neg bool) exprast.Node {
	switch t := n.(type) {
	case *exprast.Predicate:
		op := t.Op
		if neg {
			op = op.Negate()
		}
		return &exprast.Predicate{Attr: t.Attr, Op: op, Value: t.Value}
	case *exprast.And:
		l, r := normalize(t.Left, neg), normalize(t.Right, neg)
		if neg {
			return &exprast.Or{Left: l, Right: r}
		}
		return &exprast.And{Left: l, Right: r}
	case *exprast.Or:
		l, r := normalize(t.Left, neg), normalize(t.Right, neg)
		if neg {
			return &exprast.And{Left: l, Right: r}
		}
		return &exprast.Or{Left: l, Right: r}
	case *exprast.Not:
		return normalize(t.Child, !neg)
	default:
		return n
	}
}

// compileDNF expands a Not-free tree into disjunctive normal form:
// Or distributes as set union of its sides' DNF; And distributes as
// the cross product (conjunction of each pair of minterms).
func compileDNF(s *schema.Schema, n exprast.Node) (CompiledExpression, error) {
	switch t := n.(type) {
	case *exprast.Predicate:
		cp, err := newCompiledPredicate(s, t)
		if err != nil {
			return nil, err
		}
		return CompiledExpression{newMinterm(cp)}, nil
	case *exprast.Or:
		left, err := compileDNF(s, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := compileDNF(s, t.Right)
		if err != nil {
			return nil, err
		}
		return union(left, right), nil
	case *exprast.And:
		left, err := compileDNF(s, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := compileDNF(s, t.Right)
		if err != nil {
			return nil, err
		}
		return distribute(left, right), nil
	default:
		return nil, errs.New(errs.ParseError, "unrecognized expression node %T", n)
	}
}
