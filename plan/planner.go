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

package plan

import (
	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/exprast"
	"github.com/ucbrise/confluo-sub001/exprc"
)

// Step is one minterm's execution plan: scan Index over Ranges, and
// apply Residual (the minterm's full predicate set) to every candidate
// offset the scan produces.
type Step struct {
	Field    string
	Index    Index
	Ranges   []Range
	Residual exprc.CompiledMinterm
}

// Plan is the ordered set of Steps a CompiledExpression resolves to;
// Execute unions their candidate offsets with dedup.
type Plan struct {
	Steps []Step
}

// New plans expr against indexes. Every minterm in expr must have at
// least one predicate whose field is indexed and whose derived range
// isn't empty after intersecting with any other predicates on the same
// field; if any minterm has no indexed predicate at all, New returns a
// no-valid-index error rather than silently planning a subset of the
// expression (callers that want to fall back to a full scan for an
// unplannable minterm must detect this error and decide that
// themselves, matching the "the core does not implicitly full-scan"
// rule).
func New(indexes IndexSet, expr exprc.CompiledExpression) (*Plan, error) {
	p := &Plan{}
	for _, m := range expr {
		groups := make(map[string][]Range)
		var order []string
		for _, pred := range m {
			idx, ok := indexes.Lookup(pred.FieldName)
			if !ok {
				continue
			}
			ranges, err := deriveRanges(idx, pred)
			if err != nil {
				return nil, err
			}
			if existing, ok := groups[pred.FieldName]; ok {
				groups[pred.FieldName] = intersectSets(existing, ranges)
			} else {
				groups[pred.FieldName] = ranges
				order = append(order, pred.FieldName)
			}
		}
		if len(order) == 0 {
			return nil, errs.New(errs.NotFound, "minterm %q has no indexed predicate", m.String())
		}

		bestField := ""
		var bestRanges []Range
		bestCount := ^uint64(0)
		anyViable := false
		for _, field := range order {
			ranges := groups[field]
			if len(ranges) == 0 {
				continue // this field's constraints are contradictory; try another
			}
			idx, _ := indexes.Lookup(field)
			var total uint64
			for _, r := range ranges {
				c, err := idx.ApproxCount(r.Lo, r.Hi)
				if err != nil {
					return nil, err
				}
				total += c
			}
			if !anyViable || total < bestCount {
				anyViable = true
				bestField = field
				bestRanges = ranges
				bestCount = total
			}
		}
		if !anyViable {
			// Every indexed field's constraints were contradictory
			// (e.g. d>5 && d<3): this minterm matches no rows at all.
			continue
		}
		idx, _ := indexes.Lookup(bestField)
		residual := make(exprc.CompiledMinterm, len(m))
		copy(residual, m)
		p.Steps = append(p.Steps, Step{
			Field:    bestField,
			Index:    idx,
			Ranges:   bestRanges,
			Residual: residual,
		})
	}
	return p, nil
}

// deriveRanges implements spec.md's six relop-to-range rules.
func deriveRanges(idx Index, pred *exprc.CompiledPredicate) ([]Range, error) {
	t := idx.FieldType()
	k := t.KeyTransform(pred.Value, idx.BucketSize())
	kmin := t.KeyTransform(t.Min(), idx.BucketSize())
	kmax := t.KeyTransform(t.Max(), idx.BucketSize())

	switch pred.Op {
	case exprast.EQ:
		return []Range{{Lo: k, Hi: k}}, nil
	case exprast.GE:
		return []Range{{Lo: k, Hi: kmax}}, nil
	case exprast.LE:
		return []Range{{Lo: kmin, Hi: k}}, nil
	case exprast.GT:
		if lo, ok := incKey(k); ok {
			return []Range{{Lo: lo, Hi: kmax}}, nil
		}
		return nil, nil // k is already the maximum key: nothing is strictly greater
	case exprast.LT:
		if hi, ok := decKey(k); ok {
			return []Range{{Lo: kmin, Hi: hi}}, nil
		}
		return nil, nil
	case exprast.NEQ:
		var out []Range
		if hi, ok := decKey(k); ok {
			out = append(out, Range{Lo: kmin, Hi: hi})
		}
		if lo, ok := incKey(k); ok {
			out = append(out, Range{Lo: lo, Hi: kmax})
		}
		return out, nil
	default:
		return nil, errs.New(errs.InvalidOp, "unsupported relational operator %v for index range derivation", pred.Op)
	}
}
