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
	"strings"

	"github.com/dchest/siphash"
	"golang.org/x/exp/slices"

	"github.com/ucbrise/confluo-sub001/schema"
)

// CompiledMinterm is a conjunction of predicates: a record matches the
// minterm only if every predicate in it holds. Predicates are kept
// sorted by canonical string form so two minterms built from
// differently-ordered AND chains compare and dedup identically.
type CompiledMinterm []*CompiledPredicate

func newMinterm(preds ...*CompiledPredicate) CompiledMinterm {
	m := append(CompiledMinterm(nil), preds...)
	sortMinterm(m)
	return m
}

func sortMinterm(m CompiledMinterm) {
	slices.SortFunc(m, func(a, b *CompiledPredicate) bool { return a.String() < b.String() })
}

// merge returns the conjunction of two minterms (the predicates of
// both), used when And distributes one DNF over another.
func (m CompiledMinterm) merge(other CompiledMinterm) CompiledMinterm {
	out := make(CompiledMinterm, 0, len(m)+len(other))
	out = append(out, m...)
	out = append(out, other...)
	sortMinterm(out)
	return out
}

// Test reports whether rec satisfies every predicate in the minterm.
func (m CompiledMinterm) Test(rec schema.Record) (bool, error) {
	for _, p := range m {
		ok, err := p.Test(rec)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// String is the minterm's canonical form: its predicates' own
// canonical forms, sorted, joined by " and ".
func (m CompiledMinterm) String() string {
	strs := make([]string, len(m))
	for i, p := range m {
		strs[i] = p.String()
	}
	return strings.Join(strs, " and ")
}

// CompiledExpression is a disjunction of minterms: a record matches
// the expression if any minterm matches, or if the expression is
// empty (the universal "always true" filter). Minterms are kept
// sorted and deduplicated by canonical string form.
type CompiledExpression []CompiledMinterm

// Test implements filter.Predicate.
func (e CompiledExpression) Test(rec schema.Record) (bool, error) {
	if len(e) == 0 {
		return true, nil
	}
	for _, m := range e {
		ok, err := m.Test(rec)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// String is the expression's canonical form: its minterms' own
// canonical forms, sorted, joined by " or ".
func (e CompiledExpression) String() string {
	strs := make([]string, len(e))
	for i, m := range e {
		strs[i] = m.String()
	}
	return strings.Join(strs, " or ")
}

// Hash returns a fast, non-cryptographic digest (zero-keyed siphash) of
// the expression's canonical form, so two expressions that compile to
// the same DNF hash equally.
func (e CompiledExpression) Hash() uint64 {
	return siphash.Hash(0, 0, []byte(e.String()))
}

// union merges two DNF sets, deduplicating minterms by canonical
// string and keeping the result sorted.
func union(a, b CompiledExpression) CompiledExpression {
	seen := make(map[string]bool, len(a)+len(b))
	out := make(CompiledExpression, 0, len(a)+len(b))
	for _, m := range a {
		if s := m.String(); !seen[s] {
			seen[s] = true
			out = append(out, m)
		}
	}
	for _, m := range b {
		if s := m.String(); !seen[s] {
			seen[s] = true
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b CompiledMinterm) bool { return a.String() < b.String() })
	return out
}

// distribute implements AND over two DNF sets: the cross product of
// every pair of minterms, one from each side, merged and deduplicated.
func distribute(a, b CompiledExpression) CompiledExpression {
	seen := make(map[string]bool, len(a)*len(b))
	out := make(CompiledExpression, 0, len(a)*len(b))
	for _, lm := range a {
		for _, rm := range b {
			merged := lm.merge(rm)
			if s := merged.String(); !seen[s] {
				seen[s] = true
				out = append(out, merged)
			}
		}
	}
	slices.SortFunc(out, func(a, b CompiledMinterm) bool { return a.String() < b.String() })
	return out
}
