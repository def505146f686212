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

package aggregate

import (
	"sync/atomic"

	"github.com/ucbrise/confluo-sub001/types"
)

// Node is one entry in a List's version chain.
type Node struct {
	value   types.Numeric
	version uint64
	next    *Node
}

// Value is this node's aggregate value.
func (n *Node) Value() types.Numeric { return n.value }

// Version is the multilog version at which this node was installed.
func (n *Node) Version() uint64 { return n.version }

// Next is the previous (older) node in the chain.
func (n *Node) Next() *Node { return n.next }

// List is a single writer's append-only, version-tagged chain of
// aggregate values. Only the owning writer ever prepends to a List, so
// prepends need no CAS, but the head pointer itself is published
// atomically so concurrent readers always observe a fully-constructed
// Node.
type List struct {
	head       atomic.Pointer[Node]
	resultType types.Type
	agg        types.Aggregator
}

// NewList constructs an empty List for the given result type and
// aggregator (e.g. the ULong result type and the count Aggregator).
func NewList(resultType types.Type, agg types.Aggregator) *List {
	return &List{resultType: resultType, agg: agg}
}

// Zero is this List's identity element.
func (l *List) Zero() types.Numeric {
	return l.agg.Identity(l.resultType)
}

// getNode returns the node with the largest version <= version, or nil
// if every node postdates version (including when the list is empty).
func (l *List) getNode(version uint64) *Node {
	for n := l.head.Load(); n != nil; n = n.next {
		if n.version <= version {
			return n
		}
	}
	return nil
}

// Get returns the aggregate value as of version, or the identity
// element if no update has been recorded at or before version.
func (l *List) Get(version uint64) types.Numeric {
	if n := l.getNode(version); n != nil {
		return n.value
	}
	return l.Zero()
}

// SeqUpdate folds value into the list's most recent aggregate using the
// Aggregator's sequential combine, and publishes the result as a new
// head node tagged with version. Intended for one value at a time from
// the list's single owning writer.
func (l *List) SeqUpdate(value types.Numeric, version uint64) error {
	head := l.head.Load()
	prev := l.Zero()
	if head != nil {
		prev = head.value
	}
	next, err := l.agg.SeqCombine(l.resultType, prev, value)
	if err != nil {
		return err
	}
	l.head.Store(&Node{value: next, version: version, next: head})
	return nil
}

// CombUpdate folds a pre-aggregated partial value into the list using
// the Aggregator's parallel combine (associative, commutative), for
// merging a batch that was aggregated outside this list (e.g. a whole
// record batch reduced by another thread before being folded in here).
func (l *List) CombUpdate(value types.Numeric, version uint64) error {
	head := l.head.Load()
	prev := l.Zero()
	if head != nil {
		prev = head.value
	}
	next, err := l.agg.ParCombine(l.resultType, prev, value)
	if err != nil {
		return err
	}
	l.head.Store(&Node{value: next, version: version, next: head})
	return nil
}
