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

package radixidx

import (
	"bytes"

	"github.com/ucbrise/confluo-sub001/errs"
)

// DefaultWidth is the fan-out of each tree level, one child slot per
// possible key byte value.
const DefaultWidth = 256

// Log is the capability a leaf payload must provide to act as a radix
// tree leaf: an append-only record of values plus a size. Both
// *monolog.Reflog and anything that embeds it (such as an aggregated
// reflog that also carries per-bucket aggregates) satisfy Log[uint64]
// via promoted methods, so Tree works unmodified as the backing index
// for both a plain column index and the filter package's time index;
// a leaf that instead records a richer value, such as alertidx's
// alert log, satisfies Log[Alert] the same way.
type Log[V any] interface {
	PushBack(val V) uint64
	Size() uint64
}

// Tree is a fixed-depth radix tree keyed by depth-byte keys (normally
// the order-preserving encoding produced by types.Type.KeyTransform),
// mapping each distinct key to a leaf of type L pushing values of type
// V.
type Tree[V any, L Log[V]] struct {
	width   int
	depth   int
	root    *node[V, L]
	newLeaf func() L
}

// New constructs an empty Tree over depth-byte keys with the given
// per-level fan-out (DefaultWidth if width <= 0). newLeaf constructs a
// fresh, empty leaf; it is called at most once per distinct key, the
// first time that key is reached via GetOrCreate or Insert.
func New[V any, L Log[V]](depth, width int, newLeaf func() L) *Tree[V, L] {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Tree[V, L]{width: width, depth: depth, root: newInnerNode[V, L](0, 0, nil, width), newLeaf: newLeaf}
}

// Width is the tree's per-level fan-out.
func (t *Tree[V, L]) Width() int { return t.width }

// Depth is the tree's fixed key length in bytes.
func (t *Tree[V, L]) Depth() int { return t.depth }

func (t *Tree[V, L]) checkKey(key []byte) error {
	if len(key) != t.depth {
		return errs.New(errs.InvalidOp, "key length %d does not match tree depth %d", len(key), t.depth)
	}
	return nil
}

// GetOrCreate returns the leaf for key, allocating every node along its
// path (via CAS) if this is the first reference to it.
func (t *Tree[V, L]) GetOrCreate(key []byte) (L, error) {
	if err := t.checkKey(key); err != nil {
		var zero L
		return zero, err
	}
	n := t.root
	for d := 0; d < t.depth-1; d++ {
		n = t.descendOrCreate(n, key[d], d+1, false)
	}
	leaf := t.descendOrCreate(n, key[t.depth-1], t.depth, true)
	return leaf.leaf, nil
}

// descendOrCreate reads (or CAS-installs) the child at digit under n.
func (t *Tree[V, L]) descendOrCreate(n *node[V, L], digit byte, childDepth int, leaf bool) *node[V, L] {
	slot := &n.children[digit]
	if c := slot.Load(); c != nil {
		return c
	}
	var fresh *node[V, L]
	if leaf {
		fresh = newLeafNode[V, L](digit, childDepth, n, t.newLeaf)
	} else {
		fresh = newInnerNode[V, L](digit, childDepth, n, t.width)
	}
	if slot.CompareAndSwap(nil, fresh) {
		return fresh
	}
	return slot.Load()
}

// Insert appends value to the leaf for key, creating it if absent.
func (t *Tree[V, L]) Insert(key []byte, value V) (L, error) {
	leaf, err := t.GetOrCreate(key)
	if err != nil {
		var zero L
		return zero, err
	}
	leaf.PushBack(value)
	return leaf, nil
}

// Get returns the leaf for key, or the zero value and false if key has
// never been inserted.
func (t *Tree[V, L]) Get(key []byte) (L, bool) {
	var zero L
	if err := t.checkKey(key); err != nil {
		return zero, false
	}
	n := t.root
	for d := 0; d < t.depth; d++ {
		child := n.children[key[d]].Load()
		if child == nil {
			return zero, false
		}
		n = child
	}
	return n.leaf, true
}

// lowerBound returns the last leaf with key' <= key (nil if none).
func (t *Tree[V, L]) lowerBound(key []byte) (fullKey []byte, leaf *node[V, L]) {
	fullKey = append([]byte(nil), key...)
	n := t.root
	d := 0
	for ; d < t.depth; d++ {
		child := n.children[fullKey[d]].Load()
		if child == nil {
			break
		}
		n = child
	}
	if d == t.depth {
		return fullKey, n
	}
	child := n.prevChild(int(fullKey[d]))
	if child == nil {
		return fullKey, n.retreat(fullKey)
	}
	fullKey[d] = child.key
	return fullKey, child.retreatDescend(fullKey)
}

// upperBound returns the first leaf with key' >= key (nil if none).
func (t *Tree[V, L]) upperBound(key []byte) (fullKey []byte, leaf *node[V, L]) {
	fullKey = append([]byte(nil), key...)
	n := t.root
	d := 0
	for ; d < t.depth; d++ {
		child := n.children[fullKey[d]].Load()
		if child == nil {
			break
		}
		n = child
	}
	if d == t.depth {
		return fullKey, n
	}
	child := n.nextChild(int(fullKey[d]))
	if child == nil {
		return fullKey, n.advance(fullKey)
	}
	fullKey[d] = child.key
	return fullKey, child.advanceDescend(fullKey)
}

// RangeLookup returns every leaf whose key falls in [begin, end]
// (inclusive on both ends, matching the original engine's range query
// semantics), in ascending key order.
func (t *Tree[V, L]) RangeLookup(begin, end []byte) ([]L, error) {
	if err := t.checkKey(begin); err != nil {
		return nil, err
	}
	if err := t.checkKey(end); err != nil {
		return nil, err
	}
	loKey, lo := t.upperBound(begin)
	hiKey, hi := t.lowerBound(end)
	if lo == nil || hi == nil || bytes.Compare(loKey, hiKey) > 0 {
		return nil, nil
	}
	var out []L
	key := append([]byte(nil), begin...)
	for n := lo; n != nil; {
		out = append(out, n.leaf)
		if n == hi {
			break
		}
		n = n.advance(key)
	}
	return out, nil
}

// ApproxCount sums Size() over every leaf in [begin, end], an O(keys in
// range) estimate of how many records match (it does not deduplicate
// offsets appearing in more than one bucket, which cannot happen for a
// single column index but can for a caller merging several ranges).
func (t *Tree[V, L]) ApproxCount(begin, end []byte) (uint64, error) {
	leaves, err := t.RangeLookup(begin, end)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, l := range leaves {
		total += l.Size()
	}
	return total, nil
}
