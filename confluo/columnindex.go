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

package confluo

import (
	"sync/atomic"

	"github.com/ucbrise/confluo-sub001/radixidx"
	"github.com/ucbrise/confluo-sub001/types"
)

// indexState is a column's indexing lifecycle, mirroring column.h's
// UNINDEXED/INDEXING/INDEXED state bits: building an index is not
// instantaneous against a data log that may already hold records, so
// the state is tracked explicitly rather than inferred from whether a
// *ColumnIndex happens to be registered.
type indexState int32

const (
	stateUnindexed indexState = iota
	stateIndexing
	stateIndexed
)

// ColumnIndex is a single column's value index: a radixidx.ReflogTree
// keyed by the column's own KeyTransform, with a depth equal to the
// type's fixed serialized size (every built-in Type's KeyTransform
// output is exactly t.Size() bytes, so the tree never needs a
// variable-depth key). It satisfies plan.Index directly.
type ColumnIndex struct {
	field      string
	fieldType  types.Type
	bucketSize float64
	tree       *radixidx.ReflogTree
	state      atomic.Int32
}

// newColumnIndex constructs a ColumnIndex in the unindexed state; the
// caller transitions it to indexing/indexed via markIndexing/markIndexed
// once management has decided to actually build it.
func newColumnIndex(field string, fieldType types.Type, bucketSize float64) *ColumnIndex {
	ci := &ColumnIndex{
		field:      field,
		fieldType:  fieldType,
		bucketSize: bucketSize,
		tree:       radixidx.NewReflogTree(fieldType.Size(), radixidx.DefaultWidth),
	}
	ci.state.Store(int32(stateUnindexed))
	return ci
}

// FieldType implements plan.Index.
func (ci *ColumnIndex) FieldType() types.Type { return ci.fieldType }

// BucketSize implements plan.Index.
func (ci *ColumnIndex) BucketSize() float64 { return ci.bucketSize }

// ApproxCount implements plan.Index.
func (ci *ColumnIndex) ApproxCount(lo, hi []byte) (uint64, error) {
	return ci.tree.ApproxCount(lo, hi)
}

// Offsets implements plan.Index, resolving a key range to every
// matching record offset, in ascending key order (not necessarily
// ascending offset order; plan.Execute sorts its union).
func (ci *ColumnIndex) Offsets(lo, hi []byte) ([]uint64, error) {
	leaves, err := ci.tree.RangeLookup(lo, hi)
	if err != nil {
		return nil, err
	}
	var out []uint64
	for _, leaf := range leaves {
		n := leaf.Size()
		for i := uint64(0); i < n; i++ {
			out = append(out, leaf.Get(i))
		}
	}
	return out, nil
}

// Insert records that offset's record carries value, keyed by
// KeyTransform(value, BucketSize()). A column still in the
// stateIndexing phase accepts inserts the same as a fully stateIndexed
// one. Only appends that fan out after the index is registered call
// Insert; offsets that existed before indexing began are not added.
func (ci *ColumnIndex) Insert(value types.Numeric, offset uint64) error {
	key := ci.fieldType.KeyTransform(value, ci.bucketSize)
	_, err := ci.tree.Insert(key, offset)
	return err
}

// State reports the column's current indexing lifecycle state.
func (ci *ColumnIndex) State() string {
	switch indexState(ci.state.Load()) {
	case stateIndexing:
		return "INDEXING"
	case stateIndexed:
		return "INDEXED"
	default:
		return "UNINDEXED"
	}
}

func (ci *ColumnIndex) markIndexing() bool {
	return ci.state.CompareAndSwap(int32(stateUnindexed), int32(stateIndexing))
}

func (ci *ColumnIndex) markIndexed() {
	ci.state.Store(int32(stateIndexed))
}

// markUnindexed reverts the column to unindexed on removal. The
// backing tree and every offset it already holds are left exactly as
// they were (spec invariant I5): a column re-indexed later reuses
// nothing from the old tree, since RemoveIndex leaves the old
// *ColumnIndex only as an invalidated registry entry and AddIndex
// always builds a fresh one that replaces it.
func (ci *ColumnIndex) markUnindexed() {
	ci.state.Store(int32(stateUnindexed))
}
