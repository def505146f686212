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

import "github.com/ucbrise/confluo-sub001/types"

// Index is the planner's view of a column index: enough to derive key
// ranges from predicates on its field, estimate a range's cardinality,
// and resolve a range to candidate record offsets. radixidx.ReflogTree
// (wrapped with its field name, type, and bucket size) satisfies this.
type Index interface {
	FieldType() types.Type
	BucketSize() float64
	ApproxCount(lo, hi []byte) (uint64, error)
	Offsets(lo, hi []byte) ([]uint64, error)
}

// IndexSet resolves a field name to its Index, if one exists.
type IndexSet interface {
	Lookup(field string) (Index, bool)
}

// Indexes is the straightforward map-backed IndexSet.
type Indexes map[string]Index

// Lookup implements IndexSet.
func (m Indexes) Lookup(field string) (Index, bool) {
	idx, ok := m[field]
	return idx, ok
}
