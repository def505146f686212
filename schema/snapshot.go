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

package schema

import "github.com/ucbrise/confluo-sub001/types"

// ColumnSnapshot is the subset of a Column's state a reader needs
// without dereferencing a Schema that could be concurrently replaced:
// the type, byte offset, and (if this column carries an index) the
// index identity and bucket width used to compute keys into it.
type ColumnSnapshot struct {
	Type            types.Type
	Offset          int
	Indexed         bool
	IndexID         uint32
	IndexBucketSize float64
}

// Snapshot is an immutable copy of a Schema's column layout, safe to
// retain across a Schema replacement and to share across goroutines
// without synchronization.
type Snapshot struct {
	recordSize int
	columns    []Column
	index      []ColumnSnapshot
}

// NumColumns is the number of columns captured.
func (s Snapshot) NumColumns() int { return len(s.columns) }

// RecordSize is the fixed byte width of a record under this snapshot.
func (s Snapshot) RecordSize() int { return s.recordSize }

// Get deserializes column i's value out of data.
func (s Snapshot) Get(data []byte, i int) (types.Numeric, error) {
	c := s.columns[i]
	return c.Type.Deserialize(data[c.Offset:c.End()])
}

// Key computes column i's order-preserving index key from data,
// honoring the column's index bucket size if WithIndexMetadata was
// called for it; otherwise bucketSize defaults to 1 (no bucketing).
func (s Snapshot) Key(data []byte, i int) ([]byte, error) {
	c := s.columns[i]
	v, err := c.Type.Deserialize(data[c.Offset:c.End()])
	if err != nil {
		return nil, err
	}
	bucket := 1.0
	if i < len(s.index) && s.index[i].Indexed {
		bucket = s.index[i].IndexBucketSize
	}
	return c.Type.KeyTransform(v, bucket), nil
}

// Timestamp reads the implicit TIMESTAMP column (index 0) out of data.
func (s Snapshot) Timestamp(data []byte) uint64 {
	v, err := s.Get(data, 0)
	if err != nil {
		return 0
	}
	return v.ULong()
}

// IsIndexed reports whether column i carries an index, per the
// WithIndexMetadata call that produced this snapshot.
func (s Snapshot) IsIndexed(i int) bool {
	return i < len(s.index) && s.index[i].Indexed
}

// IndexID returns column i's index identifier.
func (s Snapshot) IndexID(i int) uint32 {
	if i < len(s.index) {
		return s.index[i].IndexID
	}
	return 0
}

// WithIndexMetadata returns a copy of s carrying index bookkeeping for
// column idx, used by add_index to record that a column is now
// searchable without mutating the live Schema.
func (s Snapshot) WithIndexMetadata(idx int, id uint32, bucketSize float64) Snapshot {
	cp := make([]ColumnSnapshot, len(s.columns))
	copy(cp, s.index)
	cp[idx] = ColumnSnapshot{Type: s.columns[idx].Type, Offset: s.columns[idx].Offset, Indexed: true, IndexID: id, IndexBucketSize: bucketSize}
	return Snapshot{recordSize: s.recordSize, columns: s.columns, index: cp}
}
