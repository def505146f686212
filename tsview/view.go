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

package tsview

import (
	"fmt"

	"github.com/ucbrise/confluo-sub001/confluo"
	"github.com/ucbrise/confluo-sub001/schema"
)

// View wraps a *confluo.AtomicMultilog by composition (not embedding: a
// View is not itself usable wherever an *AtomicMultilog is expected,
// the same way timeseries_db.h's original was a subclass but every
// method it added only ever called through to the base table's own
// public surface). It builds a TIMESTAMP index eagerly at construction.
type View struct {
	m *confluo.AtomicMultilog
}

// New constructs a View over a fresh multilog named name with schema s.
func New(name string, s *schema.Schema, opts confluo.Options) (*View, error) {
	m, err := confluo.New(name, s, opts)
	if err != nil {
		return nil, err
	}
	if err := m.AddIndex(schema.TimestampColumn, 1.0); err != nil {
		return nil, err
	}
	return &View{m: m}, nil
}

// Wrap adapts an already-constructed multilog (e.g. one reopened via
// confluo.Load, whose TIMESTAMP index was already installed the first
// time New ran) as a View without re-adding the index.
func Wrap(m *confluo.AtomicMultilog) *View {
	return &View{m: m}
}

// Multilog exposes the wrapped AtomicMultilog directly, for callers
// that need its full management/query surface alongside these
// time-indexed convenience methods.
func (v *View) Multilog() *confluo.AtomicMultilog { return v.m }

// Append stores one record. record must match the wrapped multilog's
// schema exactly, TIMESTAMP column included.
func (v *View) Append(writerID int, record []byte) (uint64, error) {
	return v.m.Append(writerID, record)
}

// GetRange returns every record whose TIMESTAMP (microseconds since the
// epoch) falls in [t1, t2], mirroring timeseries_db::get_range.
func (v *View) GetRange(t1, t2 uint64) (*confluo.Cursor, error) {
	expr := fmt.Sprintf("%s >= %d && %s <= %d", schema.TimestampColumn, t1, schema.TimestampColumn, t2)
	return v.m.ExecuteFilter(expr)
}

// GetNearest returns the record with the smallest TIMESTAMP strictly
// after ts (forward=true) or the largest TIMESTAMP strictly before ts
// (forward=false), mirroring
// timeseries_db::get_nearest_value's direction flag. ok is false if no
// such record exists (ts is outside the log's range in that direction).
func (v *View) GetNearest(ts uint64, forward bool) (rec schema.Record, ok bool, err error) {
	op := "<"
	if forward {
		op = ">"
	}
	expr := fmt.Sprintf("%s %s %d", schema.TimestampColumn, op, ts)
	cur, err := v.m.ExecuteFilter(expr)
	if err != nil {
		return schema.Record{}, false, err
	}
	var best schema.Record
	for cur.Next() {
		r := cur.Record()
		if !ok || (forward && r.Timestamp() < best.Timestamp()) || (!forward && r.Timestamp() > best.Timestamp()) {
			best, ok = r, true
		}
	}
	if err := cur.Err(); err != nil {
		return schema.Record{}, false, err
	}
	return best, ok, nil
}

// GetVersion returns the underlying data log's current read tail,
// mirroring timeseries_db::get_version.
func (v *View) GetVersion() uint64 { return v.m.Version() }
