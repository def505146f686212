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

import (
	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/types"
)

// Schema is the immutable, ordered list of Columns that gives meaning
// to every record an atomic multilog stores. A Schema is built once (by
// Builder) and never mutated afterward; the engine's single-writer
// schema changes (not currently supported) would replace the Schema
// value wholesale rather than edit it in place.
type Schema struct {
	recordSize int
	columns    []Column
	byName     map[string]int
}

// New constructs a Schema from columns, which must already include the
// implicit timestamp column at index 0 (use Builder to get this for
// free).
func New(columns []Column) *Schema {
	s := &Schema{columns: columns, byName: make(map[string]int, len(columns))}
	for i, c := range columns {
		s.byName[c.Name] = i
		if end := c.End(); end > s.recordSize {
			s.recordSize = end
		}
	}
	return s
}

// RecordSize is the fixed byte width of one record under this Schema.
func (s *Schema) RecordSize() int { return s.recordSize }

// Columns returns the Schema's columns in on-disk order.
func (s *Schema) Columns() []Column { return s.columns }

// Len is the number of columns, including the implicit timestamp.
func (s *Schema) Len() int { return len(s.columns) }

// FieldIndex resolves a column name to its index.
func (s *Schema) FieldIndex(name string) (int, error) {
	idx, ok := s.byName[name]
	if !ok {
		return 0, errs.New(errs.NotFound, "no such field %q", name)
	}
	return idx, nil
}

// Column returns the column at idx.
func (s *Schema) Column(idx int) (Column, error) {
	if idx < 0 || idx >= len(s.columns) {
		return Column{}, errs.New(errs.NotFound, "column index %d out of range", idx)
	}
	return s.columns[idx], nil
}

// ColumnByName returns the column named name.
func (s *Schema) ColumnByName(name string) (Column, error) {
	idx, err := s.FieldIndex(name)
	if err != nil {
		return Column{}, err
	}
	return s.columns[idx], nil
}

// Apply wraps offset and data (a buffer of exactly RecordSize bytes) in
// a Record that reads fields through this Schema. Apply does not copy
// data; the Record's lifetime is bound to the caller keeping data
// alive, mirroring the original engine's apply_unsafe.
func (s *Schema) Apply(offset uint64, data []byte) Record {
	return Record{schema: s, offset: offset, data: data}
}

// Snapshot captures this Schema's column layout for lock-free reuse by
// readers that must not retain a pointer to a Schema that could later
// be replaced (see Snapshot's doc comment).
func (s *Schema) Snapshot() Snapshot {
	cp := make([]Column, len(s.columns))
	copy(cp, s.columns)
	return Snapshot{recordSize: s.recordSize, columns: cp}
}

// Builder assembles a Schema one column at a time, automatically
// prepending the implicit TIMESTAMP column unless the caller supplies
// one under that name first.
type Builder struct {
	columns        []Column
	offset         int
	userProvidesTS bool
}

// NewBuilder starts an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddColumn appends a column of the given type and name, with the
// type's own Min/Max as the column's default range.
func (b *Builder) AddColumn(name string, t types.Type) *Builder {
	return b.AddColumnRange(name, t, t.Min(), t.Max())
}

// AddColumnRange appends a column with an explicit min/max range,
// used by filters and aggregates that bucket values more coarsely than
// the type's own extremes.
func (b *Builder) AddColumnRange(name string, t types.Type, min, max types.Numeric) *Builder {
	if name == TimestampColumn && len(b.columns) == 0 {
		b.userProvidesTS = true
	}
	b.columns = append(b.columns, Column{
		Idx:    uint16(len(b.columns)),
		Name:   name,
		Type:   t,
		Offset: b.offset,
		Min:    min,
		Max:    max,
	})
	b.offset += t.Size()
	return b
}

// UserProvidedTimestamp reports whether the first AddColumn call named
// the column TIMESTAMP, meaning Build will not synthesize one.
func (b *Builder) UserProvidedTimestamp() bool { return b.userProvidesTS }

// Build finalizes the Schema, prepending an implicit ULong TIMESTAMP
// column at index 0 if the caller didn't supply one.
func (b *Builder) Build() (*Schema, error) {
	cols := b.columns
	if !b.userProvidesTS {
		ulong, err := types.Lookup("ulong", 0)
		if err != nil {
			return nil, err
		}
		ts := Column{Idx: 0, Name: TimestampColumn, Type: ulong, Offset: 0, Min: ulong.Min(), Max: ulong.Max()}
		shifted := make([]Column, 0, len(cols)+1)
		shifted = append(shifted, ts)
		off := ulong.Size()
		for _, c := range cols {
			c.Idx++
			c.Offset = off
			off += c.Type.Size()
			shifted = append(shifted, c)
		}
		cols = shifted
	}
	if len(cols) == 0 {
		return nil, errs.New(errs.ManagementError, "schema must have at least one column")
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c.Name] {
			return nil, errs.New(errs.ManagementError, "duplicate field name %q", c.Name)
		}
		seen[c.Name] = true
	}
	return New(cols), nil
}
