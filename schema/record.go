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
	"strings"

	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/types"
)

// Record is a read-only view of one record's bytes through a Schema.
// It never copies the backing buffer; field accessors deserialize on
// demand.
type Record struct {
	schema *Schema
	offset uint64
	data   []byte
}

// Offset is the record's position in the data log.
func (r Record) Offset() uint64 { return r.offset }

// Schema returns the Schema this Record was applied through.
func (r Record) Schema() *Schema { return r.schema }

// Timestamp returns field 0's value as a uint64, which is always the
// implicit TIMESTAMP column for any Schema built via Builder.
func (r Record) Timestamp() uint64 {
	v, err := r.At(0)
	if err != nil {
		return 0
	}
	return v.ULong()
}

// At deserializes the value of the column at idx.
func (r Record) At(idx int) (types.Numeric, error) {
	col, err := r.schema.Column(idx)
	if err != nil {
		return types.Numeric{}, err
	}
	end := col.End()
	if end > len(r.data) {
		return types.Numeric{}, errs.New(errs.IllegalState, "record buffer too short for column %q", col.Name)
	}
	return col.Type.Deserialize(r.data[col.Offset:end])
}

// Field deserializes the value of the column named name.
func (r Record) Field(name string) (types.Numeric, error) {
	idx, err := r.schema.FieldIndex(name)
	if err != nil {
		return types.Numeric{}, err
	}
	return r.At(idx)
}

// Bytes returns the record's raw backing buffer.
func (r Record) Bytes() []byte { return r.data }

// Strings formats every field with its column type's Format, in
// schema-declaration order.
func (r Record) Strings() ([]string, error) {
	out := make([]string, r.schema.Len())
	for i, col := range r.schema.columns {
		v, err := r.At(i)
		if err != nil {
			return nil, err
		}
		out[i] = col.Type.Format(v)
	}
	return out, nil
}

func (r Record) String() string {
	fields, err := r.Strings()
	if err != nil {
		return ""
	}
	return strings.Join(fields, "\t")
}
