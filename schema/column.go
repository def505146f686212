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

// TimestampColumn is the name of the column every Schema carries
// implicitly as column 0, holding the record's arrival time as a ULong
// of microseconds since the Unix epoch, unless the caller's own column
// list already defines a column under this name.
const TimestampColumn = "TIMESTAMP"

// Column describes one fixed-offset, fixed-width field of a Schema.
type Column struct {
	Idx    uint16
	Name   string
	Type   types.Type
	Offset int
	Min    types.Numeric
	Max    types.Numeric
}

// End returns the offset one past this column's bytes.
func (c Column) End() int { return c.Offset + c.Type.Size() }

// IsTimestamp reports whether c is the implicit timestamp column.
func (c Column) IsTimestamp() bool { return c.Idx == 0 && c.Name == TimestampColumn }
