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

import "github.com/ucbrise/confluo-sub001/schema"

// Cursor is a pull-driven iterator over a query's matching record
// offsets: the offsets themselves are resolved up front (query
// planning is the expensive part), but each record's bytes are only
// read from the data log as the caller advances, mirroring
// execute_filter's lazy reflog_iterator rather than materializing
// every record eagerly. A Cursor may be abandoned at any point; there
// is nothing to close.
type Cursor struct {
	offsets []uint64
	pos     int
	read    func(uint64) (schema.Record, error)
	cur     schema.Record
	err     error
}

func newCursor(offsets []uint64, read func(uint64) (schema.Record, error)) *Cursor {
	return &Cursor{offsets: offsets, pos: -1, read: read}
}

// Next advances the cursor to the next matching record, returning
// false once exhausted or after the first read error (retrievable via
// Err).
func (c *Cursor) Next() bool {
	if c.err != nil {
		return false
	}
	c.pos++
	if c.pos >= len(c.offsets) {
		return false
	}
	rec, err := c.read(c.offsets[c.pos])
	if err != nil {
		c.err = err
		return false
	}
	c.cur = rec
	return true
}

// Record returns the record the most recent successful Next produced.
func (c *Cursor) Record() schema.Record { return c.cur }

// Err reports the first read error Next encountered, if any.
func (c *Cursor) Err() error { return c.err }

// Len is the number of candidate offsets backing this cursor (an upper
// bound on how many times Next can return true).
func (c *Cursor) Len() int { return len(c.offsets) }
