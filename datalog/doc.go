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

// Package datalog implements the multilog's append-only byte store: a
// conceptually unbounded array of bytes, physically a fixed number of
// large, linearly-sized blocks allocated lazily on first write (unlike
// monolog's exponential bucket growth, every data-log block is the
// same size, per spec.md's "Linear: fixed block size; used for the
// data log"). Offsets into it are stable forever once reserved.
//
// Log also owns the multilog's ReadTail: the single atomic boundary
// that separates fully-published record bytes (and every index/filter/
// aggregate update derived from them) from in-flight appends. Indexes
// and filters are fanned out to before the tail advances past an
// offset, so any reader that samples the tail first and then traverses
// an index never observes a partially-initialized record.
package datalog
