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

// Package storage implements the three block-allocation strategies a
// multilog's data log and aggregate logs are built on: InMemory
// (malloc-equivalent, never durable), DurableRelaxed (file-backed via
// mmap, flushed only by the OS's own page cache writeback), and
// Durable (file-backed via mmap, with an explicit msync/fsync on every
// Flush call). A Block is one fixed-size allocation unit; datalog.Log
// lazily allocates Blocks the same way monolog allocates its buckets.
package storage
