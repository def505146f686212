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

// Package metadata persists and replays a multilog's structural
// history: storage mode, archival mode, schema, and every index,
// filter, aggregate, and trigger ever added, in the order they were
// added. It is the on-disk journal a reopened multilog replays to
// reconstruct its management state; it carries none of the record
// data itself, which lives in the data log.
//
// Nothing is written for storage.InMemory: an in-memory multilog has
// no path to persist to and no reopen to recover from.
package metadata
