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

// Package monolog implements the append-only, exponentially-bucketed log
// that backs both column storage and posting lists (Reflog). Indices are
// write-once: a writer reserves a range with an atomic fetch-and-add on
// the tail, then fills it in. Buckets are allocated zero-valued and
// CAS-installed lazily, on the first access to an index inside them by
// either a writer or a reader, so a slot below the tail reads as either
// its written value or, before its writer has stored it, the zero value.
package monolog
