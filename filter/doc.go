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

// Package filter evaluates a predicate against every appended record
// and, for the records that pass, maintains a time-bucketed index of
// their offsets (a Reflog per bucket) plus a set of aggregates kept
// current over exactly those matching records.
//
// A Filter never recomputes history when an aggregate is added after
// records already exist: a time bucket carries only the aggregates that
// were attached when the bucket was created, so a new aggregate
// accumulates only in buckets created after it was attached and never
// covers records in buckets that already existed, the same "late-bound
// aggregate" behavior the rest of the engine applies to indexes.
package filter
