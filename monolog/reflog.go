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

package monolog

// ReflogBuckets bounds a Reflog's capacity at 2^(ReflogBuckets+firstBucketHiBit)
// record offsets, matching the original engine's fixed 18-container
// reflog (which used equal-size linear containers; this implementation
// reuses the same exponential bucket scheme as every other Monolog
// rather than introduce a second, linear-growth container type for a
// log whose element is already a plain uint64 offset).
const ReflogBuckets = 18

// Reflog is an append-only posting list: the set of record (data-log)
// offsets matching a filter predicate or time/attribute bucket, stored
// as a growable array of uint64 offsets rather than a bitmap, since
// confluo's reflogs are typically sparse relative to the full data log.
type Reflog = Monolog[uint64]

// NewReflog constructs an empty Reflog.
func NewReflog() *Reflog {
	return New[uint64](ReflogBuckets)
}
