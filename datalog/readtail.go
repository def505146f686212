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

package datalog

import (
	"runtime"
	"sync/atomic"
)

// ReadTail is the multilog's single publication watermark: the highest
// offset for which every append side-effect (index inserts, filter
// inserts, per-thread aggregate updates, bytes flushed) is guaranteed
// visible. Any offset >= Get() must be treated by a reader as not yet
// committed.
type ReadTail struct {
	v atomic.Uint64
}

// Get loads the current tail.
func (t *ReadTail) Get() uint64 { return t.v.Load() }

// Advance publishes [oldTail, oldTail+bytes) as committed. It spins
// until the tail is exactly oldTail before installing oldTail+bytes,
// so concurrent appenders that reserved disjoint ranges publish in
// reservation order even if their fan-out work (index/filter/aggregate
// updates) finishes out of order: a writer for a later range simply
// waits for every earlier range to publish first. This is the same
// contract as spec.md's read tail invariant I1 and mirrors the
// original engine's read_tail::advance CAS-retry loop exactly.
func (t *ReadTail) Advance(oldTail, bytes uint64) {
	for !t.v.CompareAndSwap(oldTail, oldTail+bytes) {
		runtime.Gosched()
	}
}
