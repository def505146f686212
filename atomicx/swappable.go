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

package atomicx

import "sync/atomic"

// generation is one published value of a Swappable plus the reference
// count of everyone currently pinning it: the Swappable's own current
// pointer counts as one reference, released when Swap retires it.
// Because Swap always allocates a fresh generation rather than
// reusing a fixed slot, a generation pointer is never recycled to mean
// a different value later, which is what lets AtomicCopy tell a live
// generation from a retired one by its count alone instead of needing
// a second, ABA-prone index.
type generation[T any] struct {
	val   *T
	count atomic.Int32
}

// Swappable holds a pointer to a T that can be atomically replaced while
// readers that obtained a copy before the replacement keep their own
// consistent view of the old value.
type Swappable[T any] struct {
	cur atomic.Pointer[generation[T]]
}

// NewSwappable constructs a Swappable holding v as the initial value.
func NewSwappable[T any](v *T) *Swappable[T] {
	s := &Swappable[T]{}
	s.AtomicInit(v)
	return s
}

// AtomicInit installs v as the initial value. It must only be called
// before any concurrent readers or writers observe s.
func (s *Swappable[T]) AtomicInit(v *T) {
	g := &generation[T]{val: v}
	g.count.Store(1)
	s.cur.Store(g)
}

// AtomicLoad returns the current value without pinning it against a
// concurrent Swap. Safe only when the caller otherwise knows no Swap can
// race with its use of the pointer (e.g. the single writer that owns
// mutation of *T in place).
func (s *Swappable[T]) AtomicLoad() *T {
	return s.cur.Load().val
}

// ReadOnly is a handle to a pinned generation of a Swappable's value.
// Callers must call Release exactly once when done.
type ReadOnly[T any] struct {
	g *generation[T]
}

// Get returns the pinned value. It remains valid until Release.
func (r ReadOnly[T]) Get() *T {
	if r.g == nil {
		return nil
	}
	return r.g.val
}

// Release drops this reader's reference to the pinned generation. If
// this was the last outstanding reference to a generation that has
// since been retired by a Swap, its value is cleared so the garbage
// collector can reclaim it.
func (r ReadOnly[T]) Release() {
	if r.g == nil {
		return
	}
	if r.g.count.Add(-1) == 0 {
		r.g.val = nil
	}
}

// AtomicCopy pins whichever generation is current and returns a handle
// on it. The generation cannot be freed until the returned handle (and
// every other outstanding one for the same generation) is Released.
//
// Selecting the generation and bumping its refcount happen as one
// indivisible step per attempt: it only ever increments a count it has
// just observed to be positive (via CompareAndSwap), so it can never
// resurrect a generation Swap has already driven to zero and torn down
// ("lost-update" window of atomicx.Swappable.Swap below). If the
// generation it loaded is found retired (count already 0) it retries
// against the now-current one instead of pinning a dead value.
func (s *Swappable[T]) AtomicCopy() ReadOnly[T] {
	for {
		g := s.cur.Load()
		for {
			n := g.count.Load()
			if n == 0 {
				break // g was already retired by a Swap; reload s.cur
			}
			if g.count.CompareAndSwap(n, n+1) {
				return ReadOnly[T]{g: g}
			}
		}
	}
}

// Swap publishes v as a new generation. The previous generation remains
// reachable to readers that already pinned it via AtomicCopy until they
// Release; once the last such reference is released its value is
// cleared.
func (s *Swappable[T]) Swap(v *T) {
	next := &generation[T]{val: v}
	next.count.Store(1)
	old := s.cur.Swap(next)
	if old.count.Add(-1) == 0 {
		old.val = nil
	}
}
