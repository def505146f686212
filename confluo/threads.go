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

import (
	"sync"

	"github.com/ucbrise/confluo-sub001/errs"
)

// ThreadRegistry hands out a fixed number of small integer writer-slot
// ids. Go has no stable, cheap thread-local identity to key per-thread
// aggregate partials off of (the original engine keys them off the OS
// thread id), so every writer goroutine must explicitly
// RegisterThread once and reuse the returned id for every Append it
// makes, exactly as spec.md §5 describes.
type ThreadRegistry struct {
	mu    sync.Mutex
	slots []bool // true = in use
}

// NewThreadRegistry constructs a registry with maxConcurrency slots.
func NewThreadRegistry(maxConcurrency int) *ThreadRegistry {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &ThreadRegistry{slots: make([]bool, maxConcurrency)}
}

// MaxConcurrency is the fixed slot capacity, spec §5's
// get_max_concurrency.
func (r *ThreadRegistry) MaxConcurrency() int { return len(r.slots) }

// Register reserves the lowest-numbered free slot. It fails with
// errs.Overflow if every slot is already taken.
func (r *ThreadRegistry) Register() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, used := range r.slots {
		if !used {
			r.slots[i] = true
			return i, nil
		}
	}
	return 0, errs.New(errs.Overflow, "no free writer slot: max_concurrency is %d", len(r.slots))
}

// Deregister releases id back to the free pool. Deregistering an id
// not currently held is a no-op.
func (r *ThreadRegistry) Deregister(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id >= 0 && id < len(r.slots) {
		r.slots[id] = false
	}
}
