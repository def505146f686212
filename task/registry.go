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

package task

import (
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/maps"

	"github.com/ucbrise/confluo-sub001/errs"
)

type regEntry[T any] struct {
	value T
	valid bool
}

// NameRegistry is a name -> T map with exactly one writer (intended to
// be the owning Queue's goroutine) and any number of lock-free
// readers: writes build a new map and atomically swap it in, so a
// reader's Get/Names never blocks on, or observes a partial write from,
// a concurrent Add/Remove.
//
// Removal never deletes an entry, only marks it invalid, matching
// spec.md's "filters/indexes/aggregates/triggers may be invalidated
// (never physically removed)".
type NameRegistry[T any] struct {
	kind string // e.g. "Filter", used to format ManagementError messages
	mu   sync.Mutex
	snap atomic.Pointer[map[string]regEntry[T]]
}

// NewNameRegistry constructs an empty NameRegistry. kind labels the
// entity this registry names, in error messages ("Filter f does not
// exist.").
func NewNameRegistry[T any](kind string) *NameRegistry[T] {
	r := &NameRegistry[T]{kind: kind}
	empty := make(map[string]regEntry[T])
	r.snap.Store(&empty)
	return r
}

func (r *NameRegistry[T]) load() map[string]regEntry[T] {
	return *r.snap.Load()
}

// Add installs value under name. It fails with errs.ManagementError if
// a live entry already exists under that name.
func (r *NameRegistry[T]) Add(name string, value T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.load()
	if e, ok := cur[name]; ok && e.valid {
		return errs.New(errs.ManagementError, "%s %s already exists.", r.kind, name)
	}
	next := make(map[string]regEntry[T], len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[name] = regEntry[T]{value: value, valid: true}
	r.snap.Store(&next)
	return nil
}

// Remove invalidates the entry under name. It fails with
// errs.ManagementError if no live entry exists under that name
// (spec.md P8's "idempotent remove" property: removing twice fails the
// second time).
func (r *NameRegistry[T]) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.load()
	e, ok := cur[name]
	if !ok || !e.valid {
		return errs.New(errs.ManagementError, "%s %s does not exist.", r.kind, name)
	}
	next := make(map[string]regEntry[T], len(cur))
	for k, v := range cur {
		next[k] = v
	}
	next[name] = regEntry[T]{value: e.value, valid: false}
	r.snap.Store(&next)
	return nil
}

// Get returns the live value under name, or ok=false if there is none
// (never created, or removed). Callers tolerate a stale miss the way
// spec.md's shared-resource policy describes.
func (r *NameRegistry[T]) Get(name string) (T, bool) {
	cur := r.load()
	e, ok := cur[name]
	if !ok || !e.valid {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Names returns every live name, sorted, for deterministic listings
// and metadata-record replay ordering.
func (r *NameRegistry[T]) Names() []string {
	cur := r.load()
	keys := maps.Keys(cur)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if cur[k].valid {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// All returns every live (name, value) pair as a map, which has no
// iteration order; Names() gives the same names sorted.
func (r *NameRegistry[T]) All() map[string]T {
	cur := r.load()
	out := make(map[string]T, len(cur))
	for k, e := range cur {
		if e.valid {
			out[k] = e.value
		}
	}
	return out
}
