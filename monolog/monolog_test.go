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

import (
	"sync"
	"testing"
)

func TestPushBackAssignsSequentialIndices(t *testing.T) {
	m := New[int](DefaultBuckets)
	for i := 0; i < 1000; i++ {
		idx := m.PushBack(i * 10)
		if idx != uint64(i) {
			t.Fatalf("PushBack #%d got index %d, want %d", i, idx, i)
		}
	}
	if m.Size() != 1000 {
		t.Fatalf("Size() = %d, want 1000", m.Size())
	}
	for i := 0; i < 1000; i++ {
		if got := m.Get(uint64(i)); got != i*10 {
			t.Fatalf("Get(%d) = %d, want %d", i, got, i*10)
		}
	}
}

func TestLocateCoversBucketBoundaries(t *testing.T) {
	// idx 0 is the first element of bucket 0; idx 15 is its last
	// (bucket 0 has firstBucketSize==16 elements). idx 16 must fall
	// into bucket 1.
	b, off := locate(0)
	if b != 0 || off != 0 {
		t.Fatalf("locate(0) = (%d,%d), want (0,0)", b, off)
	}
	b, off = locate(15)
	if b != 0 || off != 15 {
		t.Fatalf("locate(15) = (%d,%d), want (0,15)", b, off)
	}
	b, off = locate(16)
	if b != 1 || off != 0 {
		t.Fatalf("locate(16) = (%d,%d), want (1,0)", b, off)
	}
}

func TestPtrStableAcrossBucketGrowth(t *testing.T) {
	m := New[int](DefaultBuckets)
	m.Set(0, 42)
	p := m.Ptr(0)
	// force allocation of later buckets; must not invalidate p.
	for i := 1; i < 10000; i++ {
		m.Set(uint64(i), i)
	}
	if *p != 42 {
		t.Fatalf("*p = %d, want 42 (bucket growth must not move existing data)", *p)
	}
}

func TestConcurrentPushBackNoLostWrites(t *testing.T) {
	m := New[int](DefaultBuckets)
	const n = 20000
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n/8; i++ {
				m.PushBack(1)
			}
		}()
	}
	wg.Wait()
	if m.Size() != n {
		t.Fatalf("Size() = %d, want %d", m.Size(), n)
	}
	sum := 0
	for i := uint64(0); i < m.Size(); i++ {
		sum += m.Get(i)
	}
	if sum != n {
		t.Fatalf("sum of written values = %d, want %d (lost write)", sum, n)
	}
}

func TestReflogPushBackAndIterate(t *testing.T) {
	r := NewReflog()
	offsets := []uint64{3, 7, 19, 1024, 999999}
	for _, o := range offsets {
		r.PushBack(o)
	}
	if r.Size() != uint64(len(offsets)) {
		t.Fatalf("Size() = %d, want %d", r.Size(), len(offsets))
	}
	for i, want := range offsets {
		if got := r.Get(uint64(i)); got != want {
			t.Fatalf("Get(%d) = %d, want %d", i, got, want)
		}
	}
}
