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

import (
	"sync"
	"testing"
)

func TestSwappableBasic(t *testing.T) {
	v0 := 1
	s := NewSwappable(&v0)
	if got := *s.AtomicLoad(); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}

	v1 := 2
	s.Swap(&v1)
	if got := *s.AtomicLoad(); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}

func TestSwappableReaderOutlivesSwap(t *testing.T) {
	v0 := "old"
	s := NewSwappable(&v0)

	r := s.AtomicCopy()
	if got := *r.Get(); got != "old" {
		t.Fatalf("got %q, want %q", got, "old")
	}

	v1 := "new"
	s.Swap(&v1)

	// The reader pinned before the swap must still observe the old value.
	if got := *r.Get(); got != "old" {
		t.Fatalf("reader observed %q after swap, want %q", got, "old")
	}
	r.Release()

	if got := *s.AtomicLoad(); got != "new" {
		t.Fatalf("got %q, want %q", got, "new")
	}
}

func TestSwappableConcurrentReadersAndSwaps(t *testing.T) {
	v0 := 0
	s := NewSwappable(&v0)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 1000; i++ {
			v := i
			s.Swap(&v)
		}
		close(stop)
	}()

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				r := s.AtomicCopy()
				_ = *r.Get()
				r.Release()
			}
		}()
	}

	wg.Wait()
	if got := *s.AtomicLoad(); got != 1000 {
		t.Fatalf("got %d, want 1000", got)
	}
}
