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

package radixidx

import (
	"sync"
	"testing"
)

func key(depth int, bytes ...byte) []byte {
	k := make([]byte, depth)
	copy(k, bytes)
	return k
}

func TestInsertAndGet(t *testing.T) {
	tr := NewReflogTree(2, DefaultWidth)
	if _, err := tr.Insert(key(2, 1, 2), 100); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Insert(key(2, 1, 2), 200); err != nil {
		t.Fatal(err)
	}
	refs, ok := tr.Get(key(2, 1, 2))
	if !ok || refs == nil || refs.Size() != 2 {
		t.Fatalf("Get returned %v, want a Reflog of size 2", refs)
	}
	if refs.Get(0) != 100 || refs.Get(1) != 200 {
		t.Fatalf("reflog contents = [%d,%d], want [100,200]", refs.Get(0), refs.Get(1))
	}

	missing, ok := tr.Get(key(2, 9, 9))
	if ok || missing != nil {
		t.Fatal("expected nil Reflog for a key never inserted")
	}
}

func TestWrongKeyLengthErrors(t *testing.T) {
	tr := NewReflogTree(2, DefaultWidth)
	if _, err := tr.Insert([]byte{1}, 1); err == nil {
		t.Fatal("expected error for key shorter than tree depth")
	}
}

func TestRangeLookupOrdersByKey(t *testing.T) {
	tr := NewReflogTree(1, DefaultWidth)
	for _, k := range []byte{5, 1, 9, 3} {
		if _, err := tr.Insert([]byte{k}, uint64(k)); err != nil {
			t.Fatal(err)
		}
	}
	refs, err := tr.RangeLookup([]byte{0}, []byte{255})
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 4 {
		t.Fatalf("len(refs) = %d, want 4", len(refs))
	}
	var got []uint64
	for _, r := range refs {
		got = append(got, r.Get(0))
	}
	want := []uint64{1, 3, 5, 9}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("refs[%d] = %d, want %d (range lookup must be key-ordered)", i, got[i], w)
		}
	}
}

func TestRangeLookupBoundedSubrange(t *testing.T) {
	tr := NewReflogTree(1, DefaultWidth)
	for _, k := range []byte{5, 1, 9, 3, 20} {
		tr.Insert([]byte{k}, uint64(k))
	}
	refs, err := tr.RangeLookup([]byte{2}, []byte{10})
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 3 {
		t.Fatalf("len(refs) = %d, want 3 (3,5,9)", len(refs))
	}
}

func TestApproxCount(t *testing.T) {
	tr := NewReflogTree(1, DefaultWidth)
	tr.Insert([]byte{1}, 10)
	tr.Insert([]byte{1}, 11)
	tr.Insert([]byte{2}, 12)
	n, err := tr.ApproxCount([]byte{0}, []byte{255})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("ApproxCount = %d, want 3", n)
	}
}

func TestConcurrentInsertSamePathNoDuplicateNodes(t *testing.T) {
	tr := NewReflogTree(2, DefaultWidth)
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tr.Insert(key(2, 7, 7), 1)
			}
		}()
	}
	wg.Wait()
	refs, ok := tr.Get(key(2, 7, 7))
	if !ok {
		t.Fatal("expected leaf to exist")
	}
	if refs.Size() != 1600 {
		t.Fatalf("Size() = %d, want 1600 (lost writes under concurrent node creation)", refs.Size())
	}
}
