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
	"math/bits"
	"sync/atomic"
)

// firstBucketSize and firstBucketHiBit fix the size of bucket 0 at 16
// elements; bucket i holds 1<<(i+firstBucketHiBit) elements, so the
// monolog's total capacity doubles with each additional bucket.
const (
	firstBucketSize  = 16
	firstBucketHiBit = 4
	// DefaultBuckets accommodates indices up to 2^48, which is enough
	// headroom that callers never need to size this explicitly.
	DefaultBuckets = 44
)

// Monolog is a lock-free, append-only array of T addressed by a
// monotonically increasing index. Buckets are allocated lazily and
// exactly once (via a pointer CAS); once allocated a bucket is never
// freed or moved, so a *T obtained from Ptr remains valid for the life
// of the Monolog.
type Monolog[T any] struct {
	buckets []atomic.Pointer[[]T]
	tail    atomic.Uint64
}

// New constructs an empty Monolog with room for nbuckets exponentially
// sized buckets (DefaultBuckets if nbuckets <= 0).
func New[T any](nbuckets int) *Monolog[T] {
	if nbuckets <= 0 {
		nbuckets = DefaultBuckets
	}
	return &Monolog[T]{buckets: make([]atomic.Pointer[[]T], nbuckets)}
}

// locate maps a logical index to the bucket holding it and the element
// offset within that bucket, mirroring the original engine's
// monolog_exp2 index arithmetic: pos = idx+firstBucketSize folds the
// virtual 16-element bucket 0 into the same formula that governs every
// later (exponentially larger) bucket.
func locate(idx uint64) (bucketIdx int, offset int) {
	pos := idx + firstBucketSize
	hibit := bits.Len64(pos) - 1
	offset = int(pos ^ (uint64(1) << uint(hibit)))
	bucketIdx = hibit - firstBucketHiBit
	return bucketIdx, offset
}

func bucketCap(bucketIdx int) int {
	return 1 << uint(bucketIdx+firstBucketHiBit)
}

// ensureBucket returns the backing slice for bucketIdx, allocating and
// installing it via CAS if this is the first access. Only one of any
// racing allocators wins; the rest discard their allocation and read
// back the winner's.
func (m *Monolog[T]) ensureBucket(bucketIdx int) []T {
	p := &m.buckets[bucketIdx]
	if b := p.Load(); b != nil {
		return *b
	}
	fresh := make([]T, bucketCap(bucketIdx))
	if p.CompareAndSwap(nil, &fresh) {
		return fresh
	}
	return *p.Load()
}

// Reserve atomically reserves count consecutive indices and returns the
// first one, the monolog equivalent of a fetch-and-add on the tail.
func (m *Monolog[T]) Reserve(count uint64) uint64 {
	return m.tail.Add(count) - count
}

// PushBack reserves a single index, ensures its bucket exists, writes
// val, and returns the assigned index.
func (m *Monolog[T]) PushBack(val T) uint64 {
	idx := m.Reserve(1)
	m.Set(idx, val)
	return idx
}

// Set writes val at idx, allocating idx's bucket if necessary. Set does
// not itself reserve idx; callers normally obtain idx from Reserve or
// PushBack first.
func (m *Monolog[T]) Set(idx uint64, val T) {
	bucketIdx, off := locate(idx)
	bucket := m.ensureBucket(bucketIdx)
	bucket[off] = val
}

// Get returns the value at idx. The caller is responsible for only
// reading indices below Size() (or otherwise known to have been
// written), the same contract the original engine's read/write tail
// split enforces.
func (m *Monolog[T]) Get(idx uint64) T {
	bucketIdx, off := locate(idx)
	bucket := m.ensureBucket(bucketIdx)
	return bucket[off]
}

// Ptr returns a pointer to the slot at idx, stable for the life of the
// Monolog.
func (m *Monolog[T]) Ptr(idx uint64) *T {
	bucketIdx, off := locate(idx)
	bucket := m.ensureBucket(bucketIdx)
	return &bucket[off]
}

// Size returns the current tail, i.e. one past the highest index ever
// reserved.
func (m *Monolog[T]) Size() uint64 {
	return m.tail.Load()
}

// CopyInto copies the contiguous range [idx, idx+len(dst)) into dst.
func (m *Monolog[T]) CopyInto(dst []T, idx uint64) {
	for i := range dst {
		dst[i] = m.Get(idx + uint64(i))
	}
}
