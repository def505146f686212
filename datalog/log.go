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
	"sync/atomic"

	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/storage"
)

// DefaultBlockSize is the size of one lazily-allocated block: 64MiB,
// matching spec.md's "(e.g. 64 MiB)".
const DefaultBlockSize = 64 * 1024 * 1024

// DefaultMaxBlocks bounds the log's logical address space at
// DefaultMaxBlocks*DefaultBlockSize (16 TiB); Reserve past this fails
// with errs.Overflow rather than growing the block table unboundedly.
const DefaultMaxBlocks = 1 << 18

// Log is the append-only byte store described by spec.md §3/§4.1:
// reserve(n)->offset, write(off,bytes), read(off,n), ptr semantics via
// Bytes, and flush(off,n). Every block is the same fixed size and is
// allocated at most once, on first access, via a pointer CAS so racing
// allocators discard their own draft and use the winner's.
type Log struct {
	mode      storage.Mode
	dir, name string
	blockSize uint64
	blocks    []atomic.Pointer[storage.Block]
	tail      atomic.Uint64
	readTail  ReadTail
}

// New constructs a Log backed by mode. dir/name locate file-backed
// blocks (ignored for storage.InMemory). blockSize <= 0 defaults to
// DefaultBlockSize; maxBlocks <= 0 defaults to DefaultMaxBlocks.
func New(mode storage.Mode, dir, name string, blockSize uint64, maxBlocks int) *Log {
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	if maxBlocks <= 0 {
		maxBlocks = DefaultMaxBlocks
	}
	return &Log{
		mode:      mode,
		dir:       dir,
		name:      name,
		blockSize: blockSize,
		blocks:    make([]atomic.Pointer[storage.Block], maxBlocks),
	}
}

// BlockSize is the fixed size of one block.
func (l *Log) BlockSize() uint64 { return l.blockSize }

// ReadTail returns the log's publication watermark.
func (l *Log) ReadTail() *ReadTail { return &l.readTail }

func (l *Log) blockIndex(off uint64) (idx int, within uint64) {
	return int(off / l.blockSize), off % l.blockSize
}

// ensureBlock returns the backing block at idx, lazily allocating and
// installing it via CAS on first access. A losing allocator closes its
// own draft (releasing any mmap it opened) and reads back the winner's.
func (l *Log) ensureBlock(idx int) (*storage.Block, error) {
	if idx < 0 || idx >= len(l.blocks) {
		return nil, errs.New(errs.Overflow, "data log exceeded maximum block count %d", len(l.blocks))
	}
	p := &l.blocks[idx]
	if b := p.Load(); b != nil {
		return b, nil
	}
	fresh, err := storage.NewBlock(l.mode, l.dir, l.name, idx, int(l.blockSize))
	if err != nil {
		return nil, err
	}
	if p.CompareAndSwap(nil, fresh) {
		return fresh, nil
	}
	fresh.Close()
	return p.Load(), nil
}

// Reserve atomically reserves n consecutive bytes and returns the
// first offset, the byte-log equivalent of monolog's fetch-and-add
// reservation. Reserving a range that would cross into a block beyond
// the log's configured capacity fails with errs.Overflow; the
// reservation itself (the tail bump) is not rolled back, matching
// spec.md's note that speculative allocation from a failed operation
// is harmless and kept.
func (l *Log) Reserve(n uint64) (uint64, error) {
	off := l.tail.Add(n) - n
	if n > 0 {
		lastBlock, _ := l.blockIndex(off + n - 1)
		if lastBlock >= len(l.blocks) {
			return 0, errs.New(errs.Overflow, "reserve(%d) at offset %d exceeds maximum block count %d", n, off, len(l.blocks))
		}
	}
	return off, nil
}

// Write copies data into the log starting at off, allocating every
// block the range touches. Write does not itself reserve off; callers
// normally obtain off from Reserve first.
func (l *Log) Write(off uint64, data []byte) error {
	remaining := data
	cur := off
	for len(remaining) > 0 {
		idx, within := l.blockIndex(cur)
		blk, err := l.ensureBlock(idx)
		if err != nil {
			return err
		}
		n := copy(blk.Bytes()[within:], remaining)
		remaining = remaining[n:]
		cur += uint64(n)
	}
	return nil
}

// Read returns a copy of the n bytes starting at off. The caller is
// responsible for only reading ranges below ReadTail().Get() (or
// otherwise known to be fully written).
func (l *Log) Read(off uint64, n int) ([]byte, error) {
	out := make([]byte, n)
	cur := off
	remaining := out
	for len(remaining) > 0 {
		idx, within := l.blockIndex(cur)
		blk, err := l.ensureBlock(idx)
		if err != nil {
			return nil, err
		}
		c := copy(remaining, blk.Bytes()[within:])
		remaining = remaining[c:]
		cur += uint64(c)
	}
	return out, nil
}

// Ptr returns the backing slice for the block holding off, truncated
// to the remainder of that block (it does not span block boundaries).
// This mirrors the original engine's raw ptr(off) access used by
// schema.Record views that read directly out of log storage.
func (l *Log) Ptr(off uint64) ([]byte, error) {
	idx, within := l.blockIndex(off)
	blk, err := l.ensureBlock(idx)
	if err != nil {
		return nil, err
	}
	return blk.Bytes()[within:], nil
}

// Flush persists byte range [off, off+n) to durable storage per the
// log's Mode (a no-op for storage.InMemory). An empty range is a
// no-op.
func (l *Log) Flush(off uint64, n int) error {
	cur := off
	remaining := n
	for remaining > 0 {
		idx, within := l.blockIndex(cur)
		blk, err := l.ensureBlock(idx)
		if err != nil {
			return err
		}
		avail := int(l.blockSize - within)
		c := remaining
		if c > avail {
			c = avail
		}
		if err := blk.Flush(int(within), c); err != nil {
			return err
		}
		cur += uint64(c)
		remaining -= c
	}
	return nil
}

// Size returns the number of bytes ever reserved (the write tail,
// which may be ahead of ReadTail if appends are still publishing).
func (l *Log) Size() uint64 { return l.tail.Load() }

// Restore sets both the write tail and the read tail to tail, for a
// freshly-constructed Log being reattached to a durable store that
// already holds tail bytes of committed data. It must only be called
// before any concurrent Reserve/Append observes this Log.
func (l *Log) Restore(tail uint64) {
	l.tail.Store(tail)
	l.readTail.v.Store(tail)
}
