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

package storage

import "github.com/ucbrise/confluo-sub001/errs"

// Block is one fixed-size allocation unit of a data log or aggregate
// log. Bytes returns the whole block's backing memory; Flush persists
// byte range [off, off+n) according to Mode (a no-op for InMemory);
// Close releases any OS resources (file mapping) the block holds.
type Block struct {
	data    []byte
	mode    Mode
	flushFn func(data []byte, off, n int) error
	closeFn func(data []byte) error
}

// Bytes returns the block's backing memory.
func (b *Block) Bytes() []byte { return b.data }

// Flush persists byte range [off, off+n) per the block's Mode.
func (b *Block) Flush(off, n int) error {
	if b.flushFn == nil || n <= 0 {
		return nil
	}
	return b.flushFn(b.data, off, n)
}

// Close releases any OS-level resources (an mmap'd file) backing this
// block. InMemory blocks need nothing; the garbage collector reclaims
// their backing array.
func (b *Block) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn(b.data)
}

// NewBlock allocates one block of size bytes. dir/name/index name the
// backing file for a file-backed mode ("<dir>/<name>_<index>.dat");
// they are ignored for InMemory.
func NewBlock(mode Mode, dir, name string, index, size int) (*Block, error) {
	switch mode {
	case InMemory:
		return &Block{data: make([]byte, size), mode: mode}, nil
	case DurableRelaxed, Durable:
		return newFileBlock(mode, dir, name, index, size)
	default:
		return nil, errs.New(errs.ManagementError, "unrecognized storage mode %v", mode)
	}
}
