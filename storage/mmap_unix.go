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

//go:build !windows

package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/ucbrise/confluo-sub001/errs"
)

func blockPath(dir, name string, index int) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%d.dat", name, index))
}

// newFileBlock creates (or reopens) the backing file for one block and
// maps it PROT_READ|PROT_WRITE/MAP_SHARED, so writes through the
// returned slice are visible to any other mapping of the same file and
// eventually reach disk via the OS page cache (DurableRelaxed) or an
// explicit msync+fsync on Flush (Durable).
func newFileBlock(mode Mode, dir, name string, index, size int) (*Block, error) {
	path := blockPath(dir, name, index)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errs.New(errs.IllegalState, "creating storage directory for %s: %v", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errs.New(errs.IllegalState, "opening backing file %s: %v", path, err)
	}
	defer f.Close()
	if info, err := f.Stat(); err == nil && info.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			return nil, errs.New(errs.IllegalState, "truncating backing file %s: %v", path, err)
		}
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errs.New(errs.IllegalState, "mmap %s: %v", path, err)
	}
	b := &Block{data: data, mode: mode}
	b.closeFn = func(d []byte) error {
		if err := unix.Munmap(d); err != nil {
			return errs.New(errs.IllegalState, "munmap %s: %v", path, err)
		}
		return nil
	}
	if mode == Durable {
		b.flushFn = func(d []byte, off, n int) error {
			if err := unix.Msync(d[off:off+n], unix.MS_SYNC); err != nil {
				return errs.New(errs.IllegalState, "msync %s: %v", path, err)
			}
			sf, err := os.OpenFile(path, os.O_RDWR, 0o644)
			if err != nil {
				return errs.New(errs.IllegalState, "reopening %s for fsync: %v", path, err)
			}
			defer sf.Close()
			if err := sf.Sync(); err != nil {
				return errs.New(errs.IllegalState, "fsync %s: %v", path, err)
			}
			return nil
		}
	}
	return b, nil
}
