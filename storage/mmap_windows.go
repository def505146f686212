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

//go:build windows

package storage

// newFileBlock on Windows falls back to a plain heap allocation: the
// original engine's mmap-backed storage modes are POSIX-specific
// (sys/mman.h), and this module has no Windows file-mapping path to
// ground one on. DurableRelaxed/Durable therefore behave like InMemory
// on this platform; Flush is a no-op rather than silently lying about
// having synced anything.
func newFileBlock(mode Mode, dir, name string, index, size int) (*Block, error) {
	return &Block{data: make([]byte, size), mode: mode}, nil
}
