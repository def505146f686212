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

// Package atomicx provides the lock-free primitives the rest of the
// engine is built from: a generation-counted swappable pointer that lets
// readers hold on to a value across a concurrent replacement, and a
// spin-wait yield helper for CAS retry loops.
//
// Ordinary memory-ordered loads, stores, CAS and fetch-add on machine
// words are provided directly by sync/atomic's typed wrappers
// (atomic.Int64, atomic.Uint64, atomic.Pointer[T]); this package only
// adds what the standard library does not: coordinated reclamation of a
// pointer that is being swapped out from under active readers.
package atomicx
