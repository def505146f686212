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

// Package types implements the scalar type system that every column,
// record and aggregate in the engine is built from: bool, (un)signed
// integers from 8 to 64 bits, float32/float64, and a fixed-width byte
// string.
//
// A Type supplies byte size, zero/min/max/one constants, binary and
// unary arithmetic, relational comparison, a key-transform producing a
// lexicographically-ordered fixed-length byte string, and a string
// parser/formatter plus a binary codec. Types are looked up by name
// through the process-wide Registry, which callers may extend with
// their own Type implementations at init time.
package types
