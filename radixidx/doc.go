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

// Package radixidx implements the fixed-depth, fixed-fan-out radix
// tree used to index a column's order-preserving key bytes to the
// Reflog of record offsets sharing that key (or key bucket). Every
// level of the tree selects one byte of the key as its child index, so
// a tree over N-byte keys has exactly N levels and (with the default
// 256-way fan-out) never needs rebalancing: a key's path is entirely
// determined by its bytes. Node creation along that path is
// CAS-guarded so concurrent writers never race to install the same
// child twice.
package radixidx
