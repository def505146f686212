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

// Package aggregate implements a summary value that is safe to read at
// any point in the data log's history while writers keep extending it.
// Each writer thread owns one lock-free, prepend-only version chain of
// (value, version) nodes (List); reading "the aggregate as of version
// v" walks a chain for the largest node version <= v with no
// coordination against concurrent prepends. The process-wide aggregate
// combines one List per writer slot, merging their per-version reads
// with the Aggregator's ParCombine.
package aggregate
