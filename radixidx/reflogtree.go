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

import "github.com/ucbrise/confluo-sub001/monolog"

// ReflogTree is a Tree whose leaves are plain Reflogs of matching
// record offsets: the shape used for a single column's value index.
type ReflogTree = Tree[uint64, *monolog.Reflog]

// NewReflogTree constructs a ReflogTree of the given depth and
// per-level fan-out (DefaultWidth if width <= 0).
func NewReflogTree(depth, width int) *ReflogTree {
	return New[uint64, *monolog.Reflog](depth, width, monolog.NewReflog)
}
