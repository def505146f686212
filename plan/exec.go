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

package plan

import (
	"golang.org/x/exp/slices"

	"github.com/ucbrise/confluo-sub001/schema"
)

// Fetch resolves a candidate offset to the record stored there. ok is
// false if the offset is no longer resolvable (e.g. past the read
// tail at the moment of the call).
type Fetch func(offset uint64) (rec schema.Record, ok bool, err error)

// Execute walks every Step's ranges through its Index, fetches each
// candidate offset via fetch, and keeps it if it passes that step's
// residual filter. Offsets matching more than one step (a record
// satisfying more than one minterm) are returned once, in ascending
// order, per spec's union-with-dedup-on-offset rule.
func Execute(steps []Step, fetch Fetch) ([]uint64, error) {
	seen := make(map[uint64]bool)
	var out []uint64
	for _, step := range steps {
		for _, r := range step.Ranges {
			offsets, err := step.Index.Offsets(r.Lo, r.Hi)
			if err != nil {
				return nil, err
			}
			for _, off := range offsets {
				if seen[off] {
					continue
				}
				rec, ok, err := fetch(off)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				match, err := step.Residual.Test(rec)
				if err != nil {
					return nil, err
				}
				if match {
					seen[off] = true
					out = append(out, off)
				}
			}
		}
	}
	slices.Sort(out)
	return out, nil
}
