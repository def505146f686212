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

import "bytes"

// Range is an inclusive [Lo, Hi] bound over a field's key-transformed
// byte strings.
type Range struct {
	Lo, Hi []byte
}

// incKey returns key+1 in the byte string's own ordering (increment
// the last byte with carry). ok is false if key is already the
// maximum representable string of its width (the range above it is
// empty).
func incKey(key []byte) (out []byte, ok bool) {
	out = append([]byte(nil), key...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0xFF {
			out[i]++
			return out, true
		}
		out[i] = 0x00
	}
	return out, false
}

// decKey returns key-1, or ok=false if key is already all-zero.
func decKey(key []byte) (out []byte, ok bool) {
	out = append([]byte(nil), key...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0x00 {
			out[i]--
			return out, true
		}
		out[i] = 0xFF
	}
	return out, false
}

// intersect returns the overlap of a and b, or ok=false if they don't
// overlap: max(a.Lo,b.Lo) .. min(a.Hi,b.Hi).
func intersect(a, b Range) (Range, bool) {
	lo := a.Lo
	if bytes.Compare(b.Lo, lo) > 0 {
		lo = b.Lo
	}
	hi := a.Hi
	if bytes.Compare(b.Hi, hi) < 0 {
		hi = b.Hi
	}
	if bytes.Compare(lo, hi) > 0 {
		return Range{}, false
	}
	return Range{Lo: lo, Hi: hi}, true
}

// intersectSets intersects every range in a against every range in b,
// keeping only the non-empty overlaps: the general conjunction of two
// (possibly multi-range, e.g. from a != predicate) constraints on the
// same field.
func intersectSets(a, b []Range) []Range {
	out := make([]Range, 0, len(a)*len(b))
	for _, ra := range a {
		for _, rb := range b {
			if r, ok := intersect(ra, rb); ok {
				out = append(out, r)
			}
		}
	}
	return out
}
