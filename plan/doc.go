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

// Package plan turns a compiled filter expression into a set of index
// scans. For each minterm it derives a key range per indexed predicate,
// intersects ranges that constrain the same field, and picks the
// cheapest (by approximate cardinality) indexed field to drive the
// scan; the minterm's full predicate set is kept as a residual filter
// applied to every candidate offset the chosen index produces.
//
// Plan only decides what to scan; Execute walks the resulting Steps
// against a record source supplied by the caller (the atomic multilog),
// since this package has no notion of record storage itself.
package plan
