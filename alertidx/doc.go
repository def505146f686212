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

// Package alertidx implements the trigger monitor's alert store: a
// radix tree keyed by time_block mapping to the list of alerts raised
// in that bucket, deduplicated by (trigger_name, value) the same way
// the original engine's alert_index does a linear scan of the bucket's
// small alert log before inserting. The monitor is the index's only
// writer, so no synchronization beyond the radix tree's own lock-free
// insert is needed.
package alertidx
