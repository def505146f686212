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

// Package task implements the multilog's single-writer management
// queue (add_index/add_filter/add_aggregate/install_trigger and their
// removals all funnel through it so schema/index/filter changes
// serialize without ever blocking the lock-free append/query paths)
// and NameRegistry, the generic name->id map those management
// operations populate (filters, aggregates, triggers, indexes): one
// writer goroutine mutates it, any number of readers see a consistent
// snapshot via an atomic pointer swap, the Go equivalent of the
// original engine's single-writer string_map.
package task
