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

// Package confluo wires schema, datalog, radixidx, filter, aggregate,
// exprc, plan, trigger, alertidx, task, and metadata into one
// AtomicMultilog: the append/read data path, the index/filter/
// aggregate/trigger management surface, and the query surface
// (ExecuteFilter, QueryFilter, GetAggregate, GetAlerts) described by
// atomic_multilog.h in the original engine.
//
// A multilog is append-only: once a schema is built it never changes
// shape, and every structural change (adding an index, a filter, an
// aggregate, or a trigger) goes through a single-writer management
// queue so ingest and queries never block on it.
package confluo
