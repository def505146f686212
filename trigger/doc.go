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

// Package trigger implements the periodic alert-evaluation loop: a
// Trigger names an aggregate, a relational operator, and a threshold;
// a Monitor wakes on a fixed tick, re-evaluates every live Target's
// aggregate value over the rolling monitor window, and records an
// alert for every bucket whose value satisfies the trigger. Target
// binds a Trigger to the (*filter.Filter, *filter.AggregateSpec) pair
// it was installed against; the atomic multilog owns that binding
// (spec.md keeps the aggregate->trigger attachment a property of the
// engine's own bookkeeping, not of filter.AggregateSpec, to avoid a
// filter<->trigger import cycle).
package trigger
