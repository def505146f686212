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

package confluo

import (
	"github.com/ucbrise/confluo-sub001/alertidx"
	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/exprc"
	"github.com/ucbrise/confluo-sub001/plan"
	"github.com/ucbrise/confluo-sub001/schema"
	"github.com/ucbrise/confluo-sub001/types"
)

// liveIndexSet snapshots the currently-registered column indexes as a
// plan.IndexSet, so a single query plans against one consistent view
// even if AddIndex/RemoveIndex run concurrently against later ones.
func (m *AtomicMultilog) liveIndexSet() plan.Indexes {
	set := make(plan.Indexes)
	for _, name := range m.indexes.Names() {
		if ci, ok := m.indexes.Get(name); ok {
			set[name] = ci
		}
	}
	return set
}

// fetchBelow returns a plan.Fetch bounded to records committed at or
// before tail, the read tail captured at query-plan time: a record
// reserved concurrently with planning is simply not a candidate yet,
// the same as if the query had run a moment earlier.
func (m *AtomicMultilog) fetchBelow(tail uint64) plan.Fetch {
	recordSize := m.schema.RecordSize()
	return func(offset uint64) (schema.Record, bool, error) {
		if offset+uint64(recordSize) > tail {
			return schema.Record{}, false, nil
		}
		data, err := m.dataLog.Read(offset, recordSize)
		if err != nil {
			return schema.Record{}, false, err
		}
		return m.schema.Apply(offset, data), true, nil
	}
}

// ExecuteFilter compiles exprSrc ad hoc against the schema and plans it
// over whichever columns currently carry an index, spec.md's
// execute_filter(): unlike QueryFilter it consults no standing Filter,
// so only indexed predicates can ever be satisfied (a minterm with no
// indexed field fails to plan at all, matching plan.New's contract).
func (m *AtomicMultilog) ExecuteFilter(exprSrc string) (*Cursor, error) {
	compiled, err := exprc.Compile(m.schema, exprSrc)
	if err != nil {
		return nil, err
	}
	tail := m.dataLog.ReadTail().Get()
	p, err := plan.New(m.liveIndexSet(), compiled)
	if err != nil {
		return nil, err
	}
	offsets, err := plan.Execute(p.Steps, m.fetchBelow(tail))
	if err != nil {
		return nil, err
	}
	return newCursor(offsets, m.Read), nil
}

// QueryFilter looks up filterName's standing aggregated reflog over
// [t1Ms, t2Ms] and, if additionalExprSrc is non-empty, further restricts
// the result to records also satisfying that ad hoc expression
// (spec.md's query_filter(), combining a pre-materialized filter with a
// residual predicate instead of planning from scratch).
func (m *AtomicMultilog) QueryFilter(filterName string, t1Ms, t2Ms uint64, additionalExprSrc string) (*Cursor, error) {
	f, ok := m.filters.Get(filterName)
	if !ok {
		return nil, errs.New(errs.ManagementError, "filter %s does not exist.", filterName)
	}
	t1Micros := t1Ms * 1000
	t2Micros := t2Ms * 1000
	buckets, err := f.LookupRange(f.TimeBlock(t1Micros), f.TimeBlock(t2Micros))
	if err != nil {
		return nil, err
	}

	var residual exprc.CompiledExpression
	if additionalExprSrc != "" {
		residual, err = exprc.Compile(m.schema, additionalExprSrc)
		if err != nil {
			return nil, err
		}
	}

	tail := m.dataLog.ReadTail().Get()
	fetch := m.fetchBelow(tail)
	seen := make(map[uint64]bool)
	var offsets []uint64
	for _, b := range buckets {
		n := b.Size()
		for i := uint64(0); i < n; i++ {
			off := b.Get(i)
			if seen[off] {
				continue
			}
			if len(residual) > 0 {
				rec, ok, err := fetch(off)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				match, err := residual.Test(rec)
				if err != nil {
					return nil, err
				}
				if !match {
					continue
				}
			}
			seen[off] = true
			offsets = append(offsets, off)
		}
	}
	return newCursor(offsets, m.Read), nil
}

// GetAggregate returns the named aggregate's value over [t1Ms, t2Ms],
// combined as of the current read tail. Aggregate names are unique
// across the whole multilog (installAggregate rejects duplicates), so
// the owning filter is looked up from the name alone, matching
// spec.md's get_aggregate(agg_name, t1_ms, t2_ms).
func (m *AtomicMultilog) GetAggregate(aggregateName string, t1Ms, t2Ms uint64) (types.Numeric, error) {
	h, ok := m.aggregates.Get(aggregateName)
	if !ok {
		return types.Numeric{}, errs.New(errs.ManagementError, "aggregate %s does not exist.", aggregateName)
	}
	version := m.dataLog.ReadTail().Get()
	return h.filter.GetAggregate(aggregateName, t1Ms*1000, t2Ms*1000, version)
}

// GetAlerts returns every alert recorded in [t1Ms, t2Ms], optionally
// restricted to triggerName (the alert index itself has no per-trigger
// key, so the filter is applied after the range lookup).
func (m *AtomicMultilog) GetAlerts(t1Ms, t2Ms uint64, triggerName string) ([]alertidx.Alert, error) {
	alerts, err := m.alerts.GetAlerts(t1Ms, t2Ms)
	if err != nil {
		return nil, err
	}
	if triggerName == "" {
		return alerts, nil
	}
	out := alerts[:0]
	for _, a := range alerts {
		if a.TriggerName == triggerName {
			out = append(out, a)
		}
	}
	return out, nil
}
