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
	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/exprc"
	"github.com/ucbrise/confluo-sub001/filter"
	"github.com/ucbrise/confluo-sub001/trigger"
	"github.com/ucbrise/confluo-sub001/types"
)

// AddIndex builds a value index over field, bucketing keys at
// bucketSize (m.opts.DefaultIndexBucketSize if <= 0). The new index
// passes through column.h's unindexed -> indexing -> indexed state
// machine: it accepts inserts for every record appended from the
// moment it's registered, then flips to indexed once installed. The
// index is not backfilled: records already in the data log when
// AddIndex runs are never inserted into it, so index lookups (and
// ExecuteFilter plans that use it) do not return them.
func (m *AtomicMultilog) AddIndex(field string, bucketSize float64) error {
	return m.mgmt.SubmitWait(func() error {
		if bucketSize <= 0 {
			bucketSize = m.opts.DefaultIndexBucketSize
		}
		if err := m.installIndex(field, bucketSize); err != nil {
			return err
		}
		return m.metaWriter.WriteIndex(field, bucketSize)
	})
}

func (m *AtomicMultilog) installIndex(field string, bucketSize float64) error {
	col, err := m.schema.ColumnByName(field)
	if err != nil {
		return err
	}
	ci := newColumnIndex(col.Name, col.Type, bucketSize)
	if !ci.markIndexing() {
		return errs.New(errs.IllegalState, "index on %s failed to enter the indexing state", field)
	}
	if err := m.indexes.Add(col.Name, ci); err != nil {
		return err
	}
	ci.markIndexed()
	return nil
}

// RemoveIndex invalidates field's index. Its backing storage is left
// exactly as it was (spec invariant I5); a later AddIndex for the same
// field starts from a fresh, empty index rather than reusing it.
func (m *AtomicMultilog) RemoveIndex(field string) error {
	return m.mgmt.SubmitWait(func() error {
		ci, ok := m.indexes.Get(field)
		if !ok {
			return errs.New(errs.ManagementError, "index on %s does not exist.", field)
		}
		if err := m.indexes.Remove(field); err != nil {
			return err
		}
		ci.markUnindexed()
		return nil
	})
}

// AddFilter compiles exprSrc against the schema and registers it under
// name.
func (m *AtomicMultilog) AddFilter(name, exprSrc string) error {
	return m.mgmt.SubmitWait(func() error {
		if err := m.installFilter(name, exprSrc); err != nil {
			return err
		}
		return m.metaWriter.WriteFilter(name, exprSrc)
	})
}

func (m *AtomicMultilog) installFilter(name, exprSrc string) error {
	compiled, err := exprc.Compile(m.schema, exprSrc)
	if err != nil {
		return err
	}
	f := filter.New(name, compiled, m.opts.TimeResolutionMicros)
	return m.filters.Add(name, f)
}

// RemoveFilter invalidates the named filter; every aggregate still
// attached to it stops updating too, since Filter.Update checks the
// filter's own validity before touching any bucket.
func (m *AtomicMultilog) RemoveFilter(name string) error {
	return m.mgmt.SubmitWait(func() error {
		f, ok := m.filters.Get(name)
		if !ok {
			return errs.New(errs.ManagementError, "Filter %s does not exist.", name)
		}
		if err := m.filters.Remove(name); err != nil {
			return err
		}
		f.Invalidate()
		return nil
	})
}

// AddAggregate attaches a new aggregate named name to filterName,
// computed from aggExprSrc ("SUM(field)", "COUNT(*)", ...).
func (m *AtomicMultilog) AddAggregate(name, filterName, aggExprSrc string) error {
	return m.mgmt.SubmitWait(func() error {
		if err := m.installAggregate(name, filterName, aggExprSrc); err != nil {
			return err
		}
		return m.metaWriter.WriteAggregate(name, filterName, aggExprSrc)
	})
}

func (m *AtomicMultilog) installAggregate(name, filterName, aggExprSrc string) error {
	f, ok := m.filters.Get(filterName)
	if !ok {
		return errs.New(errs.ManagementError, "filter %s does not exist.", filterName)
	}
	if _, exists := m.aggregates.Get(name); exists {
		return errs.New(errs.ManagementError, "Aggregate %s already exists.", name)
	}
	parsed, err := parseAggExpr(aggExprSrc)
	if err != nil {
		return err
	}
	fieldIndex := filter.NoField
	fieldType := types.ULongType()
	if !parsed.isCount() {
		col, err := m.schema.ColumnByName(parsed.field)
		if err != nil {
			return err
		}
		fieldIndex = int(col.Idx)
		fieldType = col.Type
	}
	aggID, agg, err := types.LookupAggregator(parsed.aggregator)
	if err != nil {
		return err
	}
	spec := f.AddAggregate(name, fieldIndex, aggID, agg, fieldType)
	handle := &aggregateHandle{filterName: filterName, filter: f, spec: spec}
	return m.aggregates.Add(name, handle)
}

// RemoveAggregate invalidates the named aggregate, both in the
// multilog's own registry and on the filter it's attached to.
func (m *AtomicMultilog) RemoveAggregate(name string) error {
	return m.mgmt.SubmitWait(func() error {
		h, ok := m.aggregates.Get(name)
		if !ok {
			return errs.New(errs.ManagementError, "Aggregate %s does not exist.", name)
		}
		if err := m.aggregates.Remove(name); err != nil {
			return err
		}
		return h.filter.RemoveAggregate(name)
	})
}

// InstallTrigger installs a trigger named name evaluating triggerExprSrc
// ("agg_name relop literal") every periodicityMs, which must be a
// positive multiple of the monitor's tick interval.
func (m *AtomicMultilog) InstallTrigger(name, triggerExprSrc string, periodicityMs uint64) error {
	return m.mgmt.SubmitWait(func() error {
		if err := m.installTrigger(name, triggerExprSrc, periodicityMs); err != nil {
			return err
		}
		return m.metaWriter.WriteTrigger(name, triggerExprSrc, periodicityMs)
	})
}

func (m *AtomicMultilog) installTrigger(name, triggerExprSrc string, periodicityMs uint64) error {
	if periodicityMs == 0 || periodicityMs%m.opts.MonitorTickMs != 0 {
		return errs.New(errs.ManagementError, "trigger periodicity %dms must be a positive multiple of the monitor tick (%dms)", periodicityMs, m.opts.MonitorTickMs)
	}
	pred, err := parseTriggerExpr(triggerExprSrc)
	if err != nil {
		return err
	}
	h, ok := m.aggregates.Get(pred.Attr)
	if !ok {
		return errs.New(errs.ManagementError, "aggregate %s does not exist.", pred.Attr)
	}
	if _, exists := m.triggers.Get(name); exists {
		return errs.New(errs.ManagementError, "Trigger %s already exists.", name)
	}
	threshold, err := h.spec.ResultType().Parse(pred.Value)
	if err != nil {
		return err
	}
	t := trigger.New(name, pred.Attr, pred.Op, threshold, periodicityMs)
	if err := m.triggers.Add(name, t); err != nil {
		return err
	}
	m.monitor.Install(t, trigger.Target{Filter: h.filter, AggregateIndex: h.spec.Index})
	return nil
}

// RemoveTrigger invalidates the named trigger; the monitor skips it
// from the next tick onward.
func (m *AtomicMultilog) RemoveTrigger(name string) error {
	return m.mgmt.SubmitWait(func() error {
		t, ok := m.triggers.Get(name)
		if !ok {
			return errs.New(errs.ManagementError, "Trigger %s does not exist.", name)
		}
		if err := m.triggers.Remove(name); err != nil {
			return err
		}
		t.Invalidate()
		return nil
	})
}

// Archive re-encodes every bucket of filterName's time index older
// than beforeTimeMicros, snapshotting their aggregate values as of the
// current read tail. It returns how many buckets were archived.
func (m *AtomicMultilog) Archive(filterName string, beforeTimeMicros uint64) (int, error) {
	var n int
	err := m.mgmt.SubmitWait(func() error {
		f, ok := m.filters.Get(filterName)
		if !ok {
			return errs.New(errs.ManagementError, "filter %s does not exist.", filterName)
		}
		version := m.dataLog.ReadTail().Get()
		before := f.TimeBlock(beforeTimeMicros)
		var err error
		n, err = f.ArchiveBefore(before, version)
		return err
	})
	return n, err
}
