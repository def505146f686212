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
	"runtime"

	"github.com/ucbrise/confluo-sub001/alertidx"
	"github.com/ucbrise/confluo-sub001/datalog"
	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/filter"
	"github.com/ucbrise/confluo-sub001/metadata"
	"github.com/ucbrise/confluo-sub001/schema"
	"github.com/ucbrise/confluo-sub001/task"
	"github.com/ucbrise/confluo-sub001/trigger"
)

// aggregateHandle binds a live aggregate's global name to the filter
// and filter.AggregateSpec it is attached to: a Filter has no reason
// to know its aggregates' engine-wide names (the multilog, not the
// filter, rejects a second live aggregate with the same name), so the
// multilog keeps this extra layer of bookkeeping itself.
type aggregateHandle struct {
	filterName string
	filter     *filter.Filter
	spec       *filter.AggregateSpec
}

// AtomicMultilog is the engine's orchestrator (spec.md §4.8): it owns
// one schema, one data log, and every index/filter/aggregate/trigger
// derived from it, and serializes all management (schema-shape)
// changes through a single-writer task.Queue so they never block
// ingest or queries.
type AtomicMultilog struct {
	Name   string
	schema *schema.Schema
	opts   Options

	dataLog *datalog.Log

	indexes    *task.NameRegistry[*ColumnIndex]
	filters    *task.NameRegistry[*filter.Filter]
	aggregates *task.NameRegistry[*aggregateHandle]
	triggers   *task.NameRegistry[*trigger.Trigger]

	alerts  *alertidx.Index
	monitor *trigger.Monitor
	mgmt    *task.Queue
	threads *ThreadRegistry

	metaWriter *metadata.Writer
}

// New constructs an AtomicMultilog named name over s, applying opts
// (DefaultOptions() for the documented defaults). The trigger monitor
// goroutine starts immediately; call Close to stop it and flush the
// metadata log.
func New(name string, s *schema.Schema, opts Options) (*AtomicMultilog, error) {
	opts = resolveDefaults(opts)

	dataLog := datalog.New(opts.StorageMode, opts.Dir, name, opts.DataLogBlockSize, 0)

	metaWriter, err := metadata.NewWriter(opts.Dir, opts.StorageMode)
	if err != nil {
		return nil, err
	}
	if err := metaWriter.WriteStorageMode(opts.StorageMode); err != nil {
		return nil, err
	}
	if err := metaWriter.WriteArchivalMode(opts.ArchivalMode); err != nil {
		return nil, err
	}
	if err := metaWriter.WriteSchema(schemaColumnDefs(s)); err != nil {
		return nil, err
	}

	m := newMultilog(name, s, opts, dataLog, metaWriter)
	return m, nil
}

func resolveDefaults(opts Options) Options {
	if opts.MonitorTickMs == 0 {
		opts.MonitorTickMs = trigger.DefaultTickMs
	}
	if opts.MonitorWindowMs == 0 {
		opts.MonitorWindowMs = trigger.DefaultWindowMs
	}
	if opts.TimeResolutionMicros == 0 {
		opts.TimeResolutionMicros = filter.DefaultTimeResolutionMicros
	}
	if opts.DefaultIndexBucketSize == 0 {
		opts.DefaultIndexBucketSize = 1.0
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = runtime.GOMAXPROCS(0)
	}
	return opts
}

func schemaColumnDefs(s *schema.Schema) []metadata.ColumnDef {
	cols := make([]metadata.ColumnDef, s.Len())
	for i, c := range s.Columns() {
		cols[i] = metadata.ColumnDef{Name: c.Name, TypeName: c.Type.Name(), TypeSize: c.Type.Size()}
	}
	return cols
}

func newMultilog(name string, s *schema.Schema, opts Options, dataLog *datalog.Log, metaWriter *metadata.Writer) *AtomicMultilog {
	alerts := alertidx.New()
	m := &AtomicMultilog{
		Name:       name,
		schema:     s,
		opts:       opts,
		dataLog:    dataLog,
		indexes:    task.NewNameRegistry[*ColumnIndex]("Index"),
		filters:    task.NewNameRegistry[*filter.Filter]("Filter"),
		aggregates: task.NewNameRegistry[*aggregateHandle]("Aggregate"),
		triggers:   task.NewNameRegistry[*trigger.Trigger]("Trigger"),
		alerts:     alerts,
		mgmt:       task.NewQueue(),
		threads:    NewThreadRegistry(opts.MaxConcurrency),
		metaWriter: metaWriter,
	}
	m.monitor = trigger.NewMonitor(alerts, m.dataLog.ReadTail().Get, opts.MonitorTickMs, opts.MonitorWindowMs)
	m.monitor.Start()
	return m
}

// Close stops the monitor and management queue and flushes the
// metadata log.
func (m *AtomicMultilog) Close() error {
	m.monitor.Stop()
	m.mgmt.Close()
	if err := m.metaWriter.WriteTail(m.dataLog.ReadTail().Get()); err != nil {
		return err
	}
	return m.metaWriter.Close()
}

// Schema returns this multilog's immutable column layout.
func (m *AtomicMultilog) Schema() *schema.Schema { return m.schema }

// Version returns the data log's current read tail: the version every
// subsequent GetAggregate/Archive call should be taken as of to observe
// every append whose side effects have already fully fanned out,
// mirroring atomic_multilog.h's get_version().
func (m *AtomicMultilog) Version() uint64 { return m.dataLog.ReadTail().Get() }

// RegisterThread reserves a writer slot id for the calling goroutine,
// spec.md §5's register_thread(). Every Append/AppendBatch call from
// that goroutine should reuse the returned id until DeregisterThread.
func (m *AtomicMultilog) RegisterThread() (int, error) { return m.threads.Register() }

// DeregisterThread releases id back to the free pool.
func (m *AtomicMultilog) DeregisterThread(id int) { m.threads.Deregister(id) }

// GetMaxConcurrency is the fixed writer-slot capacity configured at
// construction, spec.md §5's get_max_concurrency().
func (m *AtomicMultilog) GetMaxConcurrency() int { return m.threads.MaxConcurrency() }

// Append reserves space for one record, applies the schema, fans it
// out to every live index and filter, and advances the read tail only
// once every fan-out step and the flush complete. The returned offset
// is stable: it never moves or gets reused. Record must be exactly
// m.Schema().RecordSize() bytes; a mismatch fails immediately with
// errs.InvalidOp, before anything is reserved.
func (m *AtomicMultilog) Append(writerID int, record []byte) (uint64, error) {
	recordSize := m.schema.RecordSize()
	if len(record) != recordSize {
		return 0, errs.New(errs.InvalidOp, "append: record is %d bytes, schema expects %d", len(record), recordSize)
	}
	off, err := m.dataLog.Reserve(uint64(recordSize))
	if err != nil {
		return 0, err
	}
	if err := m.dataLog.Write(off, record); err != nil {
		return 0, err
	}
	rec := m.schema.Apply(off, record)
	if err := m.fanOut(writerID, rec); err != nil {
		return 0, err
	}
	if err := m.dataLog.Flush(off, recordSize); err != nil {
		return 0, err
	}
	m.dataLog.ReadTail().Advance(off, uint64(recordSize))
	return off, nil
}

func (m *AtomicMultilog) fanOut(writerID int, rec schema.Record) error {
	for _, name := range m.indexes.Names() {
		idx, ok := m.indexes.Get(name)
		if !ok {
			continue
		}
		col, err := m.schema.ColumnByName(name)
		if err != nil {
			continue
		}
		v, err := rec.At(int(col.Idx))
		if err != nil {
			return err
		}
		if err := idx.Insert(v, rec.Offset()); err != nil {
			return err
		}
	}
	for _, name := range m.filters.Names() {
		f, ok := m.filters.Get(name)
		if !ok {
			continue
		}
		if err := f.Update(writerID, rec); err != nil {
			return err
		}
	}
	return nil
}

// AppendBatch reserves space for an entire pre-built schema.Batch in
// one reservation and replays each Block in time order, folding every
// matching filter's aggregates once per block via UpdateBatch rather
// than once per record.
func (m *AtomicMultilog) AppendBatch(writerID int, batch schema.Batch) (uint64, error) {
	recordSize := m.schema.RecordSize()
	total := uint64(batch.NRecords * recordSize)
	if total == 0 {
		return 0, errs.New(errs.InvalidOp, "append_batch: empty batch")
	}
	off, err := m.dataLog.Reserve(total)
	if err != nil {
		return 0, err
	}
	cur := off
	for _, block := range batch.Blocks {
		blockBytes := uint64(block.NRecords * recordSize)
		if err := m.dataLog.Write(cur, block.Data[:blockBytes]); err != nil {
			return 0, err
		}
		if err := m.fanOutBatch(writerID, cur, block); err != nil {
			return 0, err
		}
		cur += blockBytes
	}
	if err := m.dataLog.Flush(off, int(total)); err != nil {
		return 0, err
	}
	m.dataLog.ReadTail().Advance(off, total)
	return off, nil
}

func (m *AtomicMultilog) fanOutBatch(writerID int, logOffset uint64, block schema.Block) error {
	recordSize := m.schema.RecordSize()
	indexNames := m.indexes.Names()
	if len(indexNames) > 0 {
		for i := 0; i < block.NRecords; i++ {
			off := logOffset + uint64(i*recordSize)
			rec := m.schema.Apply(off, block.Data[i*recordSize:(i+1)*recordSize])
			for _, name := range indexNames {
				idx, ok := m.indexes.Get(name)
				if !ok {
					continue
				}
				col, err := m.schema.ColumnByName(name)
				if err != nil {
					continue
				}
				v, err := rec.At(int(col.Idx))
				if err != nil {
					return err
				}
				if err := idx.Insert(v, off); err != nil {
					return err
				}
			}
		}
	}
	for _, name := range m.filters.Names() {
		f, ok := m.filters.Get(name)
		if !ok {
			continue
		}
		if err := f.UpdateBatch(writerID, m.schema, logOffset, block); err != nil {
			return err
		}
	}
	return nil
}

// Read returns the record stored at offset. It fails with
// errs.NotYetCommitted if offset is at or past the current read tail.
func (m *AtomicMultilog) Read(offset uint64) (schema.Record, error) {
	recordSize := m.schema.RecordSize()
	tail := m.dataLog.ReadTail().Get()
	if offset+uint64(recordSize) > tail {
		return schema.Record{}, errs.New(errs.NotYetCommitted, "offset %d is at or past the read tail %d", offset, tail)
	}
	data, err := m.dataLog.Read(offset, recordSize)
	if err != nil {
		return schema.Record{}, err
	}
	return m.schema.Apply(offset, data), nil
}
