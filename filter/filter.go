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

package filter

import (
	"sync"
	"sync/atomic"

	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/radixidx"
	"github.com/ucbrise/confluo-sub001/schema"
	"github.com/ucbrise/confluo-sub001/types"
)

// keyDepth is the byte width of a ULong key-transform, so the time
// index is a depth-8, width-256 radix tree: one byte consumed per
// level, eight levels to a full uint64 time block.
const keyDepth = 8

// DefaultTimeResolutionMicros is the default granularity at which
// record timestamps (themselves microseconds since the epoch, see
// schema.TimestampColumn) are bucketed into the filter's radix index:
// 1ms, matching the engine's documented default.
const DefaultTimeResolutionMicros = int64(1000)

// Predicate decides whether a record belongs in a Filter. Test may
// return an error if field access fails (e.g. a record from a schema
// generation that dropped a column the predicate references).
type Predicate interface {
	Test(rec schema.Record) (bool, error)
}

// PredicateFunc adapts a plain function to a Predicate.
type PredicateFunc func(rec schema.Record) (bool, error)

// Test calls f.
func (f PredicateFunc) Test(rec schema.Record) (bool, error) { return f(rec) }

// Always is the predicate every record satisfies.
var Always Predicate = PredicateFunc(func(schema.Record) (bool, error) { return true, nil })

// Filter maintains a time-bucketed radix index of the offsets of
// every appended record that satisfies a compiled predicate, plus a
// set of aggregates (SUM/MIN/MAX/COUNT-style) kept current over
// exactly those matching records.
type Filter struct {
	Name           string
	predicate      Predicate
	timeResolution int64 // microseconds per time block
	idx            *radixidx.Tree[uint64, *aggregatedReflog]

	mu    sync.Mutex // serializes AddAggregate/RemoveAggregate (management-queue single writer)
	specs []*AggregateSpec

	valid atomic.Bool
}

// New constructs a Filter named name, selecting records with
// predicate, bucketing their timestamps at timeResolutionMicros
// granularity (DefaultTimeResolutionMicros if <= 0).
func New(name string, predicate Predicate, timeResolutionMicros int64) *Filter {
	if predicate == nil {
		predicate = Always
	}
	if timeResolutionMicros <= 0 {
		timeResolutionMicros = DefaultTimeResolutionMicros
	}
	f := &Filter{Name: name, predicate: predicate, timeResolution: timeResolutionMicros}
	f.valid.Store(true)
	f.idx = radixidx.New[uint64, *aggregatedReflog](keyDepth, radixidx.DefaultWidth, f.newLeaf)
	return f
}

// newLeaf snapshots the currently-live aggregate specs and builds a
// fresh aggregatedReflog sized to exactly that many slots.
func (f *Filter) newLeaf() *aggregatedReflog {
	f.mu.Lock()
	specs := append([]*AggregateSpec(nil), f.specs...)
	f.mu.Unlock()
	return newAggregatedReflog(specs)
}

// TimeBlock divides a microsecond timestamp by the filter's time
// resolution, the key used to bucket it into the radix index.
func (f *Filter) TimeBlock(timestampMicros uint64) uint64 {
	return timestampMicros / uint64(f.timeResolution)
}

func timeBlockKey(block uint64) []byte {
	return types.ULongType().KeyTransform(types.NewULong(block), 1.0)
}

// IsValid reports whether this filter is still live.
func (f *Filter) IsValid() bool { return f.valid.Load() }

// Invalidate marks the filter removed; subsequent appends skip it.
// Existing reflogs, aggregates, and offsets remain exactly as they
// were, readable by anyone that already holds a reference.
func (f *Filter) Invalidate() bool {
	return f.valid.CompareAndSwap(true, false)
}

// AddAggregate attaches a new aggregate to the filter: fieldIndex (or
// NoField for a bare count) names the column agg reads from records
// that match this filter. Aggregates buckets created before this call
// never gain this aggregate's slot; buckets created afterward do.
func (f *Filter) AddAggregate(name string, fieldIndex int, aggID types.AggregatorID, agg types.Aggregator, fieldType types.Type) *AggregateSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	spec := newAggregateSpec(name, len(f.specs), fieldIndex, aggID, agg, fieldType)
	f.specs = append(f.specs, spec)
	return spec
}

// RemoveAggregate invalidates the named aggregate. Returns
// errs.ManagementError if no live aggregate by that name exists.
func (f *Filter) RemoveAggregate(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.specs {
		if s.Name == name && s.IsValid() {
			s.invalidate()
			return nil
		}
	}
	return errs.New(errs.ManagementError, "aggregate %s does not exist on filter %s", name, f.Name)
}

// Aggregates returns every aggregate spec ever attached to this
// filter (including invalidated ones), in attachment order.
func (f *Filter) Aggregates() []*AggregateSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*AggregateSpec(nil), f.specs...)
}

// Update evaluates the filter's predicate against one record; if it
// matches, the record's offset is pushed into the time bucket's
// reflog and every live aggregate attached to that bucket is
// sequentially updated with writerID's partial.
func (f *Filter) Update(writerID int, rec schema.Record) error {
	if !f.valid.Load() {
		return nil
	}
	ok, err := f.predicate.Test(rec)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	block := f.TimeBlock(rec.Timestamp())
	leaf, err := f.idx.GetOrCreate(timeBlockKey(block))
	if err != nil {
		return err
	}
	leaf.PushBack(rec.Offset())
	return f.updateAggregates(leaf, writerID, rec, rec.Offset())
}

func (f *Filter) updateAggregates(leaf *aggregatedReflog, writerID int, rec schema.Record, version uint64) error {
	f.mu.Lock()
	specs := append([]*AggregateSpec(nil), f.specs...)
	f.mu.Unlock()
	n := leaf.NumAggregates()
	for i, s := range specs {
		if i >= n || !s.IsValid() {
			continue
		}
		val, err := s.numericFor(rec)
		if err != nil {
			return err
		}
		if err := leaf.seqUpdateAggregate(writerID, i, val, version); err != nil {
			return err
		}
	}
	return nil
}

// UpdateBatch folds one already-time-grouped Block into the filter in a
// single pass: each record is tested against the predicate and, for
// matches in the same filter time bucket as the block's first record,
// accumulated into one local partial per aggregate; each partial is
// then folded into that bucket's shared aggregate exactly once via
// CombUpdate, instead of once per matching record. A schema.Block spans
// schema.TimeBlockWidth, which can cover several filter buckets, so a
// matching record in any other bucket is pushed and sequentially
// updated into its own bucket the way Update does. logOffset is the data-log offset of block's first record;
// version is the version at which the fold becomes visible, the same
// offset arithmetic append_batch uses to publish the whole block at
// once.
func (f *Filter) UpdateBatch(writerID int, recordSchema *schema.Schema, logOffset uint64, block schema.Block) error {
	if !f.valid.Load() || block.NRecords == 0 {
		return nil
	}
	recordSize := recordSchema.RecordSize()
	first := recordSchema.Apply(logOffset, block.Data[:recordSize])
	tb := f.TimeBlock(first.Timestamp())
	leaf, err := f.idx.GetOrCreate(timeBlockKey(tb))
	if err != nil {
		return err
	}

	f.mu.Lock()
	specs := append([]*AggregateSpec(nil), f.specs...)
	f.mu.Unlock()
	n := leaf.NumAggregates()

	partials := make([]types.Numeric, n)
	have := make([]bool, n)
	matched := false
	for i := 0; i < block.NRecords; i++ {
		off := logOffset + uint64(i*recordSize)
		rec := recordSchema.Apply(off, block.Data[i*recordSize:(i+1)*recordSize])
		ok, err := f.predicate.Test(rec)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if rtb := f.TimeBlock(rec.Timestamp()); rtb != tb {
			other, err := f.idx.GetOrCreate(timeBlockKey(rtb))
			if err != nil {
				return err
			}
			other.PushBack(rec.Offset())
			if err := f.updateAggregates(other, writerID, rec, rec.Offset()); err != nil {
				return err
			}
			continue
		}
		matched = true
		leaf.PushBack(rec.Offset())
		for j := 0; j < n; j++ {
			s := specs[j]
			if !s.IsValid() {
				continue
			}
			val, err := s.numericFor(rec)
			if err != nil {
				return err
			}
			if !have[j] {
				partials[j] = val
				have[j] = true
				continue
			}
			partials[j], err = s.agg.SeqCombine(s.resultType, partials[j], val)
			if err != nil {
				return err
			}
		}
	}
	if !matched {
		return nil
	}
	version := logOffset + uint64(block.NRecords*recordSize)
	for i := 0; i < n; i++ {
		if !have[i] {
			continue
		}
		if err := leaf.combUpdateAggregate(writerID, i, partials[i], version); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the reflog offsets for exactly the time block a
// timestamp falls into, or (nil, false) if that bucket was never
// created.
func (f *Filter) Lookup(timestampMicros uint64) (*aggregatedReflog, bool) {
	return f.idx.Get(timeBlockKey(f.TimeBlock(timestampMicros)))
}

// LookupRange returns every bucket whose time block falls in
// [beginBlock, endBlock], inclusive, in ascending time order.
func (f *Filter) LookupRange(beginBlock, endBlock uint64) ([]*aggregatedReflog, error) {
	return f.idx.RangeLookup(timeBlockKey(beginBlock), timeBlockKey(endBlock))
}

// GetAggregate combines the named aggregate's value over every bucket
// in [t1Micros, t2Micros] (converted to time blocks), parallel-combining
// each bucket's own value as of version.
func (f *Filter) GetAggregate(name string, t1Micros, t2Micros uint64, version uint64) (types.Numeric, error) {
	f.mu.Lock()
	var spec *AggregateSpec
	for _, s := range f.specs {
		if s.Name == name {
			spec = s
			break
		}
	}
	f.mu.Unlock()
	if spec == nil {
		return types.Numeric{}, errs.New(errs.NotFound, "no aggregate named %s on filter %s", name, f.Name)
	}

	buckets, err := f.LookupRange(f.TimeBlock(t1Micros), f.TimeBlock(t2Micros))
	if err != nil {
		return types.Numeric{}, err
	}
	acc := spec.resultType.Zero()
	for _, b := range buckets {
		if spec.Index >= b.NumAggregates() {
			continue // bucket predates this aggregate's attachment
		}
		v, err := b.GetAggregate(spec.Index, version)
		if err != nil {
			return types.Numeric{}, err
		}
		acc, err = spec.agg.ParCombine(spec.resultType, acc, v)
		if err != nil {
			return types.Numeric{}, err
		}
	}
	return acc, nil
}
