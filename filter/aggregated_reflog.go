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
	"github.com/ucbrise/confluo-sub001/aggregate"
	"github.com/ucbrise/confluo-sub001/atomicx"
	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/monolog"
	"github.com/ucbrise/confluo-sub001/types"
)

// aggregatedReflog is one time bucket's state: the Reflog of matching
// record offsets, plus one Aggregate per aggregate that was live on
// the owning Filter at the moment this bucket was first touched. An
// aggregate added to the Filter later never retroactively appears in
// buckets created before it existed — only in buckets created from
// that point on — matching the glossary's "one per live aggregate
// definition of the owning filter at leaf-creation time".
//
// The aggregate slice is held behind a Swappable not because its
// length ever changes, but so that a background archiver can swap in
// a re-encoded (e.g. compressed) replacement array for a stale bucket
// without blocking concurrent readers of the live array.
//
// Embedding *monolog.Reflog promotes PushBack/Size, which is what lets
// a radixidx.Tree[uint64, *aggregatedReflog] reuse the exact same tree
// code as a plain column index.
type aggregatedReflog struct {
	*monolog.Reflog
	aggregates atomicx.Swappable[[]*aggregate.Aggregate]
}

func newAggregatedReflog(specs []*AggregateSpec) *aggregatedReflog {
	aggs := make([]*aggregate.Aggregate, len(specs))
	for i, s := range specs {
		aggs[i] = aggregate.New(s.resultType, s.agg, 0)
	}
	ar := &aggregatedReflog{Reflog: monolog.NewReflog()}
	ar.aggregates.AtomicInit(&aggs)
	return ar
}

// NumAggregates reports how many aggregate slots this bucket holds:
// the number of aggregates live on the owning Filter at the moment
// this bucket was first created.
func (ar *aggregatedReflog) NumAggregates() int {
	ro := ar.aggregates.AtomicCopy()
	defer ro.Release()
	return len(*ro.Get())
}

// GetAggregate returns this bucket's aid'th aggregate value as of
// version, exported so callers outside the filter package (the
// trigger monitor) can re-evaluate a single bucket rather than a
// combined range.
func (ar *aggregatedReflog) GetAggregate(aid int, version uint64) (types.Numeric, error) {
	ro := ar.aggregates.AtomicCopy()
	defer ro.Release()
	aggs := *ro.Get()
	if aid < 0 || aid >= len(aggs) {
		return types.Numeric{}, errs.New(errs.NotFound, "no aggregate at index %d", aid)
	}
	return aggs[aid].Get(version)
}

// seqUpdateAggregate folds one field value into aggregate aid's slot
// for writerID. Appenders never race the archiver's occasional Swap
// in a way that matters here: AtomicLoad may observe either the live
// or the freshly re-encoded array, but both hold the same Aggregates
// at the same indices, only their backing representation differs.
func (ar *aggregatedReflog) seqUpdateAggregate(writerID, aid int, value types.Numeric, version uint64) error {
	aggs := *ar.aggregates.AtomicLoad()
	if aid < 0 || aid >= len(aggs) {
		return errs.New(errs.NotFound, "no aggregate at index %d", aid)
	}
	return aggs[aid].SeqUpdate(writerID, value, version)
}

func (ar *aggregatedReflog) combUpdateAggregate(writerID, aid int, value types.Numeric, version uint64) error {
	aggs := *ar.aggregates.AtomicLoad()
	if aid < 0 || aid >= len(aggs) {
		return errs.New(errs.NotFound, "no aggregate at index %d", aid)
	}
	return aggs[aid].CombUpdate(writerID, value, version)
}

// archive freezes this bucket's aggregate values as of version, round
// trips them through archiveRoundTrip, and installs a fresh,
// single-slot Aggregate per spec seeded with the round-tripped value
// via CombUpdate: CombUpdate folds a value against the aggregator's
// Identity with ParCombine, which for every built-in aggregator
// (sum/min/max/count) reduces to exactly that value, unlike SeqUpdate
// whose SeqCombine is not an identity-preserving fold for count (it
// always adds one, ignoring its second operand). The swap is published
// through the same Swappable concurrent readers already load through,
// so a GetAggregate racing the archiver sees either the pre- or
// post-archive array, never a partially-built one.
func (ar *aggregatedReflog) archive(specs []*AggregateSpec, version uint64) error {
	ro := ar.aggregates.AtomicCopy()
	live := *ro.Get()
	n := len(live)
	if n > len(specs) {
		n = len(specs)
	}
	frozen := make([]types.Numeric, n)
	for i := 0; i < n; i++ {
		v, err := live[i].Get(version)
		if err != nil {
			ro.Release()
			return err
		}
		frozen[i] = v
	}
	ro.Release()

	reencoded, err := archiveRoundTrip(specs[:n], frozen)
	if err != nil {
		return err
	}

	fresh := make([]*aggregate.Aggregate, n)
	for i := 0; i < n; i++ {
		fresh[i] = aggregate.New(specs[i].resultType, specs[i].agg, 1)
		if err := fresh[i].CombUpdate(0, reencoded[i], version); err != nil {
			return err
		}
	}
	ar.aggregates.Swap(&fresh)
	return nil
}
