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
	"sync/atomic"

	"github.com/ucbrise/confluo-sub001/schema"
	"github.com/ucbrise/confluo-sub001/types"
)

// NoField marks an AggregateSpec that doesn't read any column (a bare
// COUNT(*)-style aggregate): its per-record numeric is always one,
// matching spec's "value of the referenced field, or 1 for count".
const NoField = -1

// AggregateSpec describes one aggregate attached to a Filter: which
// field it reads (or NoField), which Aggregator combines values, and
// the result type that Aggregator produces for that field. Index is
// this spec's position in the Filter's aggregate list, the id passed
// to GetAggregate.
type AggregateSpec struct {
	Name         string
	Index        int
	FieldIndex   int
	AggregatorID types.AggregatorID
	agg          types.Aggregator
	resultType   types.Type
	valid        atomic.Bool
}

func newAggregateSpec(name string, index, fieldIndex int, aggID types.AggregatorID, agg types.Aggregator, fieldType types.Type) *AggregateSpec {
	s := &AggregateSpec{
		Name:         name,
		Index:        index,
		FieldIndex:   fieldIndex,
		AggregatorID: aggID,
		agg:          agg,
		resultType:   agg.ResultType(fieldType),
	}
	s.valid.Store(true)
	return s
}

// ResultType is the type this aggregate's value is stored as.
func (s *AggregateSpec) ResultType() types.Type { return s.resultType }

// IsValid reports whether this aggregate is still live (not removed).
func (s *AggregateSpec) IsValid() bool { return s.valid.Load() }

// Invalidate marks this aggregate removed. Like filter/index removal
// elsewhere in the engine, this never deletes the underlying storage;
// it only stops future updates from reaching it.
func (s *AggregateSpec) invalidate() bool {
	return s.valid.CompareAndSwap(true, false)
}

// numericFor computes the per-record value this spec folds into its
// aggregate: the referenced field's value, or the literal one for a
// FieldIndex == NoField count aggregate.
func (s *AggregateSpec) numericFor(rec schema.Record) (types.Numeric, error) {
	if s.FieldIndex == NoField {
		return s.resultType.One(), nil
	}
	return rec.At(s.FieldIndex)
}
