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

package aggregate

import (
	"runtime"

	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/types"
)

// Aggregate is a process-wide summary value maintained by up to
// Concurrency independent writer slots, each with its own List, so
// writers on different goroutines never contend with one another.
// Reads combine every slot's List at the requested version with the
// Aggregator's parallel combine.
type Aggregate struct {
	resultType types.Type
	agg        types.Aggregator
	lists      []*List
}

// New constructs an Aggregate over resultType (typically
// agg.ResultType(fieldType)) with one List per writer slot.
// concurrency <= 0 defaults to runtime.GOMAXPROCS(0), the same
// "however many hardware threads can run concurrently" default the
// original engine's thread_manager::get_max_concurrency() computes.
func New(resultType types.Type, agg types.Aggregator, concurrency int) *Aggregate {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	lists := make([]*List, concurrency)
	for i := range lists {
		lists[i] = NewList(resultType, agg)
	}
	return &Aggregate{resultType: resultType, agg: agg, lists: lists}
}

// Concurrency is the number of writer slots.
func (a *Aggregate) Concurrency() int { return len(a.lists) }

func (a *Aggregate) slot(writerID int) *List {
	return a.lists[writerID%len(a.lists)]
}

// SeqUpdate folds value into writerID's List via the Aggregator's
// sequential combine.
func (a *Aggregate) SeqUpdate(writerID int, value types.Numeric, version uint64) error {
	return a.slot(writerID).SeqUpdate(value, version)
}

// CombUpdate folds a pre-combined partial value into writerID's List
// via the Aggregator's parallel combine.
func (a *Aggregate) CombUpdate(writerID int, value types.Numeric, version uint64) error {
	return a.slot(writerID).CombUpdate(value, version)
}

// Get returns the combined aggregate value as of version, merging every
// writer slot's List with the Aggregator's parallel combine.
func (a *Aggregate) Get(version uint64) (types.Numeric, error) {
	acc := a.agg.Identity(a.resultType)
	for _, l := range a.lists {
		v := l.Get(version)
		var err error
		acc, err = a.agg.ParCombine(a.resultType, acc, v)
		if err != nil {
			return types.Numeric{}, errs.New(errs.InvalidOp, "combining aggregate slots: %v", err)
		}
	}
	return acc, nil
}
