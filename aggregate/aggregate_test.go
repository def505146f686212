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
	"testing"

	"github.com/ucbrise/confluo-sub001/types"
)

func sumSetup(t *testing.T) (types.Type, types.Aggregator) {
	t.Helper()
	intT, err := types.Lookup("int", 0)
	if err != nil {
		t.Fatal(err)
	}
	_, agg, err := types.LookupAggregator("sum")
	if err != nil {
		t.Fatal(err)
	}
	return agg.ResultType(intT), agg
}

func TestListSeqUpdateAccumulates(t *testing.T) {
	resultType, agg := sumSetup(t)
	l := NewList(resultType, agg)
	for v, val := range []int32{1, 2, 3, 4} {
		if err := l.SeqUpdate(types.NewInt(val), uint64(v+1)); err != nil {
			t.Fatal(err)
		}
	}
	got := l.Get(4)
	if got.Int() != 10 {
		t.Fatalf("Get(4) = %d, want 10", got.Int())
	}
}

func TestListGetReturnsValueAsOfVersion(t *testing.T) {
	resultType, agg := sumSetup(t)
	l := NewList(resultType, agg)
	l.SeqUpdate(types.NewInt(5), 1)
	l.SeqUpdate(types.NewInt(5), 5)
	l.SeqUpdate(types.NewInt(5), 10)

	if got := l.Get(0); got.Int() != 0 {
		t.Fatalf("Get(0) = %d, want 0 (identity, no node committed yet)", got.Int())
	}
	if got := l.Get(3); got.Int() != 5 {
		t.Fatalf("Get(3) = %d, want 5 (only first update visible)", got.Int())
	}
	if got := l.Get(7); got.Int() != 10 {
		t.Fatalf("Get(7) = %d, want 10", got.Int())
	}
	if got := l.Get(100); got.Int() != 15 {
		t.Fatalf("Get(100) = %d, want 15", got.Int())
	}
}

func TestAggregateCombinesAcrossWriterSlots(t *testing.T) {
	resultType, agg := sumSetup(t)
	a := New(resultType, agg, 4)
	for w := 0; w < 4; w++ {
		if err := a.SeqUpdate(w, types.NewInt(int32(w+1)), 1); err != nil {
			t.Fatal(err)
		}
	}
	got, err := a.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int() != 10 { // 1+2+3+4
		t.Fatalf("Get(1) = %d, want 10", got.Int())
	}
}

func TestAggregateDefaultConcurrencyPositive(t *testing.T) {
	resultType, agg := sumSetup(t)
	a := New(resultType, agg, 0)
	if a.Concurrency() <= 0 {
		t.Fatalf("Concurrency() = %d, want > 0", a.Concurrency())
	}
}
