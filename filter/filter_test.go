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
	"testing"

	"github.com/ucbrise/confluo-sub001/schema"
	"github.com/ucbrise/confluo-sub001/types"
)

// buildDASchema mirrors the engine's canonical two-field scenario: an
// int column "d" and a bool column "a", plus the implicit TIMESTAMP.
func buildDASchema(t *testing.T) (*schema.Schema, int, int) {
	t.Helper()
	intT, err := types.Lookup("int", 0)
	if err != nil {
		t.Fatal(err)
	}
	boolT, err := types.Lookup("bool", 0)
	if err != nil {
		t.Fatal(err)
	}
	s, err := schema.NewBuilder().AddColumn("d", intT).AddColumn("a", boolT).Build()
	if err != nil {
		t.Fatal(err)
	}
	dIdx, err := s.FieldIndex("d")
	if err != nil {
		t.Fatal(err)
	}
	aIdx, err := s.FieldIndex("a")
	if err != nil {
		t.Fatal(err)
	}
	return s, dIdx, aIdx
}

func makeRecord(t *testing.T, s *schema.Schema, offset uint64, ts uint64, d int32, a bool) schema.Record {
	t.Helper()
	buf := make([]byte, s.RecordSize())
	tsCol, _ := s.Column(0)
	copy(buf[tsCol.Offset:tsCol.End()], tsCol.Type.Serialize(types.NewULong(ts)))
	dCol, _ := s.Column(1)
	copy(buf[dCol.Offset:dCol.End()], dCol.Type.Serialize(types.NewInt(d)))
	aCol, _ := s.Column(2)
	copy(buf[aCol.Offset:aCol.End()], aCol.Type.Serialize(types.NewBool(a)))
	return s.Apply(offset, buf)
}

func aIsTruePredicate(aIdx int) Predicate {
	return PredicateFunc(func(rec schema.Record) (bool, error) {
		v, err := rec.At(aIdx)
		if err != nil {
			return false, err
		}
		return v.Bool(), nil
	})
}

func TestFilterUpdateMatchesAndAggregates(t *testing.T) {
	s, dIdx, aIdx := buildDASchema(t)
	f := New("f1", aIsTruePredicate(aIdx), DefaultTimeResolutionMicros)

	intT, _ := types.Lookup("int", 0)
	sumID, sumAgg, err := types.LookupAggregator("sum")
	if err != nil {
		t.Fatal(err)
	}
	f.AddAggregate("agg1", dIdx, sumID, sumAgg, intT)

	dVals := []int32{0, 2, 4, 6, 8, 10, 12, 14}
	aVals := []bool{false, true, false, true, false, true, false, true}
	var lastOffset uint64
	for i := range dVals {
		rec := makeRecord(t, s, uint64(i), uint64(i), dVals[i], aVals[i])
		if err := f.Update(0, rec); err != nil {
			t.Fatal(err)
		}
		lastOffset = uint64(i)
	}

	got, err := f.GetAggregate("agg1", 0, ^uint64(0), lastOffset+1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int() != 32 {
		t.Fatalf("GetAggregate(agg1) = %d, want 32", got.Int())
	}
}

func TestFilterUpdateSkipsNonMatchingRecords(t *testing.T) {
	s, _, aIdx := buildDASchema(t)
	f := New("f1", aIsTruePredicate(aIdx), DefaultTimeResolutionMicros)
	rec := makeRecord(t, s, 0, 0, 1, false)
	if err := f.Update(0, rec); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.Lookup(0); ok {
		t.Fatal("a non-matching record must not create a bucket")
	}
}

func TestFilterUpdateBatchFoldsOncePerBlock(t *testing.T) {
	s, dIdx, aIdx := buildDASchema(t)
	f := New("f1", aIsTruePredicate(aIdx), DefaultTimeResolutionMicros)

	intT, _ := types.Lookup("int", 0)
	sumID, sumAgg, err := types.LookupAggregator("sum")
	if err != nil {
		t.Fatal(err)
	}
	f.AddAggregate("agg1", dIdx, sumID, sumAgg, intT)

	recordSize := s.RecordSize()
	buf := make([]byte, 0, recordSize*4)
	dVals := []int32{1, 2, 3, 4}
	aVals := []bool{true, false, true, true}
	for i := range dVals {
		rec := makeRecord(t, s, 0, uint64(i), dVals[i], aVals[i])
		buf = append(buf, rec.Bytes()...)
	}
	block := schema.Block{TimeBlock: 0, Data: buf, NRecords: len(dVals)}
	if err := f.UpdateBatch(0, s, 0, block); err != nil {
		t.Fatal(err)
	}

	got, err := f.GetAggregate("agg1", 0, ^uint64(0), uint64(len(dVals)*recordSize))
	if err != nil {
		t.Fatal(err)
	}
	if got.Int() != 8 { // 1 + 3 + 4
		t.Fatalf("GetAggregate(agg1) = %d, want 8", got.Int())
	}
}

func TestFilterInvalidateStopsFurtherUpdates(t *testing.T) {
	s, _, aIdx := buildDASchema(t)
	f := New("f1", aIsTruePredicate(aIdx), DefaultTimeResolutionMicros)
	if !f.Invalidate() {
		t.Fatal("first Invalidate should succeed")
	}
	if f.Invalidate() {
		t.Fatal("second Invalidate should report already invalid")
	}
	rec := makeRecord(t, s, 0, 0, 1, true)
	if err := f.Update(0, rec); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.Lookup(0); ok {
		t.Fatal("an invalidated filter must not record new matches")
	}
}

func TestRemoveAggregateIsIdempotentFailure(t *testing.T) {
	_, dIdx, aIdx := buildDASchema(t)
	f := New("f1", aIsTruePredicate(aIdx), DefaultTimeResolutionMicros)
	intT, _ := types.Lookup("int", 0)
	sumID, sumAgg, _ := types.LookupAggregator("sum")
	f.AddAggregate("agg1", dIdx, sumID, sumAgg, intT)

	if err := f.RemoveAggregate("agg1"); err != nil {
		t.Fatal(err)
	}
	if err := f.RemoveAggregate("agg1"); err == nil {
		t.Fatal("removing an already-removed aggregate should fail")
	}
}

func TestAggregateAddedAfterBucketCreationDoesNotBackfill(t *testing.T) {
	s, dIdx, aIdx := buildDASchema(t)
	f := New("f1", aIsTruePredicate(aIdx), DefaultTimeResolutionMicros)

	// Bucket for time block 0 gets created before any aggregate exists.
	rec := makeRecord(t, s, 0, 0, 5, true)
	if err := f.Update(0, rec); err != nil {
		t.Fatal(err)
	}

	intT, _ := types.Lookup("int", 0)
	sumID, sumAgg, _ := types.LookupAggregator("sum")
	f.AddAggregate("agg1", dIdx, sumID, sumAgg, intT)

	got, err := f.GetAggregate("agg1", 0, ^uint64(0), 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int() != 0 {
		t.Fatalf("GetAggregate(agg1) = %d, want 0 (bucket predates the aggregate)", got.Int())
	}
}
