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

package schema

import (
	"testing"

	"github.com/ucbrise/confluo-sub001/types"
)

func buildTestSchema(t *testing.T) *Schema {
	t.Helper()
	intT, err := types.Lookup("int", 0)
	if err != nil {
		t.Fatal(err)
	}
	strT, err := types.Lookup("string", 8)
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewBuilder().AddColumn("a", intT).AddColumn("b", strT).Build()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBuilderPrependsTimestamp(t *testing.T) {
	s := buildTestSchema(t)
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (timestamp + a + b)", s.Len())
	}
	col, err := s.Column(0)
	if err != nil {
		t.Fatal(err)
	}
	if !col.IsTimestamp() {
		t.Fatal("column 0 should be the implicit timestamp column")
	}
	if col.Type.Kind() != types.ULong {
		t.Fatalf("timestamp column kind = %v, want ULong", col.Type.Kind())
	}
}

func TestRecordFieldRoundTrip(t *testing.T) {
	s := buildTestSchema(t)
	intT, _ := types.Lookup("int", 0)
	strT, _ := types.Lookup("string", 8)

	buf := make([]byte, s.RecordSize())
	colTS, _ := s.Column(0)
	copy(buf[colTS.Offset:colTS.End()], colTS.Type.Serialize(types.NewULong(12345)))
	colA, _ := s.Column(1)
	copy(buf[colA.Offset:colA.End()], intT.Serialize(types.NewInt(-7)))
	colB, _ := s.Column(2)
	bVal, _ := strT.Parse("hi")
	copy(buf[colB.Offset:colB.End()], strT.Serialize(bVal))

	rec := s.Apply(0, buf)
	if rec.Timestamp() != 12345 {
		t.Fatalf("Timestamp() = %d, want 12345", rec.Timestamp())
	}
	v, err := rec.Field("a")
	if err != nil {
		t.Fatal(err)
	}
	if v.Int() != -7 {
		t.Fatalf("field a = %d, want -7", v.Int())
	}
	v, err = rec.Field("b")
	if err != nil {
		t.Fatal(err)
	}
	if strT.Format(v) != "hi" {
		t.Fatalf("field b = %q, want %q", strT.Format(v), "hi")
	}
}

func TestSnapshotReadsIndependentlyOfSchema(t *testing.T) {
	s := buildTestSchema(t)
	snap := s.Snapshot()
	if snap.NumColumns() != s.Len() {
		t.Fatalf("snapshot has %d columns, want %d", snap.NumColumns(), s.Len())
	}
	withIdx := snap.WithIndexMetadata(1, 7, 10.0)
	if !withIdx.IsIndexed(1) {
		t.Fatal("column 1 should report indexed after WithIndexMetadata")
	}
	if withIdx.IndexID(1) != 7 {
		t.Fatalf("IndexID(1) = %d, want 7", withIdx.IndexID(1))
	}
	if snap.IsIndexed(1) {
		t.Fatal("original snapshot must not be mutated by WithIndexMetadata")
	}
}

func TestBatchBuilderGroupsByTimeBlock(t *testing.T) {
	s := buildTestSchema(t)
	b := NewBatchBuilder(s)
	for _, ts := range []uint64{100, 2_000_000, 2_500_000, 50} {
		buf := make([]byte, s.RecordSize())
		col, _ := s.Column(0)
		copy(buf[col.Offset:col.End()], col.Type.Serialize(types.NewULong(ts)))
		b.AddRecord(buf)
	}
	batch := b.Build()
	if batch.NRecords != 4 {
		t.Fatalf("NRecords = %d, want 4", batch.NRecords)
	}
	if len(batch.Blocks) != 2 {
		t.Fatalf("len(Blocks) = %d, want 2", len(batch.Blocks))
	}
	if batch.Blocks[0].TimeBlock != 0 || batch.Blocks[0].NRecords != 2 {
		t.Fatalf("block 0 = %+v, want TimeBlock 0 with 2 records", batch.Blocks[0])
	}
	if batch.Blocks[1].TimeBlock != 2 || batch.Blocks[1].NRecords != 2 {
		t.Fatalf("block 1 = %+v, want TimeBlock 2 with 2 records", batch.Blocks[1])
	}
}
