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

package metadata

import (
	"testing"

	"github.com/ucbrise/confluo-sub001/storage"
)

type recordingVisitor struct {
	storageModes  []storage.Mode
	archivalModes []ArchivalMode
	schemas       []SchemaRecord
	indexes       []IndexRecord
	filters       []FilterRecord
	aggregates    []AggregateRecord
	triggers      []TriggerRecord
}

func (v *recordingVisitor) OnStorageMode(m storage.Mode) error {
	v.storageModes = append(v.storageModes, m)
	return nil
}
func (v *recordingVisitor) OnArchivalMode(m ArchivalMode) error {
	v.archivalModes = append(v.archivalModes, m)
	return nil
}
func (v *recordingVisitor) OnSchema(s SchemaRecord) error {
	v.schemas = append(v.schemas, s)
	return nil
}
func (v *recordingVisitor) OnIndex(r IndexRecord) error {
	v.indexes = append(v.indexes, r)
	return nil
}
func (v *recordingVisitor) OnFilter(r FilterRecord) error {
	v.filters = append(v.filters, r)
	return nil
}
func (v *recordingVisitor) OnAggregate(r AggregateRecord) error {
	v.aggregates = append(v.aggregates, r)
	return nil
}
func (v *recordingVisitor) OnTrigger(r TriggerRecord) error {
	v.triggers = append(v.triggers, r)
	return nil
}
func (v *recordingVisitor) OnTail(TailRecord) error { return nil }

func TestWriteReplayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, storage.DurableRelaxed)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteStorageMode(storage.DurableRelaxed); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteArchivalMode(ArchivalOff); err != nil {
		t.Fatal(err)
	}
	cols := []ColumnDef{
		{Name: "TIMESTAMP", TypeName: "ulong", TypeSize: 0},
		{Name: "d", TypeName: "int", TypeSize: 0},
		{Name: "s", TypeName: "string", TypeSize: 16},
	}
	if err := w.WriteSchema(cols); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteIndex("d", 1.0); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFilter("f1", "d > 0"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteAggregate("sum_d", "f1", "SUM(d)"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteTrigger("t1", "sum_d>100", 1000); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(dir, storage.DurableRelaxed)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var v recordingVisitor
	if err := r.Replay(&v); err != nil {
		t.Fatal(err)
	}

	if len(v.storageModes) != 1 || v.storageModes[0] != storage.DurableRelaxed {
		t.Fatalf("storageModes = %v, want [DurableRelaxed]", v.storageModes)
	}
	if len(v.archivalModes) != 1 || v.archivalModes[0] != ArchivalOff {
		t.Fatalf("archivalModes = %v, want [off]", v.archivalModes)
	}
	if len(v.schemas) != 1 || len(v.schemas[0].Columns) != 3 {
		t.Fatalf("schemas = %v, want one 3-column schema", v.schemas)
	}
	if v.schemas[0].Columns[2].TypeSize != 16 {
		t.Fatalf("string column size = %d, want 16", v.schemas[0].Columns[2].TypeSize)
	}
	if len(v.indexes) != 1 || v.indexes[0].FieldName != "d" {
		t.Fatalf("indexes = %v, want [{d 1.0}]", v.indexes)
	}
	if len(v.filters) != 1 || v.filters[0].Name != "f1" {
		t.Fatalf("filters = %v, want [{f1 ...}]", v.filters)
	}
	if len(v.aggregates) != 1 || v.aggregates[0].Name != "sum_d" {
		t.Fatalf("aggregates = %v, want [{sum_d ...}]", v.aggregates)
	}
	if len(v.triggers) != 1 || v.triggers[0].PeriodicityMs != 1000 {
		t.Fatalf("triggers = %v, want periodicity 1000", v.triggers)
	}
}

func TestInMemoryWriterIsNoOp(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, storage.InMemory)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFilter("f", "d>0"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(dir, storage.InMemory)
	if err != nil {
		t.Fatal(err)
	}
	var v recordingVisitor
	if err := r.Replay(&v); err != nil {
		t.Fatal(err)
	}
	if len(v.filters) != 0 {
		t.Fatalf("filters = %v, want none (InMemory writes nothing)", v.filters)
	}
}

func TestReplayMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	r, err := NewReader(dir, storage.DurableRelaxed)
	if err != nil {
		t.Fatal(err)
	}
	var v recordingVisitor
	if err := r.Replay(&v); err != nil {
		t.Fatal(err)
	}
	if len(v.schemas) != 0 {
		t.Fatalf("schemas = %v, want none (no metadata file ever written)", v.schemas)
	}
}
