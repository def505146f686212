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
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/dchest/siphash"
	"github.com/klauspost/compress/zstd"

	"github.com/ucbrise/confluo-sub001/storage"
)

// checksumKey0/checksumKey1 are fixed siphash keys: the checksum only
// needs to catch truncation/corruption of a record, not resist a
// deliberate forger, so a hardcoded key is fine.
const (
	checksumKey0 = 0x636f6e666c756f30
	checksumKey1 = 0x6d657461646174ff
)

func checksum(payload []byte) uint64 {
	return siphash.Hash(checksumKey0, checksumKey1, payload)
}

// Writer appends structural records to a multilog's metadata log, in
// the order they were added, the replay format spec.md §6 describes.
// A Writer over storage.InMemory is a no-op: every Write* call
// succeeds without producing output, matching the original engine's
// "no metadata file below IN_MEMORY" behavior.
type Writer struct {
	mode storage.Mode
	f    *os.File
	enc  *zstd.Encoder
}

// NewWriter opens (creating if necessary) the metadata log under dir
// for mode. Records are zstd-compressed in both durable modes.
func NewWriter(dir string, mode storage.Mode) (*Writer, error) {
	if !mode.IsFileBacked() {
		return &Writer{mode: mode}, nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "metadata"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Writer{mode: mode, f: f, enc: enc}, nil
}

func (w *Writer) write(typ RecordType, payload []byte) error {
	if w.enc == nil {
		return nil
	}
	var hdr bytes.Buffer
	binary.Write(&hdr, binary.LittleEndian, uint32(typ))
	binary.Write(&hdr, binary.LittleEndian, uint32(len(payload)))
	if _, err := w.enc.Write(hdr.Bytes()); err != nil {
		return err
	}
	if _, err := w.enc.Write(payload); err != nil {
		return err
	}
	var sum [8]byte
	binary.LittleEndian.PutUint64(sum[:], checksum(payload))
	if _, err := w.enc.Write(sum[:]); err != nil {
		return err
	}
	if err := w.enc.Flush(); err != nil {
		return err
	}
	if w.mode == storage.Durable {
		return w.f.Sync()
	}
	return nil
}

func putString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint32(len(s)))
	buf.WriteString(s)
}

// WriteStorageMode records the multilog's storage mode. The original
// writes this (and ArchivalMode) before any other record on creation.
func (w *Writer) WriteStorageMode(mode storage.Mode) error {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(mode))
	return w.write(StorageModeRecordType, buf.Bytes())
}

// WriteArchivalMode records whether background archival is enabled.
func (w *Writer) WriteArchivalMode(mode ArchivalMode) error {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(mode))
	return w.write(ArchivalModeRecordType, buf.Bytes())
}

// WriteSchema records the schema, once, at multilog creation.
func (w *Writer) WriteSchema(columns []ColumnDef) error {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(len(columns)))
	for _, c := range columns {
		putString(&buf, c.Name)
		putString(&buf, c.TypeName)
		binary.Write(&buf, binary.LittleEndian, uint32(c.TypeSize))
	}
	return w.write(SchemaRecordType, buf.Bytes())
}

// WriteIndex records one AddIndex call.
func (w *Writer) WriteIndex(fieldName string, bucketSize float64) error {
	var buf bytes.Buffer
	putString(&buf, fieldName)
	binary.Write(&buf, binary.LittleEndian, bucketSize)
	return w.write(IndexRecordType, buf.Bytes())
}

// WriteFilter records one AddFilter call.
func (w *Writer) WriteFilter(name, expr string) error {
	var buf bytes.Buffer
	putString(&buf, name)
	putString(&buf, expr)
	return w.write(FilterRecordType, buf.Bytes())
}

// WriteAggregate records one AddAggregate call.
func (w *Writer) WriteAggregate(name, filterName, expr string) error {
	var buf bytes.Buffer
	putString(&buf, name)
	putString(&buf, filterName)
	putString(&buf, expr)
	return w.write(AggregateRecordType, buf.Bytes())
}

// WriteTrigger records one InstallTrigger call.
func (w *Writer) WriteTrigger(name, expr string, periodicityMs uint64) error {
	var buf bytes.Buffer
	putString(&buf, name)
	putString(&buf, expr)
	binary.Write(&buf, binary.LittleEndian, periodicityMs)
	return w.write(TriggerRecordType, buf.Bytes())
}

// WriteTail records the data log's current write tail. Close calls
// this once so the next Load knows where to resume ingest.
func (w *Writer) WriteTail(tail uint64) error {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, tail)
	return w.write(TailRecordType, buf.Bytes())
}

// Close flushes and closes the underlying file. A no-op Writer (an
// InMemory one) closes cleanly with no effect.
func (w *Writer) Close() error {
	if w.enc == nil {
		return nil
	}
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
