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
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/storage"
)

// Reader replays a metadata log in record order. A Reader over a
// store with no metadata file (never written to, or InMemory) replays
// zero records, so a fresh multilog and a from-scratch reopen of one
// behave identically.
type Reader struct {
	dec    *zstd.Decoder
	closer io.Closer
}

// NewReader opens dir's metadata log for mode. A missing file (a
// never-persisted multilog) is not an error: Replay simply yields no
// records.
func NewReader(dir string, mode storage.Mode) (*Reader, error) {
	if !mode.IsFileBacked() {
		return &Reader{}, nil
	}
	f, err := os.Open(filepath.Join(dir, "metadata"))
	if os.IsNotExist(err) {
		return &Reader{}, nil
	}
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{dec: dec, closer: f}, nil
}

// Visitor receives each record a Replay pass decodes, in log order.
type Visitor interface {
	OnStorageMode(storage.Mode) error
	OnArchivalMode(ArchivalMode) error
	OnSchema(SchemaRecord) error
	OnIndex(IndexRecord) error
	OnFilter(FilterRecord) error
	OnAggregate(AggregateRecord) error
	OnTrigger(TriggerRecord) error
	OnTail(TailRecord) error
}

// Replay decodes every record in order and dispatches it to v, until
// EOF. A checksum mismatch aborts the replay with errs.IllegalState,
// the same way the original treats metadata corruption as fatal rather
// than skip-and-continue (a truncated structural log can't be safely
// partially replayed: a later FILTER record may reference an AGGREGATE
// record skipped due to corruption).
func (r *Reader) Replay(v Visitor) error {
	if r.dec == nil {
		return nil
	}
	for {
		typ, payload, err := r.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := dispatch(v, typ, payload); err != nil {
			return err
		}
	}
}

func (r *Reader) next() (RecordType, []byte, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r.dec, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return 0, nil, errs.New(errs.IllegalState, "metadata log: truncated record header")
		}
		return 0, nil, err
	}
	typ := RecordType(binary.LittleEndian.Uint32(hdr[:4]))
	n := binary.LittleEndian.Uint32(hdr[4:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r.dec, payload); err != nil {
		return 0, nil, errs.New(errs.IllegalState, "metadata log: truncated %s record payload", typ)
	}
	var sum [8]byte
	if _, err := io.ReadFull(r.dec, sum[:]); err != nil {
		return 0, nil, errs.New(errs.IllegalState, "metadata log: truncated %s record checksum", typ)
	}
	if binary.LittleEndian.Uint64(sum[:]) != checksum(payload) {
		return 0, nil, errs.New(errs.IllegalState, "metadata log: checksum mismatch in %s record", typ)
	}
	return typ, payload, nil
}

func getString(buf *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(buf, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(buf, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func dispatch(v Visitor, typ RecordType, payload []byte) error {
	buf := bytes.NewReader(payload)
	switch typ {
	case StorageModeRecordType:
		var m uint32
		if err := binary.Read(buf, binary.LittleEndian, &m); err != nil {
			return err
		}
		return v.OnStorageMode(storage.Mode(m))
	case ArchivalModeRecordType:
		var m uint32
		if err := binary.Read(buf, binary.LittleEndian, &m); err != nil {
			return err
		}
		return v.OnArchivalMode(ArchivalMode(m))
	case SchemaRecordType:
		var n uint32
		if err := binary.Read(buf, binary.LittleEndian, &n); err != nil {
			return err
		}
		cols := make([]ColumnDef, n)
		for i := range cols {
			name, err := getString(buf)
			if err != nil {
				return err
			}
			typeName, err := getString(buf)
			if err != nil {
				return err
			}
			var size uint32
			if err := binary.Read(buf, binary.LittleEndian, &size); err != nil {
				return err
			}
			cols[i] = ColumnDef{Name: name, TypeName: typeName, TypeSize: int(size)}
		}
		return v.OnSchema(SchemaRecord{Columns: cols})
	case IndexRecordType:
		field, err := getString(buf)
		if err != nil {
			return err
		}
		var bucketSize float64
		if err := binary.Read(buf, binary.LittleEndian, &bucketSize); err != nil {
			return err
		}
		return v.OnIndex(IndexRecord{FieldName: field, BucketSize: bucketSize})
	case FilterRecordType:
		name, err := getString(buf)
		if err != nil {
			return err
		}
		expr, err := getString(buf)
		if err != nil {
			return err
		}
		return v.OnFilter(FilterRecord{Name: name, Expr: expr})
	case AggregateRecordType:
		name, err := getString(buf)
		if err != nil {
			return err
		}
		filterName, err := getString(buf)
		if err != nil {
			return err
		}
		expr, err := getString(buf)
		if err != nil {
			return err
		}
		return v.OnAggregate(AggregateRecord{Name: name, FilterName: filterName, Expr: expr})
	case TriggerRecordType:
		name, err := getString(buf)
		if err != nil {
			return err
		}
		expr, err := getString(buf)
		if err != nil {
			return err
		}
		var periodicityMs uint64
		if err := binary.Read(buf, binary.LittleEndian, &periodicityMs); err != nil {
			return err
		}
		return v.OnTrigger(TriggerRecord{Name: name, Expr: expr, PeriodicityMs: periodicityMs})
	case TailRecordType:
		var tail uint64
		if err := binary.Read(buf, binary.LittleEndian, &tail); err != nil {
			return err
		}
		return v.OnTail(TailRecord{Tail: tail})
	default:
		return errs.New(errs.IllegalState, "metadata log: unknown record type %d", typ)
	}
}

// Close releases the underlying file, if any was opened.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	r.dec.Close()
	return r.closer.Close()
}
