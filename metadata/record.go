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

// RecordType tags the payload that follows it in the metadata stream.
type RecordType uint32

const (
	SchemaRecordType RecordType = iota
	IndexRecordType
	FilterRecordType
	AggregateRecordType
	TriggerRecordType
	StorageModeRecordType
	ArchivalModeRecordType
	TailRecordType
)

func (t RecordType) String() string {
	switch t {
	case SchemaRecordType:
		return "SCHEMA"
	case IndexRecordType:
		return "INDEX"
	case FilterRecordType:
		return "FILTER"
	case AggregateRecordType:
		return "AGGREGATE"
	case TriggerRecordType:
		return "TRIGGER"
	case StorageModeRecordType:
		return "STORAGE_MODE"
	case ArchivalModeRecordType:
		return "ARCHIVAL_MODE"
	case TailRecordType:
		return "TAIL"
	default:
		return "UNKNOWN"
	}
}

// ArchivalMode mirrors the original engine's archival::archival_mode:
// whether the background archiver is allowed to run at all.
type ArchivalMode uint8

const (
	ArchivalOff ArchivalMode = iota
	ArchivalOn
)

func (m ArchivalMode) String() string {
	if m == ArchivalOn {
		return "on"
	}
	return "off"
}

// ColumnDef is one schema column as persisted: a type is recorded by
// its registry name (the Kind's base name, e.g. "string" rather than
// "string(16)") plus the size parameter Lookup needs to reconstruct it.
type ColumnDef struct {
	Name     string
	TypeName string
	TypeSize int
}

// SchemaRecord is every column of a schema, in on-disk order (the
// implicit TIMESTAMP column included, exactly as the in-memory Schema
// stores it).
type SchemaRecord struct {
	Columns []ColumnDef
}

// IndexRecord names a column index and the bucket width it was built
// with.
type IndexRecord struct {
	FieldName  string
	BucketSize float64
}

// FilterRecord names a filter and the expression it compiles.
type FilterRecord struct {
	Name string
	Expr string
}

// AggregateRecord names an aggregate, the filter it is attached to,
// and its aggregation expression (aggregator plus field).
type AggregateRecord struct {
	Name       string
	FilterName string
	Expr       string
}

// TriggerRecord names a trigger, its condition expression, and the
// periodicity the monitor re-evaluates it at.
type TriggerRecord struct {
	Name          string
	Expr          string
	PeriodicityMs uint64
}

// TailRecord checkpoints the data log's committed write tail, written
// on Close so a later Load can resume ingest at the right offset
// instead of silently starting over at zero against an already
// populated durable log.
type TailRecord struct {
	Tail uint64
}
