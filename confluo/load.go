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

package confluo

import (
	"github.com/ucbrise/confluo-sub001/datalog"
	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/metadata"
	"github.com/ucbrise/confluo-sub001/schema"
	"github.com/ucbrise/confluo-sub001/storage"
	"github.com/ucbrise/confluo-sub001/types"
)

// loadVisitor replays one multilog's metadata log and reconstructs it
// in place: the schema arrives first (New always writes it before
// returning to a caller who could start adding indexes/filters/
// aggregates/triggers), so by the time any later record type arrives
// the AtomicMultilog already exists and the record is installed
// directly against it via the same install* helpers Add* uses,
// without re-appending it to the metadata log a second time.
type loadVisitor struct {
	name string
	opts Options

	m    *AtomicMultilog
	tail uint64
}

func (v *loadVisitor) OnStorageMode(mode storage.Mode) error {
	v.opts.StorageMode = mode
	return nil
}

func (v *loadVisitor) OnArchivalMode(mode metadata.ArchivalMode) error {
	v.opts.ArchivalMode = mode
	return nil
}

func (v *loadVisitor) OnSchema(rec metadata.SchemaRecord) error {
	cols := make([]schema.Column, len(rec.Columns))
	offset := 0
	for i, cd := range rec.Columns {
		t, err := types.Lookup(cd.TypeName, cd.TypeSize)
		if err != nil {
			return err
		}
		cols[i] = schema.Column{
			Idx:    uint16(i),
			Name:   cd.Name,
			Type:   t,
			Offset: offset,
			Min:    t.Min(),
			Max:    t.Max(),
		}
		offset += t.Size()
	}
	s := schema.New(cols)

	opts := resolveDefaults(v.opts)
	dataLog := datalog.New(opts.StorageMode, opts.Dir, v.name, opts.DataLogBlockSize, 0)
	metaWriter, err := metadata.NewWriter(opts.Dir, opts.StorageMode)
	if err != nil {
		return err
	}
	v.m = newMultilog(v.name, s, opts, dataLog, metaWriter)
	return nil
}

func (v *loadVisitor) OnIndex(rec metadata.IndexRecord) error {
	return v.m.installIndex(rec.FieldName, rec.BucketSize)
}

func (v *loadVisitor) OnFilter(rec metadata.FilterRecord) error {
	return v.m.installFilter(rec.Name, rec.Expr)
}

func (v *loadVisitor) OnAggregate(rec metadata.AggregateRecord) error {
	return v.m.installAggregate(rec.Name, rec.FilterName, rec.Expr)
}

func (v *loadVisitor) OnTrigger(rec metadata.TriggerRecord) error {
	return v.m.installTrigger(rec.Name, rec.Expr, rec.PeriodicityMs)
}

func (v *loadVisitor) OnTail(rec metadata.TailRecord) error {
	v.tail = rec.Tail
	return nil
}

// Load reopens a durable multilog previously built with New, replaying
// its metadata log to reconstruct the schema and every index, filter,
// aggregate, and trigger that was ever added, then restoring the data
// log's read tail to where Close last checkpointed it. opts.Dir and
// opts.StorageMode must match the values the multilog was originally
// created with (the metadata log itself can't be located without
// already knowing which directory and storage mode to look in); every
// other Options field may be re-tuned freely on reopen.
func Load(name string, opts Options) (*AtomicMultilog, error) {
	reader, err := metadata.NewReader(opts.Dir, opts.StorageMode)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	v := &loadVisitor{name: name, opts: opts}
	if err := reader.Replay(v); err != nil {
		return nil, err
	}
	if v.m == nil {
		return nil, errs.New(errs.NotFound, "no persisted multilog named %s under %s", name, opts.Dir)
	}
	if v.tail > 0 {
		v.m.dataLog.Restore(v.tail)
	}
	return v.m, nil
}
