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

import "sort"

// TimeBlockWidth is the granularity (in the same units as the
// TIMESTAMP column, i.e. microseconds) at which append_batch groups
// records before replaying them into the data log: one monolog
// reservation per block keeps writers within a batch contending on the
// tail counter only once per block rather than once per record.
const TimeBlockWidth = int64(1e6)

// Block is every record in a batch whose timestamp falls in the same
// TimeBlockWidth-wide bucket, stored back-to-back as RecordSize()-wide
// rows.
type Block struct {
	TimeBlock int64
	Data      []byte
	NRecords  int
}

// Batch is a set of Blocks ready to be appended to a multilog in one
// operation, ordered by TimeBlock so the resulting offsets stay
// monotonic with respect to time across the whole batch.
type Batch struct {
	Blocks   []Block
	NRecords int
}

// StartTimeBlock is the earliest time block present in the batch.
func (b Batch) StartTimeBlock() int64 { return b.Blocks[0].TimeBlock }

// EndTimeBlock is the latest time block present in the batch.
func (b Batch) EndTimeBlock() int64 { return b.Blocks[len(b.Blocks)-1].TimeBlock }

// BatchBuilder accumulates records (already serialized to RecordSize()
// bytes each via Schema) into time-ordered Blocks.
type BatchBuilder struct {
	schema *Schema
	data   map[int64][]byte
}

// NewBatchBuilder constructs a BatchBuilder for schema.
func NewBatchBuilder(schema *Schema) *BatchBuilder {
	return &BatchBuilder{schema: schema, data: make(map[int64][]byte)}
}

// AddRecord appends one pre-serialized record (exactly RecordSize()
// bytes, with the TIMESTAMP column already populated) to its time
// block.
func (b *BatchBuilder) AddRecord(record []byte) {
	recordSize := b.schema.RecordSize()
	ts := int64(Record{schema: b.schema, data: record}.Timestamp())
	block := ts / TimeBlockWidth
	buf := b.data[block]
	buf = append(buf, record[:recordSize]...)
	b.data[block] = buf
}

// Build finalizes the accumulated records into a time-ordered Batch.
func (b *BatchBuilder) Build() Batch {
	recordSize := b.schema.RecordSize()
	blocks := make([]int64, 0, len(b.data))
	for tb := range b.data {
		blocks = append(blocks, tb)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })

	batch := Batch{Blocks: make([]Block, len(blocks))}
	for i, tb := range blocks {
		data := b.data[tb]
		n := len(data) / recordSize
		batch.Blocks[i] = Block{TimeBlock: tb, Data: data, NRecords: n}
		batch.NRecords += n
	}
	return batch
}
