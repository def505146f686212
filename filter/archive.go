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
	"bytes"
	"encoding/binary"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/types"
)

var (
	archiveCodecOnce sync.Once
	archiveEncoder   *zstd.Encoder
	archiveDecoder   *zstd.Decoder
)

func archiveCodecs() (*zstd.Encoder, *zstd.Decoder) {
	archiveCodecOnce.Do(func() {
		archiveEncoder, _ = zstd.NewWriter(nil)
		archiveDecoder, _ = zstd.NewReader(nil)
	})
	return archiveEncoder, archiveDecoder
}

// archiveRoundTrip serializes values (each via its spec's result
// type), zstd-compresses the buffer, then immediately decompresses and
// deserializes it back. The compress/decompress round trip is the
// archiver's actual re-encoding step (filter_archiver.h re-encodes a
// stale bucket's aggregate array rather than leaving it in its live
// representation); doing it in one call rather than persisting the
// compressed form keeps the archived values in memory behind the same
// Swappable the live array already uses.
func archiveRoundTrip(specs []*AggregateSpec, values []types.Numeric) ([]types.Numeric, error) {
	var buf bytes.Buffer
	for i, v := range values {
		b := specs[i].resultType.Serialize(v)
		binary.Write(&buf, binary.LittleEndian, uint32(len(b)))
		buf.Write(b)
	}
	enc, dec := archiveCodecs()
	compressed := enc.EncodeAll(buf.Bytes(), nil)
	decompressed, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, errs.New(errs.IllegalState, "archive: zstd round trip failed: %v", err)
	}
	r := bytes.NewReader(decompressed)
	out := make([]types.Numeric, len(values))
	for i := range values {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, err
		}
		v, err := specs[i].resultType.Deserialize(b)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ArchiveBefore re-encodes every time bucket whose block is strictly
// less than beforeBlock: each bucket's current aggregate values (as of
// version) are snapshotted, round-tripped through archiveRoundTrip,
// and installed as a fresh aggregate array via the bucket's Swappable,
// so concurrent readers mid-GetAggregate against the old array are
// unaffected and new readers see the archived one immediately. It
// returns the number of buckets archived.
func (f *Filter) ArchiveBefore(beforeBlock, version uint64) (int, error) {
	if beforeBlock == 0 {
		return 0, nil
	}
	buckets, err := f.idx.RangeLookup(timeBlockKey(0), timeBlockKey(beforeBlock-1))
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	specs := append([]*AggregateSpec(nil), f.specs...)
	f.mu.Unlock()

	n := 0
	for _, b := range buckets {
		if err := b.archive(specs, version); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
