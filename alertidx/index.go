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

package alertidx

import (
	"github.com/ucbrise/confluo-sub001/radixidx"
	"github.com/ucbrise/confluo-sub001/types"
)

// keyDepth is the byte width of the ULong key-transform used for a
// time bucket, matching filter's own time index.
const keyDepth = 8

// Index is the monitor's alert store: a radix tree keyed by time
// bucket, each leaf an append-only, dedup-on-insert alert log. The
// monitor goroutine is this Index's only writer; GetAlerts may run
// concurrently with AddAlert the same way a filter's RangeLookup runs
// concurrently with record ingest.
type Index struct {
	idx *radixidx.Tree[Alert, *alertLog]
}

// New constructs an empty alert Index.
func New() *Index {
	return &Index{idx: radixidx.New[Alert, *alertLog](keyDepth, radixidx.DefaultWidth, newAlertLog)}
}

func makeKey(timeBucket uint64) []byte {
	return types.ULongType().KeyTransform(types.NewULong(timeBucket), 1.0)
}

// AddAlert records a trigger firing at timeBucket, unless an alert for
// the same (triggerName, value) already exists in that bucket.
func (x *Index) AddAlert(timeBucket uint64, triggerName, triggerExpr string, valueType types.Type, value types.Numeric, version uint64) error {
	log, err := x.idx.GetOrCreate(makeKey(timeBucket))
	if err != nil {
		return err
	}
	if log.find(triggerName, valueType, value) != -1 {
		return nil
	}
	log.PushBack(Alert{
		TimeBucket:  timeBucket,
		TriggerName: triggerName,
		TriggerExpr: triggerExpr,
		Value:       value,
		ValueType:   valueType,
		Version:     version,
	})
	return nil
}

// GetAlerts returns every alert recorded in a time bucket within
// [t1, t2], in ascending bucket order.
func (x *Index) GetAlerts(t1, t2 uint64) ([]Alert, error) {
	logs, err := x.idx.RangeLookup(makeKey(t1), makeKey(t2))
	if err != nil {
		return nil, err
	}
	var out []Alert
	for _, log := range logs {
		n := log.Size()
		for i := uint64(0); i < n; i++ {
			out = append(out, log.Get(i))
		}
	}
	return out, nil
}
