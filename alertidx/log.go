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
	"github.com/ucbrise/confluo-sub001/monolog"
	"github.com/ucbrise/confluo-sub001/types"
)

// alertLog is one time bucket's alert list: a plain Monolog[Alert]
// already satisfies radixidx.Log[Alert] via its promoted PushBack/Size
// methods, so it needs no wrapping beyond a named type to hang the
// scan-for-duplicate helper off of.
type alertLog struct {
	*monolog.Monolog[Alert]
}

func newAlertLog() *alertLog {
	return &alertLog{Monolog: monolog.New[Alert](monolog.DefaultBuckets)}
}

// find returns the index of an existing alert matching (triggerName,
// value) in this bucket, or -1 if none, mirroring the original
// engine's alert_index::find_alert linear scan (bucket alert counts
// are small, so a scan is cheap and avoids a second index).
func (l *alertLog) find(triggerName string, valueType types.Type, value types.Numeric) int {
	n := l.Size()
	for i := uint64(0); i < n; i++ {
		a := l.Get(i)
		if a.TriggerName != triggerName {
			continue
		}
		if cmp, err := valueType.Compare(a.Value, value); err == nil && cmp == 0 {
			return int(i)
		}
	}
	return -1
}
