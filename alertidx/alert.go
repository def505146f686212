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
	"fmt"

	"github.com/ucbrise/confluo-sub001/types"
)

// Alert records a single trigger firing: the trigger that fired, the
// value that satisfied it, the time bucket it was evaluated against,
// and the aggregate version read to produce that value.
type Alert struct {
	TimeBucket  uint64
	TriggerName string
	TriggerExpr string
	Value       types.Numeric
	ValueType   types.Type
	Version     uint64
}

// String renders an Alert the way the original engine's alert::to_string
// does, for logging and diagnostics.
func (a Alert) String() string {
	val := "?"
	if a.ValueType != nil {
		val = a.ValueType.Format(a.Value)
	}
	return fmt.Sprintf("{ timestamp: %d, trigger-name: %q, trigger-expression: %q, trigger-value: %q, version: %d }",
		a.TimeBucket, a.TriggerName, a.TriggerExpr, val, a.Version)
}
