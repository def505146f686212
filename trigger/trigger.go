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

package trigger

import (
	"fmt"
	"sync/atomic"

	"github.com/ucbrise/confluo-sub001/exprast"
	"github.com/ucbrise/confluo-sub001/types"
)

// Trigger is a named (aggregate, relop, threshold) condition evaluated
// on every monitor tick at a fixed periodicity.
type Trigger struct {
	Name          string
	AggregateName string
	Op            exprast.RelOp
	Threshold     types.Numeric
	PeriodicityMs uint64

	valid atomic.Bool
}

// New constructs a Trigger, already valid.
func New(name, aggregateName string, op exprast.RelOp, threshold types.Numeric, periodicityMs uint64) *Trigger {
	t := &Trigger{Name: name, AggregateName: aggregateName, Op: op, Threshold: threshold, PeriodicityMs: periodicityMs}
	t.valid.Store(true)
	return t
}

// IsValid reports whether this trigger is still live.
func (t *Trigger) IsValid() bool { return t.valid.Load() }

// Invalidate marks the trigger removed; the monitor skips it from the
// next tick onward.
func (t *Trigger) Invalidate() bool { return t.valid.CompareAndSwap(true, false) }

// Expr renders the trigger's condition in "agg_name relop literal"
// form, the form spec.md's trigger expression grammar and alerts both
// use.
func (t *Trigger) Expr(thresholdType types.Type) string {
	return fmt.Sprintf("%s%s%s", t.AggregateName, t.Op, thresholdType.Format(t.Threshold))
}

// Holds reports whether value satisfies this trigger's relop against
// its threshold, comparing as the given type (normally the aggregate's
// own result type).
func (t *Trigger) Holds(resultType types.Type, value types.Numeric) (bool, error) {
	cmp, err := resultType.Compare(value, t.Threshold)
	if err != nil {
		return false, err
	}
	switch t.Op {
	case exprast.EQ:
		return cmp == 0, nil
	case exprast.NEQ:
		return cmp != 0, nil
	case exprast.LT:
		return cmp < 0, nil
	case exprast.LE:
		return cmp <= 0, nil
	case exprast.GT:
		return cmp > 0, nil
	case exprast.GE:
		return cmp >= 0, nil
	default:
		return false, nil
	}
}
