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

package types

import (
	"strings"
	"sync"

	"github.com/ucbrise/confluo-sub001/errs"
)

// Aggregator is a named combine pair plus the result type and identity
// element, the way sum/min/max/count are specified. ResultType and
// Identity are functions of the source field's Type because the same
// Aggregator (sum, say) produces an int result from an int field and a
// double result from a double field; Count is the one built-in that
// ignores the field type entirely and always produces ULong.
type Aggregator struct {
	Name       string
	ResultType func(fieldType Type) Type
	Identity   func(resultType Type) Numeric
	// SeqCombine folds one new field value into a running partial
	// aggregate.
	SeqCombine func(resultType Type, acc, val Numeric) (Numeric, error)
	// ParCombine merges two partial aggregates (produced by different
	// threads, or by different time buckets). Must be commutative and
	// associative.
	ParCombine func(resultType Type, a, b Numeric) (Numeric, error)
}

// AggregatorID identifies a registered Aggregator. 0 is reserved to
// mean "invalid"; it is never handed out by Register.
type AggregatorID uint32

// InvalidAggregatorID is the reserved zero id.
const InvalidAggregatorID AggregatorID = 0

type aggregatorRegistry struct {
	mu     sync.RWMutex
	byName map[string]AggregatorID
	list   []Aggregator // list[0] is an unused placeholder for InvalidAggregatorID
}

var globalAggregators = newAggregatorRegistry()

func newAggregatorRegistry() *aggregatorRegistry {
	r := &aggregatorRegistry{
		byName: make(map[string]AggregatorID),
		list:   make([]Aggregator, 1), // reserve index 0
	}
	r.register("sum", sumAggregator)
	r.register("min", minAggregator)
	r.register("max", maxAggregator)
	r.register("count", countAggregator)
	return r
}

func (r *aggregatorRegistry) register(name string, a Aggregator) AggregatorID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := AggregatorID(len(r.list))
	r.list = append(r.list, a)
	r.byName[strings.ToLower(name)] = id
	return id
}

// RegisterAggregator installs a, returning its id. Intended for process
// startup before any multilog references the aggregator by name.
func RegisterAggregator(name string, a Aggregator) AggregatorID {
	return globalAggregators.register(name, a)
}

// LookupAggregator resolves a case-insensitive aggregator name to its
// id and definition.
func LookupAggregator(name string) (AggregatorID, Aggregator, error) {
	globalAggregators.mu.RLock()
	defer globalAggregators.mu.RUnlock()
	id, ok := globalAggregators.byName[strings.ToLower(name)]
	if !ok {
		return InvalidAggregatorID, Aggregator{}, errs.New(errs.NotFound, "no aggregator registered under name %q", name)
	}
	return id, globalAggregators.list[id], nil
}

// AggregatorByID returns the Aggregator for id, or an error if id is
// InvalidAggregatorID or out of range.
func AggregatorByID(id AggregatorID) (Aggregator, error) {
	globalAggregators.mu.RLock()
	defer globalAggregators.mu.RUnlock()
	if id == InvalidAggregatorID || int(id) >= len(globalAggregators.list) {
		return Aggregator{}, errs.New(errs.NotFound, "no aggregator registered under id %d", id)
	}
	return globalAggregators.list[id], nil
}

var sumAggregator = Aggregator{
	Name:       "sum",
	ResultType: func(fieldType Type) Type { return fieldType },
	Identity:   func(resultType Type) Numeric { return resultType.Zero() },
	SeqCombine: func(resultType Type, acc, val Numeric) (Numeric, error) { return resultType.Add(acc, val) },
	ParCombine: func(resultType Type, a, b Numeric) (Numeric, error) { return resultType.Add(a, b) },
}

var minAggregator = Aggregator{
	Name:       "min",
	ResultType: func(fieldType Type) Type { return fieldType },
	Identity:   func(resultType Type) Numeric { return resultType.Max() },
	SeqCombine: func(resultType Type, acc, val Numeric) (Numeric, error) { return pickMin(resultType, acc, val) },
	ParCombine: func(resultType Type, a, b Numeric) (Numeric, error) { return pickMin(resultType, a, b) },
}

var maxAggregator = Aggregator{
	Name:       "max",
	ResultType: func(fieldType Type) Type { return fieldType },
	Identity:   func(resultType Type) Numeric { return resultType.Min() },
	SeqCombine: func(resultType Type, acc, val Numeric) (Numeric, error) { return pickMax(resultType, acc, val) },
	ParCombine: func(resultType Type, a, b Numeric) (Numeric, error) { return pickMax(resultType, a, b) },
}

func pickMin(t Type, a, b Numeric) (Numeric, error) {
	cmp, err := t.Compare(a, b)
	if err != nil {
		return Numeric{}, err
	}
	if cmp <= 0 {
		return a, nil
	}
	return b, nil
}

func pickMax(t Type, a, b Numeric) (Numeric, error) {
	cmp, err := t.Compare(a, b)
	if err != nil {
		return Numeric{}, err
	}
	if cmp >= 0 {
		return a, nil
	}
	return b, nil
}

// countAggregator always produces a ULong regardless of the source
// field's type. Per the open question in spec.md §9 ("the count
// aggregator in one source draft adds count_one regardless of the
// second operand; in another it adds the two operands"), this
// implementation adds exactly one per sequential update and sums
// partials on parallel-combine, i.e. SeqCombine ignores val.
var countAggregator = Aggregator{
	Name:       "count",
	ResultType: func(fieldType Type) Type { return ULongType() },
	Identity:   func(resultType Type) Numeric { return resultType.Zero() },
	SeqCombine: func(resultType Type, acc, _ Numeric) (Numeric, error) {
		return resultType.Add(acc, resultType.One())
	},
	ParCombine: func(resultType Type, a, b Numeric) (Numeric, error) { return resultType.Add(a, b) },
}
