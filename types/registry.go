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
	"sync"

	"golang.org/x/exp/maps"

	"github.com/ucbrise/confluo-sub001/errs"
)

// Factory builds a Type given a size parameter (the N in string(N); 0
// for every fixed-size built-in).
type Factory func(size int) (Type, error)

// registry is the process-wide, explicitly-initialized type registry:
// built-ins are registered once in init(), and embedders may Register
// their own Types before the first multilog is created. There is no
// lazy global state beyond this single init.
type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

var globalRegistry = newRegistry()

func newRegistry() *registry {
	r := &registry{factories: make(map[string]Factory)}
	r.registerBuiltins()
	return r
}

func (r *registry) registerBuiltins() {
	fixed := func(t Type) Factory {
		return func(size int) (Type, error) { return t, nil }
	}
	r.factories["bool"] = fixed(boolType{})
	r.factories["char"] = fixed(intType[int8]{name: "char", kind: Char, size: 1, signed: true, min: -128, max: 127})
	r.factories["uchar"] = fixed(intType[uint8]{name: "uchar", kind: UChar, size: 1, signed: false, min: 0, max: 255})
	r.factories["short"] = fixed(intType[int16]{name: "short", kind: Short, size: 2, signed: true, min: -32768, max: 32767})
	r.factories["ushort"] = fixed(intType[uint16]{name: "ushort", kind: UShort, size: 2, signed: false, min: 0, max: 65535})
	r.factories["int"] = fixed(intType[int32]{name: "int", kind: Int, size: 4, signed: true, min: -2147483648, max: 2147483647})
	r.factories["uint"] = fixed(intType[uint32]{name: "uint", kind: UInt, size: 4, signed: false, min: 0, max: 4294967295})
	r.factories["long"] = fixed(intType[int64]{name: "long", kind: Long, size: 8, signed: true, min: -9223372036854775808, max: 9223372036854775807})
	r.factories["ulong"] = fixed(intType[uint64]{name: "ulong", kind: ULong, size: 8, signed: false, min: 0, max: 18446744073709551615})
	r.factories["float"] = fixed(floatType{name: "float", kind: Float, size: 4, double: false, maxVal: 3.4028234663852886e+38})
	r.factories["double"] = fixed(floatType{name: "double", kind: Double, size: 8, double: true, maxVal: 1.7976931348623157e+308})
	r.factories["string"] = func(size int) (Type, error) {
		if size <= 0 {
			return nil, errs.New(errs.ParseError, "string type requires a positive size")
		}
		return stringType{size: size}, nil
	}
}

// Register installs a Factory under name, overwriting any previous
// registration. Intended for process startup, before any multilog uses
// the type by name.
func Register(name string, f Factory) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.factories[name] = f
}

// Lookup resolves name (and, for "string", a positive size) to a Type.
func Lookup(name string, size int) (Type, error) {
	globalRegistry.mu.RLock()
	f, ok := globalRegistry.factories[name]
	globalRegistry.mu.RUnlock()
	if !ok {
		return nil, errs.New(errs.NotFound, "no type registered under name %q", name)
	}
	return f(size)
}

// Names returns every registered type name, for diagnostics and schema
// validation error messages. Order is unspecified.
func Names() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return maps.Keys(globalRegistry.factories)
}

// ULongType is the type always used for count aggregates and for
// combining numerics of unknown provenance into a single wire Kind,
// exposed so other packages don't need to re-Lookup("ulong", 0).
func ULongType() Type {
	t, _ := Lookup("ulong", 0)
	return t
}
