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

package storage

import "github.com/ucbrise/confluo-sub001/errs"

// Mode selects how a multilog's blocks are backed.
type Mode uint32

const (
	// InMemory blocks are plain heap allocations; Flush is a no-op and
	// nothing survives process exit.
	InMemory Mode = iota
	// DurableRelaxed blocks are backed by a memory-mapped file but
	// Flush does not force a sync; durability is whatever the OS's
	// page cache writeback schedule happens to provide.
	DurableRelaxed
	// Durable blocks are backed by a memory-mapped file and Flush
	// calls msync followed by fsync on the backing file descriptor.
	Durable
)

func (m Mode) String() string {
	switch m {
	case InMemory:
		return "IN_MEMORY"
	case DurableRelaxed:
		return "DURABLE_RELAXED"
	case Durable:
		return "DURABLE"
	default:
		return "UNKNOWN"
	}
}

// MarshalYAML implements yaml.Marshaler so Mode round-trips through
// confluo.Options the same way the rest of the engine's tunables do.
func (m Mode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Mode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "IN_MEMORY", "":
		*m = InMemory
	case "DURABLE_RELAXED":
		*m = DurableRelaxed
	case "DURABLE":
		*m = Durable
	default:
		return errs.New(errs.ParseError, "unrecognized storage mode %q", s)
	}
	return nil
}

// IsFileBacked reports whether mode requires a backing file per block.
func (m Mode) IsFileBacked() bool {
	return m == DurableRelaxed || m == Durable
}
