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
	"github.com/ucbrise/confluo-sub001/metadata"
	"github.com/ucbrise/confluo-sub001/storage"
)

// Options tunes an AtomicMultilog. Every field has a documented
// default applied by New when left at its zero value; the struct
// round-trips through sigs.k8s.io/yaml the same way storage.Mode
// already does, so embedders that keep their own YAML config can embed
// Options directly.
type Options struct {
	// Dir is the directory backing file-based storage and the
	// metadata log; ignored when StorageMode is InMemory.
	Dir string `json:"dir,omitempty"`
	// StorageMode selects how the data log's blocks are backed.
	StorageMode storage.Mode `json:"storage_mode,omitempty"`
	// ArchivalMode records whether background archival is enabled;
	// Confluo itself never runs archival on a timer (Archive is always
	// caller-invoked, submitted through the management queue), so this
	// is persisted for embedders that drive their own archival
	// schedule and is otherwise informational.
	ArchivalMode metadata.ArchivalMode `json:"archival_mode,omitempty"`
	// MaxConcurrency bounds the number of writer slots RegisterThread
	// can hand out; <= 0 defaults to runtime.GOMAXPROCS(0).
	MaxConcurrency int `json:"max_concurrency,omitempty"`
	// MonitorTickMs is the trigger monitor's tick interval.
	MonitorTickMs uint64 `json:"monitor_tick_ms,omitempty"`
	// MonitorWindowMs is the rolling window the monitor re-checks on
	// every tick.
	MonitorWindowMs uint64 `json:"monitor_window_ms,omitempty"`
	// TimeResolutionMicros is the default granularity new filters
	// bucket timestamps at.
	TimeResolutionMicros int64 `json:"time_resolution_micros,omitempty"`
	// DefaultIndexBucketSize is the bucket width AddIndex uses when the
	// caller doesn't specify one.
	DefaultIndexBucketSize float64 `json:"default_index_bucket_size,omitempty"`
	// DataLogBlockSize is the fixed size of one lazily-allocated data
	// log block; <= 0 defaults to datalog.DefaultBlockSize.
	DataLogBlockSize uint64 `json:"data_log_block_size,omitempty"`
}

// DefaultOptions returns the documented defaults: in-memory storage,
// archival off, one writer slot per GOMAXPROCS, a 1ms monitor tick, a
// 1000ms monitor window, 1ms (1000µs) time resolution, and a 1.0 index
// bucket size.
func DefaultOptions() Options {
	return Options{
		StorageMode:            storage.InMemory,
		ArchivalMode:           metadata.ArchivalOff,
		MonitorTickMs:          0, // resolved against trigger.DefaultTickMs by New
		MonitorWindowMs:        0, // resolved against trigger.DefaultWindowMs by New
		TimeResolutionMicros:   0, // resolved against filter.DefaultTimeResolutionMicros by New
		DefaultIndexBucketSize: 1.0,
	}
}
