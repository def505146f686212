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
	"sync"
	"time"

	"github.com/ucbrise/confluo-sub001/alertidx"
	"github.com/ucbrise/confluo-sub001/filter"
)

// DefaultTickMs is the interval between monitor ticks.
const DefaultTickMs = 1

// DefaultWindowMs is the rolling window (in milliseconds) the monitor
// re-checks on every tick, in case a slow writer commits a bucket
// after the tick that would otherwise have evaluated it already ran.
const DefaultWindowMs = 1000

// Target binds a Trigger to the filter aggregate it watches. A trigger
// is never embedded in filter.AggregateSpec itself, since filter has
// no reason to know about trigger and importing it there would cycle
// back through trigger's own use of filter.Filter.
type Target struct {
	Filter         *filter.Filter
	AggregateIndex int
}

type binding struct {
	trigger *Trigger
	target  Target
}

// VersionFunc returns the engine's current read-tail version, the
// snapshot point every tick evaluates aggregates as of.
type VersionFunc func() uint64

// Monitor periodically re-evaluates every installed Trigger's
// aggregate against its threshold and records an Alert for every time
// bucket that satisfies it. One Monitor serves an entire multilog;
// installed triggers are its only mutable state, guarded by mu since
// Install/Remove run on the management queue while Tick runs on its
// own goroutine.
type Monitor struct {
	mu       sync.Mutex
	bindings []*binding

	alerts  *alertidx.Index
	version VersionFunc

	tickMs   uint64
	windowMs uint64

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewMonitor constructs a Monitor. tickMs and windowMs fall back to
// DefaultTickMs/DefaultWindowMs when <= 0.
func NewMonitor(alerts *alertidx.Index, version VersionFunc, tickMs, windowMs uint64) *Monitor {
	if tickMs == 0 {
		tickMs = DefaultTickMs
	}
	if windowMs == 0 {
		windowMs = DefaultWindowMs
	}
	return &Monitor{alerts: alerts, version: version, tickMs: tickMs, windowMs: windowMs}
}

// Install attaches t to target; it begins firing on the next tick
// whose cur_ms is a multiple of t's periodicity.
func (m *Monitor) Install(t *Trigger, target Target) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings = append(m.bindings, &binding{trigger: t, target: target})
}

// Start launches the monitor's tick goroutine. Stop ends it.
func (m *Monitor) Start() {
	m.stop = make(chan struct{})
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(time.Duration(m.tickMs) * time.Millisecond)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-ticker.C:
				curMs := uint64(time.Since(start).Milliseconds())
				m.Tick(curMs)
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop ends the tick goroutine and waits for it to exit.
func (m *Monitor) Stop() {
	if m.stop == nil {
		return
	}
	close(m.stop)
	m.wg.Wait()
}

// Tick runs one evaluation pass at curMs, mirroring the original
// engine's monitor_task: a live trigger is only considered when curMs
// lands on one of its periodicity boundaries, and once it is, every
// boundary within the trailing windowMs window (DefaultWindowMs unless
// configured) is re-checked (not just curMs itself), so a trigger whose
// periodicity is shorter than the tick interval is never silently
// skipped. check_time_bucket then re-scans the periodicity-wide window
// ending at each such boundary, one time bucket at a time, for buckets
// whose aggregate now satisfies the trigger. The outer window and the
// inner per-boundary window use different widths
// (windowMs vs. the trigger's own periodicity) on purpose, the
// same asymmetry the original implementation has.
func (m *Monitor) Tick(curMs uint64) {
	m.mu.Lock()
	bindings := append([]*binding(nil), m.bindings...)
	m.mu.Unlock()

	version := m.version()
	for _, b := range bindings {
		t := b.trigger
		if !t.IsValid() || t.PeriodicityMs == 0 {
			continue
		}
		if curMs%t.PeriodicityMs != 0 {
			continue
		}
		windowStart := uint64(0)
		if curMs > m.windowMs {
			windowStart = curMs - m.windowMs
		}
		for ms := windowStart; ms <= curMs; ms++ {
			if ms%t.PeriodicityMs == 0 {
				m.checkTimeBucket(b, ms, version)
			}
		}
	}
}

func (m *Monitor) checkTimeBucket(b *binding, timeBucket, version uint64) {
	t := b.trigger
	windowSize := t.PeriodicityMs
	start := uint64(0)
	if timeBucket > windowSize {
		start = timeBucket - windowSize
	}
	f := b.target.Filter
	resultType := f.Aggregates()[b.target.AggregateIndex].ResultType()
	for ms := start; ms <= timeBucket; ms++ {
		buckets, err := f.LookupRange(ms, ms)
		if err != nil || len(buckets) == 0 {
			continue
		}
		bucket := buckets[0]
		if b.target.AggregateIndex >= bucket.NumAggregates() {
			continue
		}
		value, err := bucket.GetAggregate(b.target.AggregateIndex, version)
		if err != nil {
			continue
		}
		holds, err := t.Holds(resultType, value)
		if err != nil || !holds {
			continue
		}
		m.alerts.AddAlert(ms, t.Name, t.Expr(resultType), resultType, value, version)
	}
}
