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

package task

import (
	"github.com/google/uuid"
)

// Func is a management operation submitted to a Queue.
type Func func() error

// Future is the handle returned by Submit: the caller blocks on Wait
// for the operation's outcome without blocking any other ingest or
// query path. ID uniquely identifies the request for diagnostics.
type Future struct {
	ID   uuid.UUID
	done chan error
}

// Wait blocks until the submitted Func has run and returns its error.
func (f *Future) Wait() error { return <-f.done }

// Queue is a single-writer goroutine draining a channel of management
// requests in submission order, the Go shape of the original engine's
// task_pool: appenders and queries never wait on it, but two
// management calls (e.g. two concurrent add_filter calls) are always
// applied one at a time.
type Queue struct {
	reqs chan Func
	done chan struct{}
}

// NewQueue starts a Queue's worker goroutine. Close stops it.
func NewQueue() *Queue {
	q := &Queue{reqs: make(chan Func, 64), done: make(chan struct{})}
	go q.run()
	return q
}

func (q *Queue) run() {
	for {
		select {
		case fn := <-q.reqs:
			fn()
		case <-q.done:
			// Drain anything left in flight before exiting so a Close
			// racing a Submit never silently drops a request.
			for {
				select {
				case fn := <-q.reqs:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Submit enqueues fn and returns a Future resolved once fn has run.
// Submit itself never blocks on fn's execution.
func (q *Queue) Submit(fn func() error) *Future {
	future := &Future{ID: uuid.New(), done: make(chan error, 1)}
	q.reqs <- func() error {
		err := fn()
		future.done <- err
		return err
	}
	return future
}

// SubmitWait is a convenience for the common case of wanting the
// result synchronously.
func (q *Queue) SubmitWait(fn func() error) error {
	return q.Submit(fn).Wait()
}

// Close stops the worker goroutine after draining any requests already
// enqueued.
func (q *Queue) Close() {
	close(q.done)
}
