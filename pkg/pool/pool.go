// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pool

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// 🧰 Job is a deferred unit of work executed by exactly one worker.
// It must capture everything it needs; the pool never passes arguments.
type Job func()

// 🏭 Pool runs jobs on a fixed set of long-lived worker goroutines.
//
// Jobs are enqueued in FIFO order on an unbounded queue and dequeued by
// whichever worker becomes available first. The pool accepts jobs until
// Shutdown is called; jobs already enqueued at that point still run.
type Pool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Job
	draining bool
	done     bool

	workers int
	wg      sync.WaitGroup
}

// New creates a pool with size workers, each blocked on the shared queue.
// Panics if size is zero; a pool with no workers can never make progress.
func New(size int) *Pool {
	if size <= 0 {
		panic("pool: size must be at least 1")
	}

	p := &Pool{workers: size}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

// Execute enqueues job for execution by some worker. It never blocks.
// Returns false if the pool has begun shutting down, in which case the
// job is dropped and will never run.
func (p *Pool) Execute(job Job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.draining {
		return false
	}

	p.queue = append(p.queue, job)
	p.cond.Signal()
	return true
}

// Shutdown stops accepting new jobs, lets workers drain everything already
// enqueued, and blocks until every worker goroutine has exited. Safe to
// call more than once; later calls return immediately.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.draining = true
	p.done = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
}

// Size returns the configured worker count.
func (p *Pool) Size() int {
	return p.workers
}

// worker is the consume loop: grab the lock, wait for work, run it
// outside the lock, repeat until draining and the queue is empty.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.draining {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			// draining and nothing left to do
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		runJob(id, job)
	}
}

// runJob isolates a single job so a panic costs one result, not a worker.
func runJob(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("worker", id).Interface("panic", r).Msg("job panicked")
		}
	}()
	job()
}
