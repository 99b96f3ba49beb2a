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

package processor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/batchstat/pkg/analyzer"
	"github.com/walteh/batchstat/pkg/discover"
	"github.com/walteh/batchstat/pkg/pool"
	"github.com/walteh/batchstat/pkg/progress"
)

// CancelledOperation tags the ProcessingError carried by a FileFailed
// event when a job observed cancellation before running.
const CancelledOperation = "cancelled"

// Executor is the slice of the worker pool the processor needs.
type Executor interface {
	Execute(pool.Job) bool
}

// Options configures a FileProcessor.
type Options struct {
	// Pool executes per-file jobs. Required.
	Pool Executor

	// Store receives best-effort {completed, total} writes after each
	// submission. Optional; nil disables persistence.
	Store *progress.Store

	// Discover controls how input paths expand to files.
	Discover discover.Options

	// PaceDelay is slept between submissions so dispatch cannot run
	// arbitrarily far ahead of execution. Zero disables pacing.
	PaceDelay time.Duration

	// Analyze overrides the analyzer, mainly for tests. Defaults to
	// analyzer.Analyze.
	Analyze func(path string) analyzer.FileAnalysis
}

// FileProcessor dispatches per-file analysis jobs onto a worker pool and
// reports progress over an event stream.
//
// A single background goroutine per Process call discovers files and
// submits jobs, so submission order and progress counts are serialized
// through one thread. Cancellation is cooperative: the dispatch loop
// stops submitting and in-flight jobs that have not started yet fail
// with CancelledOperation, but jobs already running finish normally.
type FileProcessor struct {
	pool    Executor
	store   *progress.Store
	opts    discover.Options
	pace    time.Duration
	analyze func(string) analyzer.FileAnalysis

	cancelled  atomic.Bool
	totalBytes atomic.Uint64
}

// New creates a FileProcessor. Panics if opts.Pool is nil.
func New(opts Options) *FileProcessor {
	if opts.Pool == nil {
		panic("processor: Pool is required")
	}
	analyze := opts.Analyze
	if analyze == nil {
		analyze = analyzer.Analyze
	}
	return &FileProcessor{
		pool:    opts.Pool,
		store:   opts.Store,
		opts:    opts.Discover,
		pace:    opts.PaceDelay,
		analyze: analyze,
	}
}

// Process expands paths to files and processes each on the pool. It
// returns the receive end of the progress stream immediately; the stream
// closes once dispatch has finished and every accepted job has reported.
// The consumer must drain the channel.
//
// Cancelling ctx has the same effect as Cancel.
func (p *FileProcessor) Process(ctx context.Context, paths []string) <-chan Event {
	q := newEventQueue()
	go p.dispatch(ctx, paths, q)
	return q.out
}

// Cancel asks the processor to stop starting new work. The flag is
// monotonic; there is no way to resume. Already-submitted jobs may still
// run to completion or may observe the flag first, depending on timing.
func (p *FileProcessor) Cancel() {
	p.cancelled.Store(true)
}

// TotalBytesProcessed returns the bytes accumulated by completed jobs so
// far. Monotonically non-decreasing; safe to call concurrently.
func (p *FileProcessor) TotalBytesProcessed() uint64 {
	return p.totalBytes.Load()
}

func (p *FileProcessor) dispatch(ctx context.Context, paths []string, q *eventQueue) {
	logger := zerolog.Ctx(ctx)

	files := discover.Files(paths, p.opts)
	total := uint(len(files))
	logger.Debug().Uint("total", total).Msg("dispatch starting")

	var jobs sync.WaitGroup
	var completed uint

	for _, path := range files {
		if ctx.Err() != nil {
			p.Cancel()
		}
		if p.cancelled.Load() {
			logger.Debug().Uint("submitted", completed).Msg("dispatch cancelled")
			break
		}

		q.Send(FileStarted{Path: path})

		path := path
		jobs.Add(1)
		accepted := p.pool.Execute(func() {
			defer jobs.Done()
			p.runJob(path, q)
		})
		if !accepted {
			// pool is shutting down; the job will never run
			jobs.Done()
			logger.Debug().Str("path", path).Msg("job dropped by pool")
		}

		completed++
		q.Send(OverallProgress{Completed: completed, Total: total})

		if p.store != nil {
			if err := p.store.Write(completed, total); err != nil {
				logger.Debug().Err(err).Msg("persisting progress failed")
			}
		}

		if p.pace > 0 {
			time.Sleep(p.pace)
		}
	}

	jobs.Wait()
	q.Close()
	logger.Debug().Uint("submitted", completed).Uint64("bytes", p.totalBytes.Load()).Msg("dispatch finished")
}

func (p *FileProcessor) runJob(path string, q *eventQueue) {
	if p.cancelled.Load() {
		q.Send(FileFailed{
			Path: path,
			Err: analyzer.ProcessingError{
				Filename:  path,
				Operation: CancelledOperation,
				Message:   "cancelled before start",
			},
		})
		return
	}

	analysis := p.analyze(path)
	p.totalBytes.Add(analysis.Stats.SizeBytes)
	q.Send(FileCompleted{Analysis: analysis})
}
