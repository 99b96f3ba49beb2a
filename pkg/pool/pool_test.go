package pool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/batchstat/pkg/pool"
)

func TestExecute_AllJobsRunExactlyOnce(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		jobs    int
	}{
		{name: "test_single_worker", workers: 1, jobs: 10},
		{name: "test_more_workers_than_jobs", workers: 8, jobs: 3},
		{name: "test_more_jobs_than_workers", workers: 2, jobs: 100},
		{name: "test_zero_jobs", workers: 4, jobs: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pool.New(tt.workers)
			defer p.Shutdown()

			results := make(chan int, tt.jobs)
			for i := 0; i < tt.jobs; i++ {
				i := i
				ok := p.Execute(func() {
					results <- i
				})
				require.True(t, ok, "pool should accept jobs before shutdown")
			}

			seen := make(map[int]bool)
			for i := 0; i < tt.jobs; i++ {
				select {
				case v := <-results:
					assert.False(t, seen[v], "token %d delivered twice", v)
					seen[v] = true
				case <-time.After(5 * time.Second):
					t.Fatalf("timed out waiting for job %d of %d", i+1, tt.jobs)
				}
			}
			assert.Len(t, seen, tt.jobs, "should receive one token per job")
		})
	}
}

func TestNew_PanicsOnZeroSize(t *testing.T) {
	assert.Panics(t, func() { pool.New(0) }, "size 0 violates the pool precondition")
	assert.Panics(t, func() { pool.New(-1) }, "negative size violates the pool precondition")
}

func TestShutdown_DrainsEnqueuedJobs(t *testing.T) {
	p := pool.New(2)

	var ran atomic.Int64
	for i := 0; i < 50; i++ {
		require.True(t, p.Execute(func() {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		}))
	}

	p.Shutdown()
	assert.EqualValues(t, 50, ran.Load(), "jobs enqueued before shutdown must all run")
}

func TestShutdown_Idempotent(t *testing.T) {
	p := pool.New(3)
	require.True(t, p.Execute(func() {}))

	done := make(chan struct{})
	go func() {
		p.Shutdown()
		p.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("second Shutdown blocked")
	}

	// and again from the original goroutine
	p.Shutdown()
}

func TestExecute_AfterShutdownIsDropped(t *testing.T) {
	p := pool.New(1)
	p.Shutdown()

	var ran atomic.Bool
	ok := p.Execute(func() { ran.Store(true) })
	assert.False(t, ok, "pool should refuse jobs after shutdown")

	time.Sleep(20 * time.Millisecond)
	assert.False(t, ran.Load(), "dropped job must never run")
}

func TestPanicInJob_DoesNotKillWorker(t *testing.T) {
	p := pool.New(1)
	defer p.Shutdown()

	require.True(t, p.Execute(func() { panic("boom") }))

	done := make(chan struct{})
	require.True(t, p.Execute(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not survive a panicking job")
	}
}

func TestExecute_ConcurrentSubmitters(t *testing.T) {
	p := pool.New(4)
	defer p.Shutdown()

	const perSubmitter = 25
	var total atomic.Int64
	var wg sync.WaitGroup
	for s := 0; s < 4; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perSubmitter; i++ {
				p.Execute(func() { total.Add(1) })
			}
		}()
	}
	wg.Wait()
	p.Shutdown()

	assert.EqualValues(t, 4*perSubmitter, total.Load())
}
