package processor

import (
	"sync"

	"github.com/walteh/batchstat/pkg/analyzer"
)

// Event is a progress notification emitted while a batch is processed.
// Exactly one of the four concrete types below flows per notification.
type Event interface {
	isEvent()
}

// FileStarted reports that a file has been submitted for processing.
type FileStarted struct {
	Path string
}

// FileCompleted reports a finished analysis. Partial failures live in
// Analysis.Errors; the file still completes.
type FileCompleted struct {
	Analysis analyzer.FileAnalysis
}

// FileFailed reports a file that never ran, e.g. a job that observed
// cancellation before starting.
type FileFailed struct {
	Path string
	Err  analyzer.ProcessingError
}

// OverallProgress reports how many files have been submitted out of the
// total discovered. Completed is monotonically non-decreasing within one
// Process call.
type OverallProgress struct {
	Completed uint
	Total     uint
}

func (FileStarted) isEvent()     {}
func (FileCompleted) isEvent()   {}
func (FileFailed) isEvent()      {}
func (OverallProgress) isEvent() {}

// eventQueue is an unbounded FIFO between event producers (dispatcher and
// workers) and the single consumer. Send never blocks; a pump goroutine
// drains the backlog into the public channel, which it closes once the
// queue is closed and empty.
type eventQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	backlog []Event
	closed  bool
	out     chan Event
}

func newEventQueue() *eventQueue {
	q := &eventQueue{out: make(chan Event)}
	q.cond = sync.NewCond(&q.mu)
	go q.pump()
	return q
}

// Send enqueues ev. Events sent after Close are dropped.
func (q *eventQueue) Send(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.backlog = append(q.backlog, ev)
	q.cond.Signal()
}

// Close marks end-of-stream. The pump still delivers the backlog before
// closing the public channel.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Signal()
}

func (q *eventQueue) pump() {
	for {
		q.mu.Lock()
		for len(q.backlog) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.backlog) == 0 {
			q.mu.Unlock()
			close(q.out)
			return
		}
		ev := q.backlog[0]
		q.backlog[0] = nil
		q.backlog = q.backlog[1:]
		q.mu.Unlock()

		q.out <- ev
	}
}
