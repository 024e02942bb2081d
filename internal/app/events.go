package app

import (
	"sync"

	"github.com/monetlab/monet/internal/domain"
)

// eventQueue is an unbounded FIFO of progress events. push never blocks, so
// the worker is independent of how fast, or whether, anyone consumes. The
// delivery goroutine starts on the first call to channel.
type eventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []domain.ProgressEvent
	closed bool

	once sync.Once
	out  chan domain.ProgressEvent
}

func newEventQueue() *eventQueue {
	q := &eventQueue{out: make(chan domain.ProgressEvent)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends ev. Events pushed after close are dropped.
func (q *eventQueue) push(ev domain.ProgressEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.buf = append(q.buf, ev)
	q.cond.Signal()
}

// close marks the end of the stream. The channel is closed once every queued
// event has been delivered.
func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Signal()
}

func (q *eventQueue) channel() <-chan domain.ProgressEvent {
	q.once.Do(func() { go q.deliver() })
	return q.out
}

func (q *eventQueue) deliver() {
	defer close(q.out)
	for {
		q.mu.Lock()
		for len(q.buf) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.buf) == 0 {
			q.mu.Unlock()
			return
		}
		ev := q.buf[0]
		q.buf[0] = domain.ProgressEvent{}
		q.buf = q.buf[1:]
		q.mu.Unlock()

		q.out <- ev
	}
}
