package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/monetlab/monet/internal/domain"
)

// Run is the handle of one submitted batch run.
type Run struct {
	info   domain.BatchRun
	events *eventQueue

	cancelled  atomic.Bool
	cancelOnce sync.Once
	onCancel   func()

	done    chan struct{}
	summary domain.RunSummary
	err     error
}

func newRun(info domain.BatchRun, onCancel func()) *Run {
	return &Run{
		info:     info,
		events:   newEventQueue(),
		onCancel: onCancel,
		done:     make(chan struct{}),
	}
}

// ID returns the run id.
func (r *Run) ID() string {
	return r.info.ID
}

// Info returns the run's fixed settings and file list.
func (r *Run) Info() domain.BatchRun {
	return r.info
}

// Events returns the progress stream. It is closed after the RunComplete
// event. Every call returns the same channel.
func (r *Run) Events() <-chan domain.ProgressEvent {
	return r.events.channel()
}

// Cancel asks the run to stop before its next file. The file in flight is
// finished. Cancel is safe to call more than once and after the run ended.
func (r *Run) Cancel() {
	r.cancelOnce.Do(func() {
		r.cancelled.Store(true)
		if r.onCancel != nil {
			r.onCancel()
		}
	})
}

// Cancelled reports whether Cancel was called.
func (r *Run) Cancelled() bool {
	return r.cancelled.Load()
}

// Done is closed when the run has ended.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run ends. The error is non-nil only for run-fatal
// failures such as a *domain.ClassifierInitError.
func (r *Run) Wait() (domain.RunSummary, error) {
	<-r.done
	return r.summary, r.err
}

func (r *Run) emit(ev domain.ProgressEvent) {
	ev.RunID = r.info.ID
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	r.events.push(ev)
}

// finish publishes the summary, closes the event stream and releases Wait.
func (r *Run) finish(summary domain.RunSummary, err error) {
	r.summary = summary
	r.err = err
	s := summary
	r.emit(domain.ProgressEvent{Stage: domain.StageRunComplete, Summary: &s, Err: err})
	r.events.close()
	close(r.done)
}
