package app

import (
	"sync"
	"time"

	"github.com/monetlab/monet/internal/domain"
	"github.com/monetlab/monet/internal/ports"
)

// ShutdownTimeout is the default time to wait for the active run to finish
// its current file on shutdown.
const ShutdownTimeout = 30 * time.Second

// State represents the lifecycle state of the engine.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateCancelling
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateCancelling:
		return "Cancelling"
	default:
		return "Unknown"
	}
}

// Lifecycle is the engine's state machine. At most one run is active, that
// is, in any state but Idle.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	wg           sync.WaitGroup
	logger       ports.Logger
	eventEmitter EventEmitter
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// NewLifecycle creates a new lifecycle manager.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateIdle,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Leaving Idle for anything but Starting returns domain.ErrNotRunning; any
// other invalid transition, including a second start, returns domain.ErrBusy.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	var err error
	switch oldState {
	case StateIdle:
		if newState != StateStarting {
			err = domain.ErrNotRunning
		}
	case StateStarting:
		if newState != StateRunning && newState != StateIdle {
			err = domain.ErrBusy
		}
	case StateRunning:
		if newState != StateCancelling && newState != StateIdle {
			err = domain.ErrBusy
		}
	case StateCancelling:
		if newState != StateIdle {
			err = domain.ErrBusy
		}
	}
	if err != nil {
		l.mu.Unlock()
		return err
	}

	l.state = newState
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Debug("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)

	return nil
}

// Active reports whether a run is in progress.
func (l *Lifecycle) Active() bool {
	return l.State() != StateIdle
}

// AddWorker increments the worker count.
func (l *Lifecycle) AddWorker() {
	l.wg.Add(1)
}

// WorkerDone decrements the worker count.
func (l *Lifecycle) WorkerDone() {
	l.wg.Done()
}

// WaitWithTimeout waits for all workers to finish with a timeout.
// Returns domain.ErrShutdownTimeout if the timeout expires.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, forcing exit",
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
