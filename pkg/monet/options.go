package monet

import (
	"github.com/monetlab/monet/pkg/lifecycle"
	"github.com/monetlab/monet/pkg/log"
)

// State is the engine lifecycle state.
type State = lifecycle.State

// Engine states.
const (
	StateIdle       = lifecycle.StateIdle
	StateStarting   = lifecycle.StateStarting
	StateRunning    = lifecycle.StateRunning
	StateCancelling = lifecycle.StateCancelling
)

// StateChangeEvent describes one engine state transition.
type StateChangeEvent = lifecycle.StateChangeEvent

// EventHandler receives engine notifications. Callbacks run synchronously on
// the goroutine that changed the state and must not block.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to
// implement only the callbacks you need.
type BaseEventHandler struct{}

// OnStateChange does nothing.
func (BaseEventHandler) OnStateChange(StateChangeEvent) {}

// Option configures optional behavior of an Engine.
type Option func(*options)

// options holds the optional configuration for an Engine.
type options struct {
	httpClient   HTTPClient
	logger       Logger
	eventHandler EventHandler
	classifier   Classifier
	journal      Journal
}

// WithHTTPClient sets the HTTP client used by the http classifier.
// If not provided, a client with the configured timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for engine state changes.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithClassifier replaces the configured backend with classifier.
func WithClassifier(classifier Classifier) Option {
	return func(o *options) {
		o.classifier = classifier
	}
}

// WithJournal records run outcomes in journal instead of the database named
// by Config.JournalPath. The engine does not close it.
func WithJournal(journal Journal) Option {
	return func(o *options) {
		o.journal = journal
	}
}
