package monet

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	httpAdapter "github.com/monetlab/monet/internal/adapters/http"
	logAdapter "github.com/monetlab/monet/internal/adapters/log"
	"github.com/monetlab/monet/internal/adapters/msd"
	"github.com/monetlab/monet/internal/adapters/sqlite"
	"github.com/monetlab/monet/internal/app"
	"github.com/monetlab/monet/internal/ports"
)

// ShutdownTimeout is the default time Close waits for the active run.
const ShutdownTimeout = app.ShutdownTimeout

// Engine is a batch classifier that can be embedded in other applications.
// Use New to create one, then Submit to start runs.
type Engine struct {
	config     Config
	engine     *app.Engine
	classifier ports.Classifier
	logger     ports.Logger

	// journal is closed by Close when the engine opened it.
	journal *sqlite.Journal

	closeOnce sync.Once
	closeErr  error
}

// New creates an Engine with the given configuration.
// Returns an error if configuration is invalid or the journal cannot be opened.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg.SetDefaults()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.validate(o.classifier == nil); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := o.logger
	if logger == nil {
		logger = logAdapter.NewNoopLogger()
	}

	classifier := o.classifier
	if classifier == nil {
		classifier = newClassifier(cfg, o.httpClient, logger)
	}

	e := &Engine{
		config:     cfg,
		classifier: classifier,
		logger:     logger,
	}

	journal := o.journal
	if journal == nil && cfg.JournalPath != "" {
		j, err := sqlite.Open(cfg.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		e.journal = j
		journal = j
	}

	emitter := eventEmitterWrapper{handler: o.eventHandler}
	e.engine = app.NewEngine(app.EngineConfig{
		Extensions: cfg.Extensions,
		MinPoints:  cfg.MinTrackPoints,
	}, classifier, journal, logger, &emitter)

	return e, nil
}

func newClassifier(cfg Config, client HTTPClient, logger ports.Logger) ports.Classifier {
	if cfg.Classifier == ClassifierMSD {
		return msd.NewClassifier(cfg.MSD)
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return httpAdapter.NewClassifier(httpAdapter.Config{
		URL:        cfg.ModelURL,
		Model:      cfg.ModelName,
		MaxRetries: cfg.MaxRetries,
	}, client, logger)
}

// Submit starts a batch run over the folder input, keeping the tracks that
// match filter. The run proceeds in the background; follow it with
// Run.Events and Run.Wait. Submit returns ErrBusy while another run is
// active and an error wrapping ErrInvalidRequest for a bad request.
//
// Cancelling ctx cancels the run.
func (e *Engine) Submit(ctx context.Context, input string, filter Filter) (*Run, error) {
	return e.engine.Submit(ctx, app.RunRequest{Input: input, Filter: filter})
}

// Cancel requests cancellation of the active run. The file in flight is
// completed; remaining files are reported NotProcessed.
// Returns ErrNotRunning when no run is active.
func (e *Engine) Cancel() error {
	return e.engine.Cancel()
}

// Active returns the active run, or nil.
func (e *Engine) Active() *Run {
	return e.engine.Active()
}

// Status returns the current lifecycle state.
func (e *Engine) Status() State {
	return convertState(e.engine.State())
}

// ClassifierName returns the name of the classifier backend in use.
func (e *Engine) ClassifierName() string {
	return e.classifier.Name()
}

// Shutdown cancels the active run, if any, and waits up to timeout for it to
// finish.
func (e *Engine) Shutdown(timeout time.Duration) error {
	return e.engine.Shutdown(timeout)
}

// Close shuts the engine down with ShutdownTimeout and releases the journal
// it opened. Close is idempotent.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = e.Shutdown(ShutdownTimeout)
		if e.journal != nil {
			if err := e.journal.Close(); err != nil && e.closeErr == nil {
				e.closeErr = fmt.Errorf("close journal: %w", err)
			}
		}
	})
	return e.closeErr
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interface.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func convertState(s app.State) State {
	switch s {
	case app.StateIdle:
		return StateIdle
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateCancelling:
		return StateCancelling
	default:
		return StateIdle
	}
}
