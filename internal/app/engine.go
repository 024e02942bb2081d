// Package app runs batch classification: it owns the single active run, walks
// its files one at a time through the per-file pipeline and reports progress
// as a stream of events.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	fsadapter "github.com/monetlab/monet/internal/adapters/fs"
	"github.com/monetlab/monet/internal/classify"
	"github.com/monetlab/monet/internal/domain"
	"github.com/monetlab/monet/internal/ports"
	"github.com/monetlab/monet/internal/schema"
)

// EngineConfig contains the engine settings that hold across runs.
type EngineConfig struct {
	// Extensions are the tabular file extensions to pick up. Empty means
	// fs.DefaultExtensions.
	Extensions []string

	// MinPoints is the fewest points a track needs to be sent to the
	// classifier. Shorter tracks are labeled Unknown.
	MinPoints int

	// Aliases overrides the column alias tables per role.
	Aliases map[domain.Role][]string
}

// RunRequest describes one batch run.
type RunRequest struct {
	// Input is the input root directory.
	Input string

	Filter domain.FilterConfig
}

// Engine is the batch orchestrator. It runs at most one batch at a time.
type Engine struct {
	config     EngineConfig
	classifier ports.Classifier
	journal    ports.Journal
	logger     ports.Logger
	resolver   *schema.Resolver
	lifecycle  *Lifecycle

	mu     sync.Mutex
	active *Run

	newID func() string
	now   func() time.Time
}

// NewEngine creates an engine. journal may be nil.
func NewEngine(
	config EngineConfig,
	classifier ports.Classifier,
	journal ports.Journal,
	logger ports.Logger,
	emitter EventEmitter,
) *Engine {
	return &Engine{
		config:     config,
		classifier: classifier,
		journal:    journal,
		logger:     logger,
		resolver:   schema.NewResolver(config.Aliases),
		lifecycle:  NewLifecycle(logger, emitter),
		newID:      func() string { return uuid.New().String() },
		now:        time.Now,
	}
}

// State returns the engine's lifecycle state.
func (e *Engine) State() State {
	return e.lifecycle.State()
}

// Active returns the active run, or nil.
func (e *Engine) Active() *Run {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Submit validates req, discovers its files, prepares the output root and
// starts the run in the background. It fails with domain.ErrBusy while
// another run is active, leaving that run untouched.
//
// Cancelling ctx cancels the run the same way Run.Cancel does.
func (e *Engine) Submit(ctx context.Context, req RunRequest) (*Run, error) {
	if err := e.lifecycle.TransitionTo(StateStarting, "run submitted"); err != nil {
		return nil, err
	}

	info, err := e.prepare(req)
	if err != nil {
		_ = e.lifecycle.TransitionTo(StateIdle, "run rejected")
		return nil, err
	}

	var r *Run
	r = newRun(info, func() {
		if e.Active() == r {
			_ = e.lifecycle.TransitionTo(StateCancelling, "cancel requested")
		}
	})

	e.mu.Lock()
	e.active = r
	e.mu.Unlock()

	if err := e.lifecycle.TransitionTo(StateRunning, "run started"); err != nil {
		// Unreachable while Submit holds the Starting state.
		return nil, err
	}

	e.logger.Info("run started",
		ports.String("run", info.ID),
		ports.String("input", info.InputRoot),
		ports.String("output", info.OutputRoot),
		ports.Any("filter", info.Filter),
		ports.Int("files", len(info.Files)),
	)

	stop := context.AfterFunc(ctx, r.Cancel)
	e.lifecycle.AddWorker()
	go func() {
		defer e.lifecycle.WorkerDone()
		defer stop()
		e.execute(context.WithoutCancel(ctx), r)
	}()

	return r, nil
}

// Cancel cancels the active run. It returns domain.ErrNotRunning when there is
// none.
func (e *Engine) Cancel() error {
	r := e.Active()
	if r == nil {
		return domain.ErrNotRunning
	}
	r.Cancel()
	return nil
}

// Shutdown cancels the active run, if any, and waits up to timeout for it to
// finish the file in flight.
func (e *Engine) Shutdown(timeout time.Duration) error {
	if r := e.Active(); r != nil {
		r.Cancel()
	}
	return e.lifecycle.WaitWithTimeout(timeout)
}

func (e *Engine) prepare(req RunRequest) (domain.BatchRun, error) {
	if req.Input == "" {
		return domain.BatchRun{}, fmt.Errorf("%w: input folder is required", domain.ErrInvalidRequest)
	}
	if req.Filter < domain.FilterAll || req.Filter > domain.FilterCTRW {
		return domain.BatchRun{}, fmt.Errorf("%w: unknown filter %d", domain.ErrInvalidRequest, req.Filter)
	}

	input, err := filepath.Abs(req.Input)
	if err != nil {
		return domain.BatchRun{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	st, err := os.Stat(input)
	if err != nil {
		return domain.BatchRun{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if !st.IsDir() {
		return domain.BatchRun{}, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidRequest, input)
	}

	output := fsadapter.OutputRoot(input)
	files, err := fsadapter.Scan(input, e.config.Extensions, output)
	if err != nil {
		return domain.BatchRun{}, fmt.Errorf("scan input: %w", err)
	}

	info := domain.BatchRun{
		ID:         e.newID(),
		InputRoot:  input,
		OutputRoot: output,
		Filter:     req.Filter,
		Classifier: e.classifier.Name(),
		Files:      files,
		StartedAt:  e.now(),
	}

	if err := os.MkdirAll(output, 0o755); err != nil {
		return domain.BatchRun{}, fmt.Errorf("create output root: %w", err)
	}
	if err := fsadapter.WriteRunInfo(info); err != nil {
		return domain.BatchRun{}, fmt.Errorf("write run info: %w", err)
	}
	return info, nil
}

// execute processes the run's files in order. ctx is never cancelled; the
// run's cancellation flag is checked before each file.
func (e *Engine) execute(ctx context.Context, r *Run) {
	info := r.info
	start := time.Now()
	summary := domain.RunSummary{
		RunID:  info.ID,
		Input:  info.InputRoot,
		Output: info.OutputRoot,
		Filter: info.Filter,
	}

	e.journalDo("begin run", func() error { return e.journal.BeginRun(ctx, info) })

	for _, f := range info.Files {
		r.emit(domain.ProgressEvent{File: f.RelPath, Stage: domain.StageScanned})
	}

	p := &pipeline{
		run:      r,
		adapter:  classify.NewAdapter(e.classifier, e.logger, e.config.MinPoints),
		writer:   fsadapter.NewWriter(info.OutputRoot),
		resolver: e.resolver,
		logger:   e.logger,
	}

	var fatal error
	for i, f := range info.Files {
		if fatal != nil || r.Cancelled() {
			for _, rest := range info.Files[i:] {
				outcome := domain.FileOutcome{File: rest.RelPath, Stage: domain.StageNotProcessed}
				r.emit(domain.ProgressEvent{File: rest.RelPath, Stage: domain.StageNotProcessed})
				summary.Record(outcome.Stage)
				e.recordOutcome(ctx, info.ID, outcome)
			}
			break
		}

		outcome, err := p.process(ctx, f)
		summary.Record(outcome.Stage)
		e.recordOutcome(ctx, info.ID, outcome)

		var initErr *domain.ClassifierInitError
		if errors.As(err, &initErr) {
			fatal = initErr
			e.logger.Error("run aborted", ports.String("run", info.ID), ports.Err(initErr))
		}
	}

	summary.Cancelled = r.Cancelled()
	summary.Err = fatal
	summary.Duration = time.Since(start)

	e.journalDo("finish run", func() error { return e.journal.FinishRun(ctx, summary) })

	e.logger.Info("run complete",
		ports.String("run", info.ID),
		ports.Int("written", summary.Written),
		ports.Int("skipped_empty", summary.SkippedEmpty),
		ports.Int("failed", summary.Failed),
		ports.Int("not_processed", summary.NotProcessed),
		ports.Bool("cancelled", summary.Cancelled),
		ports.Duration("duration", summary.Duration),
	)

	e.mu.Lock()
	e.active = nil
	e.mu.Unlock()
	_ = e.lifecycle.TransitionTo(StateIdle, "run complete")

	r.finish(summary, fatal)
}

func (e *Engine) recordOutcome(ctx context.Context, runID string, outcome domain.FileOutcome) {
	e.journalDo("record outcome", func() error { return e.journal.RecordOutcome(ctx, runID, outcome) })
}

// journalDo runs fn against the journal, if any. Journal failures are logged
// and otherwise ignored.
func (e *Engine) journalDo(op string, fn func() error) {
	if e.journal == nil {
		return
	}
	if err := fn(); err != nil {
		e.logger.Warn("journal write failed", ports.String("op", op), ports.Err(err))
	}
}
