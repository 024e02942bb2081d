// Package classify adapts an external classifier backend to the engine: one
// lazy initialization per run, one batched call per file, and Unknown labels
// for tracks that cannot be classified.
package classify

import (
	"context"
	"fmt"
	"sync"

	"github.com/monetlab/monet/internal/domain"
	"github.com/monetlab/monet/internal/ports"
)

// Warning describes a track that was labeled Unknown.
type Warning struct {
	TrackID string
	Reason  string
}

func (w Warning) String() string {
	return fmt.Sprintf("track %s: %s", w.TrackID, w.Reason)
}

// Adapter wraps a ports.Classifier for the duration of one run.
type Adapter struct {
	backend   ports.Classifier
	logger    ports.Logger
	minPoints int

	mu      sync.Mutex
	inited  bool
	initErr error
	calls   int
}

// NewAdapter creates an Adapter. Tracks with fewer than minPoints points are
// labeled Unknown without reaching the backend; values below 1 mean 1.
func NewAdapter(backend ports.Classifier, logger ports.Logger, minPoints int) *Adapter {
	if minPoints < 1 {
		minPoints = 1
	}
	return &Adapter{backend: backend, logger: logger, minPoints: minPoints}
}

// Backend returns the backend name.
func (a *Adapter) Backend() string {
	return a.backend.Name()
}

// Init initializes the backend on first call. Later calls return the first
// outcome; a failed initialization is not retried. The error is a
// *domain.ClassifierInitError.
func (a *Adapter) Init(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.inited {
		return a.initErr
	}
	a.inited = true

	a.logger.Info("initializing classifier", ports.String("backend", a.backend.Name()))
	if err := a.backend.Init(ctx); err != nil {
		a.initErr = &domain.ClassifierInitError{Backend: a.backend.Name(), Err: err}
		a.logger.Error("classifier initialization failed", ports.Err(err))
	}
	return a.initErr
}

// Calls returns the number of backend Classify calls made.
func (a *Adapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Classify labels sigs, index-aligned. Malformed signatures are labeled
// Unknown with a warning and left out of the backend call; the rest are sent
// as a single batch. The returned error is either a *domain.ClassifierInitError
// (fatal to the run) or a file-scoped backend failure.
func (a *Adapter) Classify(ctx context.Context, sigs []domain.Signature) ([]domain.MotionType, []Warning, error) {
	if err := a.Init(ctx); err != nil {
		return nil, nil, err
	}

	labels := make([]domain.MotionType, len(sigs))
	var warnings []Warning
	batch := make([]domain.Signature, 0, len(sigs))
	positions := make([]int, 0, len(sigs))

	for i := range sigs {
		if reason := a.check(&sigs[i]); reason != "" {
			labels[i] = domain.Unknown
			warnings = append(warnings, Warning{TrackID: sigs[i].TrackID, Reason: reason})
			continue
		}
		batch = append(batch, sigs[i])
		positions = append(positions, i)
	}

	if len(batch) == 0 {
		a.logWarnings(warnings)
		return labels, warnings, nil
	}

	a.mu.Lock()
	a.calls++
	a.mu.Unlock()

	out, err := a.backend.Classify(ctx, batch)
	if err != nil {
		return nil, nil, fmt.Errorf("classifier %s: %w", a.backend.Name(), err)
	}
	if len(out) != len(batch) {
		return nil, nil, fmt.Errorf("classifier %s: returned %d labels for %d signatures", a.backend.Name(), len(out), len(batch))
	}

	for j, pos := range positions {
		label := out[j]
		switch label {
		case domain.Brownian, domain.FBM, domain.CTRW:
		default:
			label = domain.Unknown
			warnings = append(warnings, Warning{TrackID: sigs[pos].TrackID, Reason: "classifier returned no confident label"})
		}
		labels[pos] = label
	}

	a.logWarnings(warnings)
	return labels, warnings, nil
}

func (a *Adapter) logWarnings(warnings []Warning) {
	for _, w := range warnings {
		a.logger.Warn("track labeled Unknown",
			ports.String("track", w.TrackID),
			ports.String("reason", w.Reason),
		)
	}
}

func (a *Adapter) check(s *domain.Signature) string {
	switch {
	case s.Length < 1:
		return "empty track"
	case s.Length < a.minPoints:
		return fmt.Sprintf("track has %d points, fewer than %d", s.Length, a.minPoints)
	case !s.Finite():
		return "non-numeric or non-finite coordinates"
	}
	return ""
}
