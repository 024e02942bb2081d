package ports

import (
	"context"

	"github.com/monetlab/monet/internal/domain"
)

// Journal persists the outcome log of batch runs.
// Implementations should be safe to call from the run's worker goroutine.
type Journal interface {
	// BeginRun records a newly started run.
	BeginRun(ctx context.Context, run domain.BatchRun) error

	// RecordOutcome records the final state of one file.
	RecordOutcome(ctx context.Context, runID string, outcome domain.FileOutcome) error

	// FinishRun records the run summary.
	FinishRun(ctx context.Context, summary domain.RunSummary) error
}
