package ports

import (
	"context"

	"github.com/monetlab/monet/internal/domain"
)

// Classifier is the external motion classification capability.
// The engine treats its internals as opaque.
type Classifier interface {
	// Name identifies the backend in logs and run metadata.
	Name() string

	// Init prepares the backend (loads or checks the model). It is called
	// once per run, before the first Classify. A non-nil error aborts the run.
	Init(ctx context.Context) error

	// Classify labels each signature. The result must be index-aligned with
	// the input and have the same length. A backend that cannot label one
	// item returns domain.Unknown for it rather than an error.
	Classify(ctx context.Context, batch []domain.Signature) ([]domain.MotionType, error)
}
