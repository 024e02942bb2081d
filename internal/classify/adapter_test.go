package classify

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/monetlab/monet/internal/domain"
	"github.com/monetlab/monet/internal/ports"
)

type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// fakeBackend labels signatures by their first X coordinate and records calls.
type fakeBackend struct {
	initErr   error
	initCalls int
	batches   [][]domain.Signature
	short     bool
	err       error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Init(ctx context.Context) error {
	f.initCalls++
	return f.initErr
}

func (f *fakeBackend) Classify(ctx context.Context, batch []domain.Signature) ([]domain.MotionType, error) {
	f.batches = append(f.batches, batch)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.MotionType, len(batch))
	for i, s := range batch {
		out[i] = domain.MotionType(int(s.Points[0].X))
	}
	if f.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func sig(id string, label domain.MotionType, length int) domain.Signature {
	s := domain.Signature{TrackID: id, Length: length}
	for i := range s.Points {
		s.Points[i] = domain.XY{X: float64(label), Y: 0}
	}
	return s
}

func TestAdapter_Classify_IndexAligned(t *testing.T) {
	backend := &fakeBackend{}
	a := NewAdapter(backend, mockLogger{}, 1)

	nan := sig("bad", domain.Brownian, 10)
	nan.Points[5].Y = math.NaN()

	sigs := []domain.Signature{
		sig("a", domain.CTRW, 10),
		nan,
		sig("b", domain.Brownian, 10),
		sig("c", domain.Unknown, 10),
		sig("d", domain.FBM, 10),
	}

	labels, warnings, err := a.Classify(context.Background(), sigs)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	want := []domain.MotionType{domain.CTRW, domain.Unknown, domain.Brownian, domain.Unknown, domain.FBM}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if len(backend.batches) != 1 {
		t.Fatalf("backend calls = %d, want 1", len(backend.batches))
	}
	if len(backend.batches[0]) != 4 {
		t.Errorf("batch size = %d, want malformed signature excluded", len(backend.batches[0]))
	}
	if len(warnings) != 2 || warnings[0].TrackID != "bad" || warnings[1].TrackID != "c" {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestAdapter_Classify_MinPoints(t *testing.T) {
	backend := &fakeBackend{}
	a := NewAdapter(backend, mockLogger{}, 3)

	labels, warnings, err := a.Classify(context.Background(), []domain.Signature{sig("short", domain.FBM, 2)})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if labels[0] != domain.Unknown {
		t.Errorf("label = %v, want Unknown", labels[0])
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want 1", warnings)
	}
	if len(backend.batches) != 0 {
		t.Errorf("backend called %d times, want 0 for an empty batch", len(backend.batches))
	}
}

func TestAdapter_Init_Once(t *testing.T) {
	backend := &fakeBackend{}
	a := NewAdapter(backend, mockLogger{}, 1)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := a.Classify(ctx, []domain.Signature{sig("a", domain.FBM, 5)}); err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
	}
	if backend.initCalls != 1 {
		t.Errorf("Init calls = %d, want 1", backend.initCalls)
	}
	if a.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3", a.Calls())
	}
}

func TestAdapter_Init_FailureIsSticky(t *testing.T) {
	cause := errors.New("model missing")
	backend := &fakeBackend{initErr: cause}
	a := NewAdapter(backend, mockLogger{}, 1)
	ctx := context.Background()

	_, _, err := a.Classify(ctx, []domain.Signature{sig("a", domain.FBM, 5)})
	var initErr *domain.ClassifierInitError
	if !errors.As(err, &initErr) {
		t.Fatalf("Classify() error = %v, want *ClassifierInitError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error does not wrap cause: %v", err)
	}

	if err := a.Init(ctx); !errors.As(err, &initErr) {
		t.Errorf("second Init() error = %v, want cached init error", err)
	}
	if backend.initCalls != 1 {
		t.Errorf("Init calls = %d, want 1", backend.initCalls)
	}
	if len(backend.batches) != 0 {
		t.Errorf("backend Classify called after failed init")
	}
}

func TestAdapter_Classify_BackendErrors(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
	}{
		{"backend error", &fakeBackend{err: errors.New("boom")}},
		{"wrong result length", &fakeBackend{short: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(tt.backend, mockLogger{}, 1)
			_, _, err := a.Classify(context.Background(), []domain.Signature{sig("a", domain.FBM, 5), sig("b", domain.CTRW, 5)})
			if err == nil {
				t.Fatal("Classify() expected error")
			}
			var initErr *domain.ClassifierInitError
			if errors.As(err, &initErr) {
				t.Errorf("backend failure reported as init error: %v", err)
			}
		})
	}
}
