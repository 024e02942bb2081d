package msd

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/monetlab/monet/internal/domain"
)

func signature(pts []domain.XY) domain.Signature {
	s := domain.Signature{Length: len(pts)}
	copy(s.Points[:], pts)
	for i := len(pts); i < domain.SignatureLength; i++ {
		s.Points[i] = pts[len(pts)-1]
	}
	return s
}

func randomWalk(seed int64, n int) []domain.XY {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]domain.XY, n)
	for i := 1; i < n; i++ {
		pts[i] = domain.XY{X: pts[i-1].X + rng.NormFloat64(), Y: pts[i-1].Y + rng.NormFloat64()}
	}
	return pts
}

func ballistic(n int) []domain.XY {
	pts := make([]domain.XY, n)
	for i := range pts {
		pts[i] = domain.XY{X: float64(i), Y: 0.5 * float64(i)}
	}
	return pts
}

func stickSlip(n int) []domain.XY {
	pts := make([]domain.XY, n)
	for i := 1; i < n; i++ {
		pts[i] = pts[i-1]
		if i%5 == 0 {
			pts[i].X += 1
		}
	}
	return pts
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxLag = 10
	cfg.AlphaTolerance = 0.5
	return cfg
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(testConfig())
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	batch := []domain.Signature{
		signature(randomWalk(7, 300)),
		signature(ballistic(300)),
		signature(stickSlip(300)),
		signature(ballistic(3)),
		signature(make([]domain.XY, 50)),
	}
	want := []domain.MotionType{domain.Brownian, domain.FBM, domain.CTRW, domain.Unknown, domain.Unknown}

	got, err := c.Classify(context.Background(), batch)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("signature %d: label = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestClassifier_Alpha_Ballistic(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	alpha, ok := c.Alpha(ballistic(200))
	if !ok {
		t.Fatal("Alpha() ok = false")
	}
	if math.Abs(alpha-2) > 1e-9 {
		t.Errorf("alpha = %v, want 2", alpha)
	}
}

func TestClassifier_Alpha_IgnoresPadding(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	sig := signature(ballistic(40))
	alpha, ok := c.Alpha(sig.Observed())
	if !ok || math.Abs(alpha-2) > 1e-9 {
		t.Errorf("Alpha() = %v, %v, want 2 from observed points only", alpha, ok)
	}
}

func TestClassifier_Init_Validates(t *testing.T) {
	bad := []Config{
		{MaxLag: 1, AlphaTolerance: 0.2, TrapFraction: 0.3},
		{MaxLag: 10, AlphaTolerance: 0, TrapFraction: 0.3},
		{MaxLag: 10, AlphaTolerance: 0.2, TrapFraction: 1.5},
		{MaxLag: 10, AlphaTolerance: 0.2, TrapFraction: 0.3, ImmobileRatio: -1},
	}
	for _, cfg := range bad {
		if err := NewClassifier(cfg).Init(context.Background()); err == nil {
			t.Errorf("Init(%+v) expected error", cfg)
		}
	}
}
