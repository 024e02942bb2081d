// Package msd implements an offline classifier backend based on the mean
// squared displacement of a track.
//
// The anomalous diffusion exponent alpha is the slope of log MSD against log
// lag. A track that spends a large share of its steps immobile is labeled
// CTRW; otherwise alpha close to 1 means Brownian and anything else FBM. It is
// a heuristic for running without a model server, not a substitute for the
// trained network.
package msd

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/monetlab/monet/internal/domain"
	"github.com/monetlab/monet/internal/ports"
)

// BackendName identifies this backend in configuration and logs.
const BackendName = "msd"

// Config tunes the heuristic.
type Config struct {
	// MaxLag is the largest lag used in the fit. Lags never exceed a quarter
	// of the observed points.
	MaxLag int

	// AlphaTolerance is the largest |alpha-1| still considered Brownian.
	AlphaTolerance float64

	// TrapFraction is the share of immobile steps from which a track is CTRW.
	TrapFraction float64

	// ImmobileRatio defines an immobile step as one shorter than this
	// fraction of the mean step length.
	ImmobileRatio float64

	// MinPoints is the fewest observed points needed for a label.
	MinPoints int
}

// DefaultConfig returns the default heuristic settings.
func DefaultConfig() Config {
	return Config{
		MaxLag:         30,
		AlphaTolerance: 0.25,
		TrapFraction:   0.3,
		ImmobileRatio:  0.05,
		MinPoints:      8,
	}
}

// Classifier implements ports.Classifier with the MSD heuristic.
type Classifier struct {
	cfg Config
}

// NewClassifier creates an MSD classifier.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Name returns the backend identifier.
func (c *Classifier) Name() string {
	return BackendName
}

// Init validates the configuration.
func (c *Classifier) Init(ctx context.Context) error {
	switch {
	case c.cfg.MaxLag < 2:
		return fmt.Errorf("max lag must be at least 2, got %d", c.cfg.MaxLag)
	case c.cfg.AlphaTolerance <= 0:
		return fmt.Errorf("alpha tolerance must be positive, got %v", c.cfg.AlphaTolerance)
	case c.cfg.TrapFraction <= 0 || c.cfg.TrapFraction > 1:
		return fmt.Errorf("trap fraction must be in (0, 1], got %v", c.cfg.TrapFraction)
	case c.cfg.ImmobileRatio < 0:
		return fmt.Errorf("immobile ratio must not be negative, got %v", c.cfg.ImmobileRatio)
	}
	return nil
}

// Classify labels each signature independently.
func (c *Classifier) Classify(ctx context.Context, batch []domain.Signature) ([]domain.MotionType, error) {
	out := make([]domain.MotionType, len(batch))
	for i := range batch {
		out[i] = c.label(batch[i].Observed())
	}
	return out, nil
}

func (c *Classifier) label(pts []domain.XY) domain.MotionType {
	minPoints := c.cfg.MinPoints
	if minPoints < 4 {
		minPoints = 4
	}
	if len(pts) < minPoints {
		return domain.Unknown
	}

	steps := make([]float64, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		steps[i-1] = math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	mean := stat.Mean(steps, nil)
	if mean == 0 || math.IsNaN(mean) {
		return domain.Unknown
	}

	immobile := 0
	for _, s := range steps {
		if s <= c.cfg.ImmobileRatio*mean {
			immobile++
		}
	}
	if float64(immobile)/float64(len(steps)) >= c.cfg.TrapFraction {
		return domain.CTRW
	}

	alpha, ok := c.Alpha(pts)
	if !ok {
		return domain.Unknown
	}
	if math.Abs(alpha-1) > c.cfg.AlphaTolerance {
		return domain.FBM
	}
	return domain.Brownian
}

// Alpha fits the anomalous diffusion exponent of pts. ok is false when there
// are too few usable lags.
func (c *Classifier) Alpha(pts []domain.XY) (alpha float64, ok bool) {
	maxLag := c.cfg.MaxLag
	if q := len(pts) / 4; q < maxLag {
		maxLag = q
	}
	if maxLag < 2 {
		maxLag = 2
	}
	if maxLag >= len(pts) {
		return 0, false
	}

	var logLag, logMSD []float64
	sq := make([]float64, 0, len(pts))
	for lag := 1; lag <= maxLag; lag++ {
		sq = sq[:0]
		for i := lag; i < len(pts); i++ {
			dx := pts[i].X - pts[i-lag].X
			dy := pts[i].Y - pts[i-lag].Y
			sq = append(sq, dx*dx+dy*dy)
		}
		m := stat.Mean(sq, nil)
		if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			continue
		}
		logLag = append(logLag, math.Log(float64(lag)))
		logMSD = append(logMSD, math.Log(m))
	}
	if len(logLag) < 2 {
		return 0, false
	}

	_, slope := stat.LinearRegression(logLag, logMSD, nil, false)
	return slope, true
}

var _ ports.Classifier = (*Classifier)(nil)
