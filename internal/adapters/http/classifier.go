// Package http implements a classifier backend that talks to a model server
// over the TensorFlow Serving REST protocol.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/monetlab/monet/internal/domain"
	"github.com/monetlab/monet/internal/ports"
)

// BackendName identifies this backend in configuration and logs.
const BackendName = "http"

// Config holds the model server settings.
type Config struct {
	// URL is the model server base URL, e.g. http://localhost:8501.
	URL string

	// Model is the served model name.
	Model string

	// MaxRetries bounds retries of a predict call on transient failures.
	MaxRetries int

	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// Classifier implements ports.Classifier against a model server.
type Classifier struct {
	cfg    Config
	client ports.HTTPClient
	logger ports.Logger
}

// NewClassifier creates a model server classifier.
func NewClassifier(cfg Config, client ports.HTTPClient, logger ports.Logger) *Classifier {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = DefaultBackoffInitial
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = DefaultBackoffMax
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Classifier{cfg: cfg, client: client, logger: logger}
}

// Name returns the backend identifier.
func (c *Classifier) Name() string {
	return BackendName
}

type modelStatus struct {
	ModelVersionStatus []struct {
		Version string `json:"version"`
		State   string `json:"state"`
		Status  struct {
			ErrorCode    string `json:"error_code"`
			ErrorMessage string `json:"error_message"`
		} `json:"status"`
	} `json:"model_version_status"`
}

// Init checks that the model server has a version of the model loaded.
func (c *Classifier) Init(ctx context.Context) error {
	if c.cfg.URL == "" || c.cfg.Model == "" {
		return errors.New("model url and model name are required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelURL(""), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("query model status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("model server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var st modelStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return fmt.Errorf("decode model status: %w", err)
	}
	for _, v := range st.ModelVersionStatus {
		if v.State == "AVAILABLE" {
			c.logger.Info("model available",
				ports.String("model", c.cfg.Model),
				ports.String("version", v.Version),
			)
			return nil
		}
	}
	return fmt.Errorf("model %q has no AVAILABLE version", c.cfg.Model)
}

type predictRequest struct {
	Instances [][][1]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error"`
}

// Classify sends the whole batch in one predict call. Each instance is the
// sequence of x increments of a signature, the input the MoNet model was
// trained on.
func (c *Classifier) Classify(ctx context.Context, batch []domain.Signature) ([]domain.MotionType, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(predictRequest{Instances: Features(batch)})
	if err != nil {
		return nil, fmt.Errorf("marshal instances: %w", err)
	}

	var (
		pr      predictResponse
		attempt int
		b       = newBackoff(c.cfg.BackoffInitial, c.cfg.BackoffMax)
	)
	for {
		retryable, err := c.predict(ctx, body, &pr)
		if err == nil {
			break
		}
		if !retryable || attempt >= c.cfg.MaxRetries {
			return nil, err
		}
		attempt++
		c.logger.Warn("predict failed, retrying",
			ports.Err(err),
			ports.Int("attempt", attempt),
			ports.Duration("backoff", b.Current()),
		)
		if werr := b.Wait(ctx); werr != nil {
			return nil, err
		}
	}

	if len(pr.Predictions) != len(batch) {
		return nil, fmt.Errorf("model returned %d predictions for %d instances", len(pr.Predictions), len(batch))
	}

	labels := make([]domain.MotionType, len(batch))
	for i, p := range pr.Predictions {
		labels[i] = Argmax(p)
	}
	return labels, nil
}

// predict performs one predict call. The bool reports whether a failure is
// worth retrying.
func (c *Classifier) predict(ctx context.Context, body []byte, out *predictResponse) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL(":predict"), bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(resp.Body)
		return resp.StatusCode >= 500, fmt.Errorf("model server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	*out = predictResponse{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode predictions: %w", err)
	}
	if out.Error != "" {
		return false, fmt.Errorf("model server: %s", out.Error)
	}
	return false, nil
}

func (c *Classifier) modelURL(verb string) string {
	return c.cfg.URL + "/v1/models/" + url.PathEscape(c.cfg.Model) + verb
}

// Features converts signatures to model instances: the first differences of
// the x coordinate, one channel per step.
func Features(batch []domain.Signature) [][][1]float64 {
	out := make([][][1]float64, len(batch))
	for i := range batch {
		pts := batch[i].Points
		steps := make([][1]float64, len(pts)-1)
		for j := 1; j < len(pts); j++ {
			steps[j-1] = [1]float64{pts[j].X - pts[j-1].X}
		}
		out[i] = steps
	}
	return out
}

// Argmax maps class probabilities to a motion type. Rows of the wrong width
// or with non-finite values yield Unknown.
func Argmax(probs []float64) domain.MotionType {
	if len(probs) != len(domain.ClassOrder) {
		return domain.Unknown
	}
	best := -1
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return domain.Unknown
		}
		if best < 0 || p > probs[best] {
			best = i
		}
	}
	return domain.ClassOrder[best]
}

var _ ports.Classifier = (*Classifier)(nil)
