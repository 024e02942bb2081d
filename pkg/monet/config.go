package monet

import (
	"errors"
	"fmt"
	"strings"
	"time"

	httpAdapter "github.com/monetlab/monet/internal/adapters/http"
	"github.com/monetlab/monet/internal/adapters/msd"
)

// Built-in classifier backends.
const (
	ClassifierHTTP = httpAdapter.BackendName
	ClassifierMSD  = msd.BackendName
)

// MSDConfig tunes the local mean squared displacement classifier.
type MSDConfig = msd.Config

// Config contains the engine configuration.
type Config struct {
	// Classifier selects the built-in backend: "http" or "msd".
	// Ignored when WithClassifier is used.
	Classifier string

	// ModelURL is the model server base URL for the http backend.
	ModelURL string

	// ModelName is the served model name for the http backend.
	ModelName string

	// HTTPTimeout bounds one request to the model server.
	HTTPTimeout time.Duration

	// MaxRetries bounds retries of a predict call on transient failures.
	MaxRetries int

	// MSD tunes the msd backend.
	MSD MSDConfig

	// Extensions are the file extensions picked up from the input folder.
	Extensions []string

	// MinTrackPoints is the fewest points a track needs to be classified.
	// Shorter tracks are labeled Unknown.
	MinTrackPoints int

	// JournalPath, when set, records run outcomes in a SQLite database.
	// Ignored when WithJournal is used.
	JournalPath string
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	if c.Classifier == "" {
		c.Classifier = ClassifierHTTP
	}
	if c.ModelName == "" {
		c.ModelName = "monet"
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.MSD == (MSDConfig{}) {
		c.MSD = msd.DefaultConfig()
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".csv"}
	}
	if c.MinTrackPoints == 0 {
		c.MinTrackPoints = 1
	}
}

// Validate checks the configuration and normalizes extensions.
func (c *Config) Validate() error {
	return c.validate(true)
}

// validate skips the backend settings when a custom classifier is in use.
func (c *Config) validate(backend bool) error {
	if backend {
		c.Classifier = strings.ToLower(strings.TrimSpace(c.Classifier))
		switch c.Classifier {
		case ClassifierHTTP:
			if c.ModelURL == "" {
				return errors.New("model url is required for the http classifier")
			}
			if c.ModelName == "" {
				return errors.New("model name is required for the http classifier")
			}
		case ClassifierMSD:
		default:
			return fmt.Errorf("unknown classifier %q", c.Classifier)
		}
	}
	if c.HTTPTimeout < 0 {
		return errors.New("http timeout must not be negative")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries must not be negative")
	}
	if c.MinTrackPoints < 1 {
		return errors.New("min track points must be at least 1")
	}
	exts := make([]string, len(c.Extensions))
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			return errors.New("empty file extension")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[i] = ext
	}
	c.Extensions = exts
	return nil
}
