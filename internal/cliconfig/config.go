package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/monetlab/monet/internal/domain"
)

// Classifier backends selectable from the CLI.
const (
	ClassifierHTTP = "http"
	ClassifierMSD  = "msd"
)

// Defaults for the model server backend.
const (
	DefaultModelURL  = "http://localhost:8501"
	DefaultModelName = "monet"
)

// Config holds CLI configuration for monet.
type Config struct {
	Input  string
	Filter string

	Classifier  string
	ModelURL    string
	ModelName   string
	HTTPTimeout time.Duration
	MaxRetries  int

	Extensions     []string
	MinTrackPoints int

	Journal     string
	SettingsDir string
	LogLevel    string
	Debounce    time.Duration

	MSDMaxLag         int
	MSDAlphaTolerance float64
	MSDTrapFraction   float64
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Filter:            domain.FilterAll.String(),
		Classifier:        ClassifierHTTP,
		ModelURL:          DefaultModelURL,
		ModelName:         DefaultModelName,
		HTTPTimeout:       30 * time.Second,
		MaxRetries:        3,
		Extensions:        []string{".csv"},
		MinTrackPoints:    1,
		SettingsDir:       "", // Derived from the home directory during Validate
		LogLevel:          "info",
		Debounce:          2 * time.Second,
		MSDMaxLag:         30,
		MSDAlphaTolerance: 0.25,
		MSDTrapFraction:   0.3,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
// Input is not checked here; commands resolve it from arguments and the
// settings store.
func (c *Config) Validate() error {
	if _, err := domain.ParseFilterConfig(c.Filter); err != nil {
		return err
	}

	c.Classifier = strings.ToLower(strings.TrimSpace(c.Classifier))
	switch c.Classifier {
	case ClassifierHTTP:
		if c.ModelURL == "" {
			return fmt.Errorf("model-url is required for the http classifier")
		}
		if c.ModelName == "" {
			return fmt.Errorf("model-name is required for the http classifier")
		}
		c.ModelURL = strings.TrimRight(c.ModelURL, "/")
	case ClassifierMSD:
	default:
		return fmt.Errorf("unknown classifier %q (want %s or %s)", c.Classifier, ClassifierHTTP, ClassifierMSD)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	if c.MinTrackPoints < 1 {
		return fmt.Errorf("min track points must be at least 1")
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive")
	}

	if len(c.Extensions) == 0 {
		return fmt.Errorf("at least one extension is required")
	}
	for i, e := range c.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			return fmt.Errorf("empty extension")
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		c.Extensions[i] = e
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	if c.SettingsDir == "" {
		c.SettingsDir = DefaultHomeDir()
	}
	return nil
}

// FilterConfig returns the parsed filter. Call after Validate.
func (c *Config) FilterConfig() domain.FilterConfig {
	f, _ := domain.ParseFilterConfig(c.Filter)
	return f
}

// Level returns the parsed log level, info when unset or invalid.
func (c *Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// DefaultHomeDir returns ~/.monet, or .monet when the home directory is
// unknown.
func DefaultHomeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".monet")
	}
	return ".monet"
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a list value if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i < 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setListFromString splits a comma-separated list and sets the destination.
func (s *configSetter) setListFromString(flag, value string, dst *[]string) {
	if value == "" || s.changed[flag] {
		return
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}
