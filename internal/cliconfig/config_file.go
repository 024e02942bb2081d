package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Input             string   `toml:"input"`
	Filter            string   `toml:"filter"`
	Classifier        string   `toml:"classifier"`
	ModelURL          string   `toml:"model_url"`
	ModelName         string   `toml:"model_name"`
	HTTPTimeout       string   `toml:"http_timeout"`
	MaxRetries        int      `toml:"max_retries"`
	Extensions        []string `toml:"extensions"`
	MinTrackPoints    int      `toml:"min_track_points"`
	Journal           string   `toml:"journal"`
	SettingsDir       string   `toml:"settings_dir"`
	LogLevel          string   `toml:"log_level"`
	Debounce          string   `toml:"debounce"`
	MSDMaxLag         int      `toml:"msd_max_lag"`
	MSDAlphaTolerance float64  `toml:"msd_alpha_tolerance"`
	MSDTrapFraction   float64  `toml:"msd_trap_fraction"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.monet/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".monet", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("input", fc.Input, &cfg.Input)
	s.setString("filter", fc.Filter, &cfg.Filter)
	s.setString("classifier", fc.Classifier, &cfg.Classifier)
	s.setString("model-url", fc.ModelURL, &cfg.ModelURL)
	s.setString("model-name", fc.ModelName, &cfg.ModelName)
	s.setString("journal", fc.Journal, &cfg.Journal)
	s.setString("settings-dir", fc.SettingsDir, &cfg.SettingsDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setStrings("ext", fc.Extensions, &cfg.Extensions)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("debounce", fc.Debounce, &cfg.Debounce); err != nil {
		return err
	}

	s.setInt("max-retries", fc.MaxRetries, &cfg.MaxRetries)
	s.setInt("min-track-points", fc.MinTrackPoints, &cfg.MinTrackPoints)
	s.setInt("msd-max-lag", fc.MSDMaxLag, &cfg.MSDMaxLag)

	s.setFloat("msd-alpha-tolerance", fc.MSDAlphaTolerance, &cfg.MSDAlphaTolerance)
	s.setFloat("msd-trap-fraction", fc.MSDTrapFraction, &cfg.MSDTrapFraction)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
