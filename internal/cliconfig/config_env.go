package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (MONET_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("input", os.Getenv("MONET_INPUT"), &cfg.Input)
	s.setString("filter", os.Getenv("MONET_FILTER"), &cfg.Filter)
	s.setString("classifier", os.Getenv("MONET_CLASSIFIER"), &cfg.Classifier)
	s.setString("model-url", os.Getenv("MONET_MODEL_URL"), &cfg.ModelURL)
	s.setString("model-name", os.Getenv("MONET_MODEL_NAME"), &cfg.ModelName)
	s.setString("journal", os.Getenv("MONET_JOURNAL"), &cfg.Journal)
	s.setString("settings-dir", os.Getenv("MONET_SETTINGS_DIR"), &cfg.SettingsDir)
	s.setString("log-level", os.Getenv("MONET_LOG_LEVEL"), &cfg.LogLevel)
	s.setListFromString("ext", os.Getenv("MONET_EXTENSIONS"), &cfg.Extensions)

	if err := s.setDuration("timeout", os.Getenv("MONET_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv("MONET_DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}

	if err := s.setIntFromString("max-retries", os.Getenv("MONET_MAX_RETRIES"), &cfg.MaxRetries); err != nil {
		return err
	}
	if err := s.setIntFromString("min-track-points", os.Getenv("MONET_MIN_TRACK_POINTS"), &cfg.MinTrackPoints); err != nil {
		return err
	}
	if err := s.setIntFromString("msd-max-lag", os.Getenv("MONET_MSD_MAX_LAG"), &cfg.MSDMaxLag); err != nil {
		return err
	}

	if err := s.setFloatFromString("msd-alpha-tolerance", os.Getenv("MONET_MSD_ALPHA_TOLERANCE"), &cfg.MSDAlphaTolerance); err != nil {
		return err
	}
	if err := s.setFloatFromString("msd-trap-fraction", os.Getenv("MONET_MSD_TRAP_FRACTION"), &cfg.MSDTrapFraction); err != nil {
		return err
	}

	return nil
}
