package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/monetlab/monet/internal/ports"
)

const settingsFileName = "app_settings.json"

// SettingsFile implements ports.SettingsStore using a JSON file.
type SettingsFile struct {
	dir string
}

// NewSettingsFile creates a SettingsFile in dir.
func NewSettingsFile(dir string) *SettingsFile {
	return &SettingsFile{dir: dir}
}

// Load retrieves the saved settings.
// Returns empty settings and nil error if no settings file exists.
func (s *SettingsFile) Load(ctx context.Context) (ports.Settings, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return ports.Settings{}, nil
		}
		return ports.Settings{}, err
	}

	var settings ports.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return ports.Settings{}, err
	}
	return settings, nil
}

// Save persists the settings atomically.
func (s *SettingsFile) Save(ctx context.Context, settings ports.Settings) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(s.Path(), data, 0o600)
}

// Path returns the full path to the settings file.
func (s *SettingsFile) Path() string {
	return filepath.Join(s.dir, settingsFileName)
}

var _ ports.SettingsStore = (*SettingsFile)(nil)
