package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestApplyFileConfig(t *testing.T) {
	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Input:             "/data/exp",
				Filter:            "CTRW",
				Classifier:        "http",
				ModelURL:          "http://model:8501",
				ModelName:         "monet",
				HTTPTimeout:       "1m",
				MaxRetries:        2,
				Extensions:        []string{".csv"},
				MinTrackPoints:    3,
				Journal:           "journal.db",
				SettingsDir:       "/settings",
				LogLevel:          "warn",
				Debounce:          "5s",
				MSDMaxLag:         12,
				MSDAlphaTolerance: 0.2,
				MSDTrapFraction:   0.5,
			},
			changed: map[string]bool{},
			expected: Config{
				Input:             "/data/exp",
				Filter:            "CTRW",
				Classifier:        "http",
				ModelURL:          "http://model:8501",
				ModelName:         "monet",
				HTTPTimeout:       time.Minute,
				MaxRetries:        2,
				Extensions:        []string{".csv"},
				MinTrackPoints:    3,
				Journal:           "journal.db",
				SettingsDir:       "/settings",
				LogLevel:          "warn",
				Debounce:          5 * time.Second,
				MSDMaxLag:         12,
				MSDAlphaTolerance: 0.2,
				MSDTrapFraction:   0.5,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Filter:     "FBM",
				Classifier: "msd",
			},
			changed:  map[string]bool{"filter": true},
			initial:  Config{Filter: "Brownian", Classifier: "http"},
			expected: Config{Filter: "Brownian", Classifier: "msd"},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{Debounce: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name:       "empty values keep defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.TrimSpace(`
input = "/data/exp"
filter = "Brownian"
classifier = "msd"
extensions = [".csv", ".tsv"]
min_track_points = 3
debounce = "3s"
msd_trap_fraction = 0.4
`)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	want := FileConfig{
		Input:           "/data/exp",
		Filter:          "Brownian",
		Classifier:      "msd",
		Extensions:      []string{".csv", ".tsv"},
		MinTrackPoints:  3,
		Debounce:        "3s",
		MSDTrapFraction: 0.4,
	}
	if diff := cmp.Diff(want, fc); diff != "" {
		t.Errorf("file config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFileConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("input = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(bad); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("FileExists() = false for existing file")
	}
	if FileExists(filepath.Join(dir, "absent")) {
		t.Error("FileExists() = true for missing file")
	}
}
