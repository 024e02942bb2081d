package ports

import "context"

// Settings are the process-wide preferences of the front-end.
type Settings struct {
	LastInput  string `json:"last_input"`
	FilterMode string `json:"filter_mode"`
}

// SettingsStore persists Settings between sessions. It is read at process
// start and written at process exit; the engine never reads it mid-run.
type SettingsStore interface {
	// Load returns the stored settings, or zero Settings and nil error when
	// nothing has been stored yet.
	Load(ctx context.Context) (Settings, error)

	// Save persists settings atomically.
	Save(ctx context.Context, s Settings) error
}
