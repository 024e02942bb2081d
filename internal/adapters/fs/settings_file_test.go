package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/monetlab/monet/internal/ports"
)

func TestSettingsFile_LoadMissing(t *testing.T) {
	s := NewSettingsFile(t.TempDir())

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != (ports.Settings{}) {
		t.Errorf("Load() = %+v, want zero settings", got)
	}
}

func TestSettingsFile_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := NewSettingsFile(dir)
	ctx := context.Background()

	want := ports.Settings{LastInput: "/data/exp1", FilterMode: "FBM"}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("settings dir has %d entries, want only the settings file", len(entries))
	}
}

func TestSettingsFile_Corrupt(t *testing.T) {
	dir := t.TempDir()
	s := NewSettingsFile(dir)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(context.Background()); err == nil {
		t.Error("Load() expected error for corrupt file")
	}
}
