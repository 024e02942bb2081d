package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/monetlab/monet/internal/domain"
)

// OutputPrefix is prepended to the input folder name to form the output root.
const OutputPrefix = "MoNet_"

// RunInfoFileName is the run description written into the output root.
const RunInfoFileName = "processing_info.txt"

// OutputRoot returns the output directory for inputRoot: a sibling named
// MoNet_<input folder name>.
func OutputRoot(inputRoot string) string {
	clean := filepath.Clean(inputRoot)
	return filepath.Join(filepath.Dir(clean), OutputPrefix+filepath.Base(clean))
}

// Writer emits round-trip copies of input files restricted to kept tracks.
type Writer struct {
	root string
}

// NewWriter creates a Writer rooted at the run's output directory.
func NewWriter(outputRoot string) *Writer {
	return &Writer{root: outputRoot}
}

// Root returns the output root.
func (w *Writer) Root() string {
	return w.root
}

// OutputPath returns the mirrored destination for an input file:
// <root>/<rel dir>/<stem>_<filter><ext>.
func (w *Writer) OutputPath(rel string, filter domain.FilterConfig) string {
	dir := filepath.Dir(rel)
	base := filepath.Base(rel)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".csv"
	}
	return filepath.Join(w.root, dir, fmt.Sprintf("%s_%s%s", stem, filter, ext))
}

// SelectRows returns the indices of rows whose track id is in kept, in file
// order. Rows with a blank track id are never selected.
func SelectRows(raw *domain.RawFile, trackCol int, kept map[string]struct{}) []int {
	var rows []int
	for i, r := range raw.Rows {
		if trackCol >= len(r.Fields) {
			continue
		}
		id := strings.TrimSpace(r.Fields[trackCol])
		if id == "" {
			continue
		}
		if _, ok := kept[id]; ok {
			rows = append(rows, i)
		}
	}
	return rows
}

// Write writes the header and the rows of kept tracks, byte for byte, to the
// mirrored output path. When no row is selected nothing is written and
// written is false.
func (w *Writer) Write(raw *domain.RawFile, trackCol int, kept map[string]struct{}, filter domain.FilterConfig) (path string, written bool, err error) {
	rows := SelectRows(raw, trackCol, kept)
	if len(rows) == 0 {
		return "", false, nil
	}

	size := len(raw.Header.Raw)
	for _, i := range rows {
		size += len(raw.Rows[i].Raw)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, raw.Header.Raw...)
	for _, i := range rows {
		buf = append(buf, raw.Rows[i].Raw...)
	}

	path = w.OutputPath(raw.RelPath, filter)
	if err := writeAtomic(path, buf, 0o644); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// WriteRunInfo writes processing_info.txt describing the run.
func WriteRunInfo(run domain.BatchRun) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", run.InputRoot)
	fmt.Fprintf(&b, "Filter: %s\n", run.Filter)
	fmt.Fprintf(&b, "Model: %s\n", run.Classifier)
	fmt.Fprintf(&b, "Run: %s\n", run.ID)
	fmt.Fprintf(&b, "Started: %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Files: %d\n", len(run.Files))
	return writeAtomic(filepath.Join(run.OutputRoot, RunInfoFileName), []byte(b.String()), 0o644)
}

// writeAtomic writes data to a temp file in the destination directory and
// renames it into place.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".monet-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}

	// Atomic rename
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
