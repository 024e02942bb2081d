package fs

import (
	iofs "io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/monetlab/monet/internal/domain"
)

// DefaultExtensions are the tabular file extensions picked up by Scan.
var DefaultExtensions = []string{".csv"}

// Scan walks root recursively and returns the tabular files under it, sorted
// by relative path. Directories in exclude are not descended into. Hidden
// files (leading dot) are ignored, which also skips the writer's temp files.
func Scan(root string, exts []string, exclude ...string) ([]domain.InputFile, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[filepath.Clean(e)] = true
	}

	var files []domain.InputFile
	err := filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skip[filepath.Clean(path)] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !HasExtension(d.Name(), exts) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = d.Name()
		}
		files = append(files, domain.InputFile{Path: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// HasExtension reports whether name ends with one of exts, ignoring case.
func HasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
