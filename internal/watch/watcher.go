// Package watch triggers batch runs when tabular files appear or change under
// an input tree.
package watch

import (
	"context"
	"errors"
	iofs "io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	fsadapter "github.com/monetlab/monet/internal/adapters/fs"
	"github.com/monetlab/monet/internal/domain"
	"github.com/monetlab/monet/internal/ports"
)

// TriggerFunc starts a run. Returning domain.ErrBusy reschedules the trigger.
type TriggerFunc func(ctx context.Context) error

// Config holds watcher options.
type Config struct {
	// Root is the input tree to watch.
	Root string

	// Extensions are the tabular file extensions that trigger a run.
	// Empty means fs.DefaultExtensions.
	Extensions []string

	// Exclude lists directories that are never watched, such as the output
	// root.
	Exclude []string

	// Debounce is the quiet period after the last change before triggering.
	// Default: 2 seconds
	Debounce time.Duration

	// RetryDelay is the delay before retrying a trigger that found the
	// engine busy. Default: Debounce
	RetryDelay time.Duration

	// RunOnStart triggers once when watching begins.
	RunOnStart bool
}

// Watcher watches a directory tree and calls its trigger after changes.
type Watcher struct {
	cfg     Config
	trigger TriggerFunc
	logger  ports.Logger

	mu       sync.Mutex
	debounce *time.Timer
	stopped  bool
}

// New creates a Watcher.
func New(cfg Config, trigger TriggerFunc, logger ports.Logger) *Watcher {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = fsadapter.DefaultExtensions
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = cfg.Debounce
	}
	return &Watcher{cfg: cfg, trigger: trigger, logger: logger}
}

// Run watches until ctx is done. It returns an error only if watching cannot
// start.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	defer w.stop()

	if _, err := w.addTree(watcher, w.cfg.Root); err != nil {
		return err
	}

	w.logger.Info("watching input", ports.String("root", w.cfg.Root), ports.Duration("debounce", w.cfg.Debounce))
	if w.cfg.RunOnStart {
		w.schedule(ctx, 0)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", ports.Err(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	if hidden(event.Name) || w.excluded(event.Name) {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		// A new directory may already hold files by the time it is added.
		found, err := w.addTree(watcher, event.Name)
		if err != nil {
			w.logger.Warn("failed to watch new directory", ports.String("path", event.Name), ports.Err(err))
		}
		if found {
			w.schedule(ctx, w.cfg.Debounce)
			return
		}
	}

	if fsadapter.HasExtension(event.Name, w.cfg.Extensions) {
		w.logger.Debug("input changed", ports.String("path", event.Name), ports.String("op", event.Op.String()))
		w.schedule(ctx, w.cfg.Debounce)
	}
}

// addTree watches dir and every directory below it. It reports whether a
// matching file was seen. A path that is not a directory is ignored.
func (w *Watcher) addTree(watcher *fsnotify.Watcher, dir string) (bool, error) {
	found := false
	err := filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			if path != dir && !hidden(path) && fsadapter.HasExtension(path, w.cfg.Extensions) {
				found = true
			}
			return nil
		}
		if path != w.cfg.Root && (hidden(path) || w.excluded(path)) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	return found, err
}

func (w *Watcher) schedule(ctx context.Context, delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(delay, func() {
		w.fire(ctx)
	})
}

func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	err := w.trigger(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrBusy):
		w.logger.Info("engine busy, retrying", ports.Duration("delay", w.cfg.RetryDelay))
		w.schedule(ctx, w.cfg.RetryDelay)
	default:
		w.logger.Error("triggered run failed", ports.Err(err))
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.debounce != nil {
		w.debounce.Stop()
	}
}

func (w *Watcher) excluded(path string) bool {
	clean := filepath.Clean(path)
	for _, e := range w.cfg.Exclude {
		if clean == filepath.Clean(e) {
			return true
		}
	}
	return false
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
