package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/monetlab/monet/internal/domain"
	"github.com/monetlab/monet/internal/ports"
)

type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// recorder is a TriggerFunc that reports each call and returns queued errors.
type recorder struct {
	mu     sync.Mutex
	errs   []error
	called chan struct{}
}

func newRecorder(errs ...error) *recorder {
	return &recorder{errs: errs, called: make(chan struct{}, 16)}
}

func (r *recorder) trigger(ctx context.Context) error {
	r.mu.Lock()
	var err error
	if len(r.errs) > 0 {
		err, r.errs = r.errs[0], r.errs[1:]
	}
	r.mu.Unlock()
	r.called <- struct{}{}
	return err
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.called:
	case <-time.After(3 * time.Second):
		t.Fatal("trigger not called")
	}
}

func (r *recorder) none(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case <-r.called:
		t.Fatal("unexpected trigger")
	case <-time.After(d):
	}
}

func startWatcher(t *testing.T, cfg Config, rec *recorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	w := New(cfg, rec.trigger, &mockLogger{})

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})
	// Give the watcher time to register the tree.
	time.Sleep(50 * time.Millisecond)
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("Trajectory,Frame,x,y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_TriggersOnNewTabularFile(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder()
	startWatcher(t, Config{Root: root, Debounce: 20 * time.Millisecond}, rec)

	writeFile(t, filepath.Join(root, "notes.txt"))
	rec.none(t, 150*time.Millisecond)

	writeFile(t, filepath.Join(root, "a.csv"))
	rec.wait(t)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder()
	startWatcher(t, Config{Root: root, Debounce: 150 * time.Millisecond}, rec)

	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		writeFile(t, filepath.Join(root, name))
	}
	rec.wait(t)
	rec.none(t, 300*time.Millisecond)
}

func TestWatcher_PicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder()
	startWatcher(t, Config{Root: root, Debounce: 20 * time.Millisecond}, rec)

	sub := filepath.Join(root, "day2")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(sub, "cell.csv"))
	rec.wait(t)
}

func TestWatcher_RetriesWhenBusy(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder(domain.ErrBusy)
	startWatcher(t, Config{Root: root, Debounce: 20 * time.Millisecond, RetryDelay: 20 * time.Millisecond}, rec)

	writeFile(t, filepath.Join(root, "a.csv"))
	rec.wait(t)
	rec.wait(t)
}

func TestWatcher_IgnoresExcludedAndHidden(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "MoNet_out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	startWatcher(t, Config{Root: root, Exclude: []string{out}, Debounce: 20 * time.Millisecond}, rec)

	writeFile(t, filepath.Join(out, "a_All.csv"))
	writeFile(t, filepath.Join(root, ".monet-123.tmp.csv"))
	rec.none(t, 150*time.Millisecond)
}

func TestWatcher_RunOnStart(t *testing.T) {
	rec := newRecorder()
	startWatcher(t, Config{Root: t.TempDir(), RunOnStart: true, Debounce: time.Hour}, rec)
	rec.wait(t)
}

func TestWatcher_MissingRoot(t *testing.T) {
	w := New(Config{Root: filepath.Join(t.TempDir(), "missing")}, newRecorder().trigger, &mockLogger{})
	if err := w.Run(context.Background()); err == nil {
		t.Error("Run() expected error for missing root")
	}
}
