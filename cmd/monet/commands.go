package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	fsadapter "github.com/monetlab/monet/internal/adapters/fs"
	"github.com/monetlab/monet/internal/adapters/sqlite"
	"github.com/monetlab/monet/internal/cliconfig"
	"github.com/monetlab/monet/internal/ports"
	"github.com/monetlab/monet/internal/schema"
	"github.com/monetlab/monet/internal/track"
	"github.com/monetlab/monet/internal/watch"
	"github.com/monetlab/monet/pkg/log"
	"github.com/monetlab/monet/pkg/monet"
)

// session holds what a command needs beyond the config: the logger, the
// settings remembered between invocations and the resolved input folder.
type session struct {
	cfg      *cliconfig.Config
	log      zerolog.Logger
	store    ports.SettingsStore
	settings ports.Settings
	input    string
	filter   monet.Filter
}

func newSession(ctx context.Context, cfg *cliconfig.Config, args []string) (*session, error) {
	s := &session{
		cfg:   cfg,
		log:   cliconfig.Logger().Level(cfg.Level()),
		store: fsadapter.NewSettingsFile(cfg.SettingsDir),
	}

	settings, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load settings, using defaults")
	}
	s.settings = settings

	s.input, err = resolveInput(args, cfg.Input, settings.LastInput)
	if err != nil {
		return nil, err
	}
	s.filter, err = resolveFilter(cfg.Filter, settings.FilterMode)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// save remembers the input folder and filter for the next invocation.
func (s *session) save(ctx context.Context) {
	s.settings.LastInput = s.input
	s.settings.FilterMode = s.filter.String()
	if err := s.store.Save(ctx, s.settings); err != nil {
		s.log.Warn().Err(err).Msg("failed to save settings")
	}
}

// resolveInput picks the input folder from the positional argument, then the
// configured input, then the one used last time.
func resolveInput(args []string, configured, last string) (string, error) {
	input := configured
	if len(args) > 0 {
		input = args[0]
	}
	if input == "" {
		input = last
	}
	if input == "" {
		return "", errors.New("no input folder given")
	}
	return filepath.Abs(input)
}

// resolveFilter uses the configured filter, or the remembered one when none
// was configured.
func resolveFilter(configured, remembered string) (monet.Filter, error) {
	if configured == "" {
		configured = remembered
	}
	return monet.ParseFilter(configured)
}

func (s *session) newEngine() (*monet.Engine, error) {
	cfg := s.cfg
	lib := monet.Config{
		Classifier:     cfg.Classifier,
		ModelURL:       cfg.ModelURL,
		ModelName:      cfg.ModelName,
		HTTPTimeout:    cfg.HTTPTimeout,
		MaxRetries:     cfg.MaxRetries,
		Extensions:     cfg.Extensions,
		MinTrackPoints: cfg.MinTrackPoints,
		JournalPath:    cfg.Journal,
	}
	lib.MSD = monet.DefaultConfig().MSD
	lib.MSD.MaxLag = cfg.MSDMaxLag
	lib.MSD.AlphaTolerance = cfg.MSDAlphaTolerance
	lib.MSD.TrapFraction = cfg.MSDTrapFraction
	lib.MSD.MinPoints = cfg.MinTrackPoints

	return monet.New(lib, monet.WithLogger(log.NewZerologAdapterWithLogger(s.log)))
}

func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

func runBatch(ctx context.Context, cfg *cliconfig.Config, args []string) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	s, err := newSession(ctx, cfg, args)
	if err != nil {
		return err
	}
	engine, err := s.newEngine()
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer engine.Close()

	summary, err := s.runOnce(ctx, engine)
	// Settings are saved even when the run failed.
	s.save(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}
	if summary.Err != nil {
		return fmt.Errorf("run aborted: %w", summary.Err)
	}
	return nil
}

// runOnce submits one run, renders its events and waits for it. The returned
// error covers only submission; run-fatal errors are in the summary.
func (s *session) runOnce(ctx context.Context, engine *monet.Engine) (monet.RunSummary, error) {
	run, err := engine.Submit(ctx, s.input, s.filter)
	if err != nil {
		return monet.RunSummary{}, err
	}
	s.log.Info().
		Str("run_id", run.ID()).
		Str("input", s.input).
		Str("output", run.Info().OutputRoot).
		Stringer("filter", s.filter).
		Str("classifier", engine.ClassifierName()).
		Int("files", len(run.Info().Files)).
		Msg("run started")

	for ev := range run.Events() {
		renderEvent(s.log, ev)
	}
	return run.Wait()
}

// renderEvent writes one progress event as a log line.
func renderEvent(log zerolog.Logger, ev monet.ProgressEvent) {
	switch ev.Stage {
	case monet.StageClassified:
		for _, w := range ev.Warnings {
			log.Warn().Str("file", ev.File).Msg(w)
		}
	case monet.StageFiltered:
		log.Info().Msgf("%s: %d -> %d tracks kept", ev.File, ev.Total, ev.Kept)
	case monet.StageWritten:
		log.Debug().Str("file", ev.File).Str("output", ev.OutputPath).Msg("written")
	case monet.StageSkippedEmpty:
		log.Warn().Str("file", ev.File).Err(ev.Err).Msg("skipped")
	case monet.StageFailed:
		log.Error().Str("file", ev.File).Err(ev.Err).Msg("failed")
	case monet.StageNotProcessed:
		log.Warn().Str("file", ev.File).Msg("not processed")
	case monet.StageRunComplete:
		if ev.Summary == nil {
			return
		}
		sum := ev.Summary
		e := log.Info()
		if sum.Err != nil {
			e = log.Error().Err(sum.Err)
		}
		e.Int("written", sum.Written).
			Int("skipped", sum.SkippedEmpty).
			Int("failed", sum.Failed).
			Int("not_processed", sum.NotProcessed).
			Bool("cancelled", sum.Cancelled).
			Dur("duration", sum.Duration).
			Msg("run finished")
	default:
		for _, w := range ev.Warnings {
			log.Debug().Str("file", ev.File).Stringer("stage", ev.Stage).Msg(w)
		}
	}
}

func runWatch(ctx context.Context, cfg *cliconfig.Config, args []string) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	s, err := newSession(ctx, cfg, args)
	if err != nil {
		return err
	}
	engine, err := s.newEngine()
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer engine.Close()

	trigger := func(ctx context.Context) error {
		summary, err := s.runOnce(ctx, engine)
		if err != nil {
			return err
		}
		if summary.Err != nil {
			s.log.Error().Err(summary.Err).Msg("run aborted")
		}
		return nil
	}

	w := watch.New(watch.Config{
		Root:       s.input,
		Extensions: cfg.Extensions,
		Exclude:    []string{fsadapter.OutputRoot(s.input)},
		Debounce:   cfg.Debounce,
		RunOnStart: true,
	}, trigger, log.NewZerologAdapterWithLogger(s.log))

	s.log.Info().Str("input", s.input).Dur("debounce", cfg.Debounce).Msg("watching")
	err = w.Run(ctx)
	s.save(context.WithoutCancel(ctx))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	s.log.Info().Msg("received signal, stopping...")
	return nil
}

// runScan lists the files a run would pick up and the columns each one
// resolves to, without classifying anything.
func runScan(out io.Writer, cfg *cliconfig.Config, args []string) error {
	s, err := newSession(context.Background(), cfg, args)
	if err != nil {
		return err
	}

	files, err := fsadapter.Scan(s.input, cfg.Extensions, fsadapter.OutputRoot(s.input))
	if err != nil {
		return fmt.Errorf("scan %s: %w", s.input, err)
	}

	fmt.Fprintf(out, "input:  %s\n", s.input)
	fmt.Fprintf(out, "output: %s\n", fsadapter.OutputRoot(s.input))
	resolver := schema.NewResolver(nil)
	for _, f := range files {
		fmt.Fprintf(out, "%s\t%s\n", f.RelPath, describeFile(resolver, f.Path, f.RelPath))
	}
	fmt.Fprintf(out, "%d files\n", len(files))
	return nil
}

func describeFile(resolver *schema.Resolver, path, rel string) string {
	raw, err := fsadapter.ReadRawFile(path, rel)
	if err != nil {
		return "unreadable: " + err.Error()
	}
	m, err := resolver.Resolve(raw.Header.Fields)
	if err != nil {
		return err.Error()
	}
	tracks, _ := track.Group(raw, m)
	cols := make([]string, 0, 4)
	for _, idx := range []int{m.Track, m.Frame, m.X, m.Y} {
		cols = append(cols, strings.TrimSpace(raw.Header.Fields[idx]))
	}
	return fmt.Sprintf("%d tracks, %d rows [%s]", len(tracks), len(raw.Rows), strings.Join(cols, ", "))
}

func runReport(ctx context.Context, out io.Writer, cfg *cliconfig.Config, runID string) error {
	if cfg.Journal == "" {
		return errors.New("no journal configured (use --journal)")
	}
	if !cliconfig.FileExists(cfg.Journal) {
		return fmt.Errorf("journal %s not found", cfg.Journal)
	}
	j, err := sqlite.Open(cfg.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	r, err := j.Run(ctx, runID)
	if err != nil {
		return err
	}
	outcomes, err := j.Outcomes(ctx, runID)
	if err != nil {
		return err
	}

	status := "running"
	switch {
	case !r.Finished:
	case r.Error != "":
		status = "aborted: " + r.Error
	case r.Cancelled:
		status = "cancelled"
	default:
		status = "complete"
	}
	fmt.Fprintf(out, "run:        %s\n", r.RunID)
	fmt.Fprintf(out, "input:      %s\n", r.InputRoot)
	fmt.Fprintf(out, "output:     %s\n", r.OutputRoot)
	fmt.Fprintf(out, "filter:     %s\n", r.Filter)
	fmt.Fprintf(out, "classifier: %s\n", r.Classifier)
	fmt.Fprintf(out, "status:     %s\n", status)
	fmt.Fprintf(out, "files:      %d (written %d, skipped %d, failed %d, not processed %d)\n",
		r.FileCount, r.Written, r.SkippedEmpty, r.Failed, r.NotProcessed)
	for _, o := range outcomes {
		line := fmt.Sprintf("  %-14s %s", o.Stage, o.File)
		if o.Total > 0 {
			line += fmt.Sprintf(" (%d/%d kept)", o.Kept, o.Total)
		}
		if o.Detail != "" {
			line += ": " + o.Detail
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
