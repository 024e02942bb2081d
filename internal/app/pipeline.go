package app

import (
	"context"
	"errors"
	"fmt"

	fsadapter "github.com/monetlab/monet/internal/adapters/fs"
	"github.com/monetlab/monet/internal/classify"
	"github.com/monetlab/monet/internal/domain"
	"github.com/monetlab/monet/internal/filter"
	"github.com/monetlab/monet/internal/ports"
	"github.com/monetlab/monet/internal/schema"
	"github.com/monetlab/monet/internal/track"
)

// pipeline carries one file at a time through
// Loaded, SchemaResolved, SignaturesExtracted, Classified and Filtered to an
// outcome. It lives for one run.
type pipeline struct {
	run      *Run
	adapter  *classify.Adapter
	writer   *fsadapter.Writer
	resolver *schema.Resolver
	logger   ports.Logger
}

// fileState tracks the stage of one file and emits an event per transition.
type fileState struct {
	run   *Run
	file  string
	stage domain.FileStage
}

func (s *fileState) advance(ev domain.ProgressEvent) error {
	if !s.stage.CanTransition(ev.Stage) {
		return fmt.Errorf("invalid stage transition %s -> %s", s.stage, ev.Stage)
	}
	s.stage = ev.Stage
	ev.File = s.file
	s.run.emit(ev)
	return nil
}

// process runs f through the pipeline and returns its outcome. The error is
// the cause of a Failed outcome; a *domain.ClassifierInitError among them is
// fatal to the run.
func (p *pipeline) process(ctx context.Context, f domain.InputFile) (domain.FileOutcome, error) {
	st := &fileState{run: p.run, file: f.RelPath, stage: domain.StageScanned}
	outcome := domain.FileOutcome{File: f.RelPath}

	fail := func(stage domain.FileStage, err error) (domain.FileOutcome, error) {
		ferr := &domain.FileError{Path: f.RelPath, Stage: stage, Err: err}
		p.logger.Error("file failed",
			ports.String("file", f.RelPath),
			ports.Any("stage", stage),
			ports.Err(err),
		)
		st.stage = domain.StageFailed
		p.run.emit(domain.ProgressEvent{
			File:  f.RelPath,
			Stage: domain.StageFailed,
			Kept:  outcome.Kept,
			Total: outcome.Total,
			Err:   ferr,
		})
		outcome.Stage = domain.StageFailed
		outcome.Detail = ferr.Error()
		return outcome, ferr
	}

	raw, err := fsadapter.ReadRawFile(f.Path, f.RelPath)
	if err != nil {
		return fail(domain.StageLoaded, err)
	}
	if err := st.advance(domain.ProgressEvent{Stage: domain.StageLoaded}); err != nil {
		return fail(domain.StageLoaded, err)
	}

	mapping, err := p.resolver.Resolve(raw.Header.Fields)
	if err != nil {
		return fail(domain.StageSchemaResolved, err)
	}
	if err := st.advance(domain.ProgressEvent{Stage: domain.StageSchemaResolved}); err != nil {
		return fail(domain.StageSchemaResolved, err)
	}

	tracks, orphans := track.Group(raw, mapping)
	tracks, sigs := track.ExtractAll(tracks)
	var warnings []string
	if orphans > 0 {
		warnings = append(warnings, fmt.Sprintf("%d rows without a track id ignored", orphans))
	}
	outcome.Total = len(tracks)
	if err := st.advance(domain.ProgressEvent{
		Stage:    domain.StageSignaturesExtracted,
		Total:    len(tracks),
		Warnings: warnings,
	}); err != nil {
		return fail(domain.StageSignaturesExtracted, err)
	}

	labels, warns, err := p.adapter.Classify(ctx, sigs)
	if err != nil {
		var initErr *domain.ClassifierInitError
		if errors.As(err, &initErr) {
			failed, _ := fail(domain.StageClassified, err)
			return failed, initErr
		}
		return fail(domain.StageClassified, err)
	}
	if err := st.advance(domain.ProgressEvent{
		Stage:    domain.StageClassified,
		Total:    len(tracks),
		Warnings: warningStrings(warns),
	}); err != nil {
		return fail(domain.StageClassified, err)
	}

	labeled := make([]filter.Labeled, len(tracks))
	for i, t := range tracks {
		labeled[i] = filter.Labeled{TrackID: t.ID, Label: labels[i]}
	}
	res := filter.Apply(labeled, p.run.info.Filter)
	outcome.Kept = res.KeptCount()
	if err := st.advance(domain.ProgressEvent{
		Stage: domain.StageFiltered,
		Kept:  outcome.Kept,
		Total: outcome.Total,
	}); err != nil {
		return fail(domain.StageFiltered, err)
	}

	if outcome.Kept == 0 {
		return p.skip(st, outcome, len(raw.Rows) == 0)
	}

	path, written, err := p.writer.Write(raw, mapping.Track, res.Set(), p.run.info.Filter)
	if err != nil {
		return fail(domain.StageWritten, err)
	}
	if !written {
		return p.skip(st, outcome, false)
	}

	outcome.Stage = domain.StageWritten
	outcome.OutputPath = path
	if err := st.advance(domain.ProgressEvent{
		Stage:      domain.StageWritten,
		Kept:       outcome.Kept,
		Total:      outcome.Total,
		OutputPath: path,
	}); err != nil {
		return fail(domain.StageWritten, err)
	}

	p.logger.Info("file written",
		ports.String("file", f.RelPath),
		ports.String("tracks", res.String()),
		ports.String("output", path),
	)
	return outcome, nil
}

func (p *pipeline) skip(st *fileState, outcome domain.FileOutcome, noRows bool) (domain.FileOutcome, error) {
	reason := domain.ErrNoKeptTracks
	if noRows {
		reason = domain.ErrEmptyFile
	}
	outcome.Stage = domain.StageSkippedEmpty
	outcome.Detail = reason.Error()
	if err := st.advance(domain.ProgressEvent{
		Stage: domain.StageSkippedEmpty,
		Kept:  0,
		Total: outcome.Total,
		Err:   reason,
	}); err != nil {
		return outcome, err
	}
	p.logger.Info("file skipped",
		ports.String("file", outcome.File),
		ports.String("reason", reason.Error()),
		ports.Int("total", outcome.Total),
	)
	return outcome, nil
}

func warningStrings(warns []classify.Warning) []string {
	if len(warns) == 0 {
		return nil
	}
	out := make([]string, len(warns))
	for i, w := range warns {
		out[i] = w.String()
	}
	return out
}
