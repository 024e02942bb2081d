package domain

import "time"

// ProgressEvent describes one stage transition or outcome for one file.
// The terminal event of a run has Stage == StageRunComplete and a non-nil
// Summary.
type ProgressEvent struct {
	RunID string    `json:"run_id"`
	File  string    `json:"file,omitempty"`
	Stage FileStage `json:"stage"`

	// Kept and Total are set from StageFiltered onwards.
	Kept  int `json:"kept,omitempty"`
	Total int `json:"total,omitempty"`

	// Warnings lists non-fatal per-track problems found at this stage.
	Warnings []string `json:"warnings,omitempty"`

	// Err is set for StageFailed, and for StageSkippedEmpty as the reason.
	Err error `json:"-"`

	// OutputPath is set for StageWritten.
	OutputPath string `json:"output_path,omitempty"`

	At time.Time `json:"at"`

	Summary *RunSummary `json:"summary,omitempty"`
}

// FileOutcome is the final state of one file in a run.
type FileOutcome struct {
	File       string    `json:"file"`
	Stage      FileStage `json:"stage"`
	Kept       int       `json:"kept"`
	Total      int       `json:"total"`
	OutputPath string    `json:"output_path,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

// RunSummary aggregates the outcomes of a run.
type RunSummary struct {
	RunID        string        `json:"run_id"`
	Input        string        `json:"input"`
	Output       string        `json:"output"`
	Filter       FilterConfig  `json:"filter"`
	Written      int           `json:"written"`
	SkippedEmpty int           `json:"skipped_empty"`
	Failed       int           `json:"failed"`
	NotProcessed int           `json:"not_processed"`
	Cancelled    bool          `json:"cancelled"`
	Duration     time.Duration `json:"duration"`

	// Err is the run-fatal error, if any.
	Err error `json:"-"`
}

// Processed counts files that reached a success outcome.
func (s RunSummary) Processed() int {
	return s.Written + s.SkippedEmpty
}

// Skipped counts files with nothing to keep.
func (s RunSummary) Skipped() int {
	return s.SkippedEmpty
}

// Record adds one file outcome to the counters.
func (s *RunSummary) Record(stage FileStage) {
	switch stage {
	case StageWritten:
		s.Written++
	case StageSkippedEmpty:
		s.SkippedEmpty++
	case StageFailed:
		s.Failed++
	case StageNotProcessed:
		s.NotProcessed++
	}
}

// InputFile is one discovered input file.
type InputFile struct {
	// Path is the absolute path.
	Path string

	// RelPath is the path relative to the input root, using the OS separator.
	RelPath string
}

// BatchRun is one end-to-end invocation of the engine. Its file list and
// settings are fixed when the run starts.
type BatchRun struct {
	ID         string
	InputRoot  string
	OutputRoot string
	Filter     FilterConfig
	Classifier string
	Files      []InputFile
	StartedAt  time.Time
}
