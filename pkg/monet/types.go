package monet

import (
	"github.com/monetlab/monet/internal/app"
	"github.com/monetlab/monet/internal/domain"
	"github.com/monetlab/monet/internal/ports"
)

// Re-exported domain types.
type (
	// MotionType is the motion class of a track.
	MotionType = domain.MotionType

	// Filter selects which motion types are kept.
	Filter = domain.FilterConfig

	// FileStage is a per-file processing stage.
	FileStage = domain.FileStage

	// ProgressEvent describes one stage transition of one file.
	ProgressEvent = domain.ProgressEvent

	// RunSummary aggregates the outcomes of a run.
	RunSummary = domain.RunSummary

	// Signature is the fixed-length classifier input for one track.
	Signature = domain.Signature

	// SchemaError reports a header that cannot be mapped to the required columns.
	SchemaError = domain.SchemaError

	// FileError is the error attached to a Failed file.
	FileError = domain.FileError

	// ClassifierInitError reports a classifier that could not be prepared.
	ClassifierInitError = domain.ClassifierInitError

	// Run is a handle to one submitted batch run.
	Run = app.Run

	// Classifier is the motion classification capability.
	Classifier = ports.Classifier

	// Journal persists the outcome log of batch runs.
	Journal = ports.Journal

	// HTTPClient is the interface for making HTTP requests.
	// *http.Client satisfies this interface.
	HTTPClient = ports.HTTPClient

	// Logger is the interface for structured logging.
	Logger = ports.Logger
)

// Motion types.
const (
	Unknown  = domain.Unknown
	Brownian = domain.Brownian
	FBM      = domain.FBM
	CTRW     = domain.CTRW
)

// Filters.
const (
	FilterAll      = domain.FilterAll
	FilterBrownian = domain.FilterBrownian
	FilterFBM      = domain.FilterFBM
	FilterCTRW     = domain.FilterCTRW
)

// File stages.
const (
	StageScanned             = domain.StageScanned
	StageLoaded              = domain.StageLoaded
	StageSchemaResolved      = domain.StageSchemaResolved
	StageSignaturesExtracted = domain.StageSignaturesExtracted
	StageClassified          = domain.StageClassified
	StageFiltered            = domain.StageFiltered
	StageWritten             = domain.StageWritten
	StageSkippedEmpty        = domain.StageSkippedEmpty
	StageFailed              = domain.StageFailed
	StageNotProcessed        = domain.StageNotProcessed
	StageRunComplete         = domain.StageRunComplete
)

// Errors returned by the engine. Check them with errors.Is.
var (
	ErrBusy            = domain.ErrBusy
	ErrNotRunning      = domain.ErrNotRunning
	ErrInvalidRequest  = domain.ErrInvalidRequest
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrNoKeptTracks    = domain.ErrNoKeptTracks
	ErrEmptyFile       = domain.ErrEmptyFile
)

// ParseFilter parses a filter name such as "Brownian" or "all".
func ParseFilter(s string) (Filter, error) {
	return domain.ParseFilterConfig(s)
}
