package domain

import "fmt"

// FileStage is a state of the per-file pipeline.
type FileStage int

const (
	StageScanned FileStage = iota
	StageLoaded
	StageSchemaResolved
	StageSignaturesExtracted
	StageClassified
	StageFiltered
	StageWritten
	StageSkippedEmpty
	StageFailed
	StageNotProcessed

	// StageRunComplete marks the terminal event of a run. It carries the
	// RunSummary and no file.
	StageRunComplete
)

// String returns a human-readable representation of the stage.
func (s FileStage) String() string {
	switch s {
	case StageScanned:
		return "Scanned"
	case StageLoaded:
		return "Loaded"
	case StageSchemaResolved:
		return "SchemaResolved"
	case StageSignaturesExtracted:
		return "SignaturesExtracted"
	case StageClassified:
		return "Classified"
	case StageFiltered:
		return "Filtered"
	case StageWritten:
		return "Written"
	case StageSkippedEmpty:
		return "SkippedEmpty"
	case StageFailed:
		return "Failed"
	case StageNotProcessed:
		return "NotProcessed"
	case StageRunComplete:
		return "RunComplete"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s FileStage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseFileStage parses the String form of a stage.
func ParseFileStage(s string) (FileStage, error) {
	for st := StageScanned; st <= StageRunComplete; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown file stage %q", s)
}

// Terminal reports whether no further transition is allowed from s.
func (s FileStage) Terminal() bool {
	switch s {
	case StageWritten, StageSkippedEmpty, StageFailed, StageNotProcessed, StageRunComplete:
		return true
	}
	return false
}

// CanTransition reports whether the pipeline may move from s to next.
// Stages are strictly sequential; any non-terminal stage may fail.
func (s FileStage) CanTransition(next FileStage) bool {
	if s.Terminal() {
		return false
	}
	if next == StageFailed {
		return true
	}
	switch s {
	case StageScanned:
		return next == StageLoaded || next == StageNotProcessed
	case StageFiltered:
		return next == StageWritten || next == StageSkippedEmpty
	case StageLoaded, StageSchemaResolved, StageSignaturesExtracted, StageClassified:
		return next == s+1
	}
	return false
}
