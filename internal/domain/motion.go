package domain

import (
	"fmt"
	"strings"
)

// MotionType is the motion category assigned to a track by the classifier.
type MotionType int

const (
	Unknown MotionType = iota
	Brownian
	FBM
	CTRW
)

// ClassOrder is the order of the classifier's output classes.
var ClassOrder = []MotionType{Brownian, FBM, CTRW}

// String returns the canonical label.
func (m MotionType) String() string {
	switch m {
	case Brownian:
		return "Brownian"
	case FBM:
		return "FBM"
	case CTRW:
		return "CTRW"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m MotionType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMotionType parses a label case-insensitively.
func ParseMotionType(s string) (MotionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "brownian":
		return Brownian, nil
	case "fbm":
		return FBM, nil
	case "ctrw":
		return CTRW, nil
	case "unknown":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("unknown motion type %q", s)
}

// FilterConfig selects which motion types survive filtering.
type FilterConfig int

const (
	FilterAll FilterConfig = iota
	FilterBrownian
	FilterFBM
	FilterCTRW
)

// String returns the canonical name, also used in output file names.
func (f FilterConfig) String() string {
	switch f {
	case FilterBrownian:
		return "Brownian"
	case FilterFBM:
		return "FBM"
	case FilterCTRW:
		return "CTRW"
	default:
		return "All"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f FilterConfig) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Matches reports whether a track labeled m is kept under f.
// Unknown never matches, not even under FilterAll.
func (f FilterConfig) Matches(m MotionType) bool {
	if m == Unknown {
		return false
	}
	switch f {
	case FilterAll:
		return true
	case FilterBrownian:
		return m == Brownian
	case FilterFBM:
		return m == FBM
	case FilterCTRW:
		return m == CTRW
	default:
		return false
	}
}

// Describe returns a short human explanation of what the filter keeps.
func (f FilterConfig) Describe() string {
	switch f {
	case FilterBrownian:
		return "Normal diffusion: particles moving freely in liquid"
	case FilterFBM:
		return "Fractional Brownian motion: particles in crowded or elastic environments"
	case FilterCTRW:
		return "Continuous-time random walk: particles that get trapped by obstacles"
	default:
		return "No filtering: every confidently classified track is kept"
	}
}

// ParseFilterConfig parses a filter name case-insensitively.
func ParseFilterConfig(s string) (FilterConfig, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "brownian":
		return FilterBrownian, nil
	case "fbm":
		return FilterFBM, nil
	case "ctrw":
		return FilterCTRW, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q (want All, Brownian, FBM or CTRW)", s)
}
