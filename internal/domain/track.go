package domain

import "math"

// SignatureLength is the number of points in every Signature.
const SignatureLength = 300

// Role is a semantic column role.
type Role string

const (
	RoleTrack Role = "track"
	RoleFrame Role = "frame"
	RoleX     Role = "x"
	RoleY     Role = "y"
)

// Roles lists the required roles in resolution order.
var Roles = []Role{RoleTrack, RoleFrame, RoleX, RoleY}

// ColumnMapping maps each role to a column index. It is immutable once
// resolved for a file.
type ColumnMapping struct {
	Track int
	Frame int
	X     int
	Y     int
}

// Index returns the column index bound to r.
func (m ColumnMapping) Index(r Role) int {
	switch r {
	case RoleTrack:
		return m.Track
	case RoleFrame:
		return m.Frame
	case RoleX:
		return m.X
	case RoleY:
		return m.Y
	}
	return -1
}

// Point is one observation of a particle.
type Point struct {
	Frame float64
	X     float64
	Y     float64

	// Row is the index into RawFile.Rows this point was parsed from.
	Row int
}

// Track is one particle's observations within a file, in file row order.
type Track struct {
	ID     string
	Points []Point
}

// Len returns the number of points.
func (t Track) Len() int {
	return len(t.Points)
}

// Rows returns the raw row indices of the track's points.
func (t Track) Rows() []int {
	rows := make([]int, len(t.Points))
	for i, p := range t.Points {
		rows[i] = p.Row
	}
	return rows
}

// XY is a coordinate pair.
type XY struct {
	X float64
	Y float64
}

// Signature is the fixed-length input unit of the classifier.
type Signature struct {
	TrackID string
	Points  [SignatureLength]XY

	// Length is the track's point count before truncation or padding.
	Length int
}

// Finite reports whether every coordinate is a finite number.
func (s *Signature) Finite() bool {
	for _, p := range s.Points {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// Observed returns the points that came from the track rather than padding.
func (s *Signature) Observed() []XY {
	n := s.Length
	if n > SignatureLength {
		n = SignatureLength
	}
	if n < 0 {
		n = 0
	}
	return s.Points[:n]
}

// ClassificationResult maps track ids to their motion type.
type ClassificationResult map[string]MotionType
