// Package filter selects the tracks whose motion type matches the configured
// filter.
package filter

import (
	"fmt"

	"github.com/monetlab/monet/internal/domain"
)

// Labeled is a track id with its classifier label.
type Labeled struct {
	TrackID string
	Label   domain.MotionType
}

// Result is the outcome of filtering one file.
type Result struct {
	// Kept lists the kept track ids in input order.
	Kept []string

	// Total is the number of tracks considered.
	Total int

	// Counts tallies labels over all considered tracks.
	Counts map[domain.MotionType]int
}

// KeptCount returns the number of kept tracks.
func (r Result) KeptCount() int {
	return len(r.Kept)
}

// Set returns the kept ids as a set.
func (r Result) Set() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Kept))
	for _, id := range r.Kept {
		set[id] = struct{}{}
	}
	return set
}

// String renders the counts as "total -> kept".
func (r Result) String() string {
	return fmt.Sprintf("%d -> %d", r.Total, len(r.Kept))
}

// Apply keeps the tracks whose label matches cfg. Unknown tracks are never
// kept, also under FilterAll.
func Apply(labeled []Labeled, cfg domain.FilterConfig) Result {
	res := Result{
		Total:  len(labeled),
		Counts: make(map[domain.MotionType]int, 4),
	}
	for _, l := range labeled {
		res.Counts[l.Label]++
		if cfg.Matches(l.Label) {
			res.Kept = append(res.Kept, l.TrackID)
		}
	}
	return res
}
