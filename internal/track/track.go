// Package track groups raw trajectory rows into tracks and turns each track
// into a fixed-length signature for the classifier.
package track

import (
	"math"
	"strconv"
	"strings"

	"github.com/monetlab/monet/internal/domain"
)

// Group collects the rows of raw into tracks. Tracks appear in order of first
// appearance and their points in file row order. Rows with a missing or blank
// track id belong to no track; their count is returned as orphans.
// Unparseable coordinates become NaN, which marks the signature malformed.
func Group(raw *domain.RawFile, m domain.ColumnMapping) (tracks []domain.Track, orphans int) {
	decimalComma := raw.Delimiter != ','
	index := make(map[string]int)

	for i, row := range raw.Rows {
		if m.Track >= len(row.Fields) {
			orphans++
			continue
		}
		id := strings.TrimSpace(row.Fields[m.Track])
		if id == "" {
			orphans++
			continue
		}

		p := domain.Point{
			Frame: parseCell(row.Fields, m.Frame, decimalComma),
			X:     parseCell(row.Fields, m.X, decimalComma),
			Y:     parseCell(row.Fields, m.Y, decimalComma),
			Row:   i,
		}

		k, ok := index[id]
		if !ok {
			k = len(tracks)
			index[id] = k
			tracks = append(tracks, domain.Track{ID: id})
		}
		tracks[k].Points = append(tracks[k].Points, p)
	}
	return tracks, orphans
}

func parseCell(fields []string, col int, decimalComma bool) float64 {
	if col < 0 || col >= len(fields) {
		return math.NaN()
	}
	s := strings.TrimSpace(fields[col])
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && decimalComma && strings.Count(s, ",") == 1 {
		v, err = strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	}
	if err != nil {
		return math.NaN()
	}
	return v
}
