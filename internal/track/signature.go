package track

import "github.com/monetlab/monet/internal/domain"

// Extract converts t into a Signature: the first SignatureLength points in
// order, or all points followed by copies of the last one when the track is
// shorter. t must not be empty.
func Extract(t domain.Track) domain.Signature {
	sig := domain.Signature{TrackID: t.ID, Length: len(t.Points)}

	n := len(t.Points)
	if n > domain.SignatureLength {
		n = domain.SignatureLength
	}
	for i := 0; i < n; i++ {
		sig.Points[i] = domain.XY{X: t.Points[i].X, Y: t.Points[i].Y}
	}
	last := sig.Points[n-1]
	for i := n; i < domain.SignatureLength; i++ {
		sig.Points[i] = last
	}
	return sig
}

// ExtractAll returns one signature per non-empty track, index-aligned with the
// returned tracks. Empty tracks are dropped before extraction.
func ExtractAll(tracks []domain.Track) ([]domain.Track, []domain.Signature) {
	kept := make([]domain.Track, 0, len(tracks))
	sigs := make([]domain.Signature, 0, len(tracks))
	for _, t := range tracks {
		if len(t.Points) == 0 {
			continue
		}
		kept = append(kept, t)
		sigs = append(sigs, Extract(t))
	}
	return kept, sigs
}
