package filter

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/monetlab/monet/internal/domain"
)

func labels(types ...domain.MotionType) []Labeled {
	out := make([]Labeled, len(types))
	for i, m := range types {
		out[i] = Labeled{TrackID: fmt.Sprintf("t%d", i), Label: m}
	}
	return out
}

func TestApply(t *testing.T) {
	in := labels(domain.Brownian, domain.FBM, domain.Unknown, domain.CTRW, domain.Brownian)

	tests := []struct {
		cfg  domain.FilterConfig
		want []string
	}{
		{domain.FilterAll, []string{"t0", "t1", "t3", "t4"}},
		{domain.FilterBrownian, []string{"t0", "t4"}},
		{domain.FilterFBM, []string{"t1"}},
		{domain.FilterCTRW, []string{"t3"}},
	}

	for _, tt := range tests {
		t.Run(tt.cfg.String(), func(t *testing.T) {
			res := Apply(in, tt.cfg)
			if diff := cmp.Diff(tt.want, res.Kept); diff != "" {
				t.Errorf("Kept mismatch (-want +got):\n%s", diff)
			}
			if res.Total != 5 {
				t.Errorf("Total = %d, want 5", res.Total)
			}
		})
	}
}

func TestApply_ScenarioBrownianOutOf150(t *testing.T) {
	var types []domain.MotionType
	for i := 0; i < 40; i++ {
		types = append(types, domain.Brownian)
	}
	for i := 0; i < 60; i++ {
		types = append(types, domain.FBM)
	}
	for i := 0; i < 50; i++ {
		types = append(types, domain.CTRW)
	}

	res := Apply(labels(types...), domain.FilterBrownian)

	if res.KeptCount() != 40 || res.Total != 150 {
		t.Errorf("kept/total = %d/%d, want 40/150", res.KeptCount(), res.Total)
	}
	if res.String() != "150 -> 40" {
		t.Errorf("String() = %q", res.String())
	}
	if res.Counts[domain.FBM] != 60 || res.Counts[domain.CTRW] != 50 {
		t.Errorf("Counts = %v", res.Counts)
	}
}

func TestApply_AllUnknown(t *testing.T) {
	res := Apply(labels(domain.Unknown, domain.Unknown), domain.FilterAll)
	if res.KeptCount() != 0 {
		t.Errorf("KeptCount() = %d, want 0", res.KeptCount())
	}
	if len(res.Set()) != 0 {
		t.Errorf("Set() = %v, want empty", res.Set())
	}
}
