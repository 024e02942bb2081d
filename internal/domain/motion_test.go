package domain

import "testing"

func TestFilterConfig_Matches(t *testing.T) {
	tests := []struct {
		filter FilterConfig
		motion MotionType
		want   bool
	}{
		{FilterAll, Brownian, true},
		{FilterAll, FBM, true},
		{FilterAll, CTRW, true},
		{FilterAll, Unknown, false},
		{FilterBrownian, Brownian, true},
		{FilterBrownian, FBM, false},
		{FilterFBM, FBM, true},
		{FilterFBM, CTRW, false},
		{FilterCTRW, CTRW, true},
		{FilterCTRW, Unknown, false},
		{FilterConfig(9), Brownian, false},
	}

	for _, tt := range tests {
		if got := tt.filter.Matches(tt.motion); got != tt.want {
			t.Errorf("%s.Matches(%s) = %v, want %v", tt.filter, tt.motion, got, tt.want)
		}
	}
}

func TestParseFilterConfig(t *testing.T) {
	tests := []struct {
		in      string
		want    FilterConfig
		wantErr bool
	}{
		{"", FilterAll, false},
		{"All", FilterAll, false},
		{" brownian ", FilterBrownian, false},
		{"FBM", FilterFBM, false},
		{"ctrw", FilterCTRW, false},
		{"levy", FilterAll, true},
	}

	for _, tt := range tests {
		got, err := ParseFilterConfig(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilterConfig(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilterConfig(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseMotionType(t *testing.T) {
	for _, m := range []MotionType{Unknown, Brownian, FBM, CTRW} {
		got, err := ParseMotionType(m.String())
		if err != nil {
			t.Fatalf("ParseMotionType(%q) error = %v", m, err)
		}
		if got != m {
			t.Errorf("ParseMotionType(%q) = %s", m, got)
		}
	}
	if _, err := ParseMotionType("levy"); err == nil {
		t.Error("expected error for unknown motion type")
	}
}

func TestFilterConfig_String(t *testing.T) {
	// Output file names embed these.
	want := map[FilterConfig]string{
		FilterAll:      "All",
		FilterBrownian: "Brownian",
		FilterFBM:      "FBM",
		FilterCTRW:     "CTRW",
	}
	for f, s := range want {
		if f.String() != s {
			t.Errorf("String() = %q, want %q", f.String(), s)
		}
		if f.Describe() == "" {
			t.Errorf("%s has no description", f)
		}
	}
}
