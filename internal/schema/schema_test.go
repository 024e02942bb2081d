package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/monetlab/monet/internal/domain"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   domain.ColumnMapping
	}{
		{
			name:   "exact lowercase",
			header: []string{"Trajectory", "Frame", "x", "y"},
			want:   domain.ColumnMapping{Track: 0, Frame: 1, X: 2, Y: 3},
		},
		{
			name:   "pass-through columns and odd order",
			header: []string{"m0", "y", "Frame", "Trajectory", "x", "z"},
			want:   domain.ColumnMapping{Track: 3, Frame: 2, X: 4, Y: 1},
		},
		{
			name:   "trackmate style",
			header: []string{"LABEL", "ID", "TRACK_ID", "QUALITY", "POSITION_X", "POSITION_Y", "POSITION_T", "FRAME"},
			want:   domain.ColumnMapping{Track: 2, Frame: 7, X: 4, Y: 5},
		},
		{
			name:   "units and padding",
			header: []string{" Track ID ", "Time (s)", "X (um)", "Y (um)"},
			want:   domain.ColumnMapping{Track: 0, Frame: 1, X: 2, Y: 3},
		},
		{
			name:   "exact alias beats substring",
			header: []string{"Particle ID", "t", "x", "y", "Track"},
			want:   domain.ColumnMapping{Track: 4, Frame: 1, X: 2, Y: 3},
		},
		{
			name:   "bom on first column",
			header: []string{"\ufeffTrajectory", "Frame", "x", "y"},
			want:   domain.ColumnMapping{Track: 0, Frame: 1, X: 2, Y: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.header)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		wantRole domain.Role
		wantCols []string
	}{
		{
			name:     "two x columns",
			header:   []string{"Track", "Frame", "x", "X", "y"},
			wantRole: domain.RoleX,
			wantCols: []string{"x", "X"},
		},
		{
			name:     "two substring y columns",
			header:   []string{"Track", "Frame", "x", "Position Y (um)", "Position Y (px)"},
			wantRole: domain.RoleY,
			wantCols: []string{"Position Y (um)", "Position Y (px)"},
		},
		{
			name:     "missing frame",
			header:   []string{"Track", "x", "y"},
			wantRole: domain.RoleFrame,
		},
		{
			name:     "missing track",
			header:   []string{"id", "Frame", "x", "y"},
			wantRole: domain.RoleTrack,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.header)
			var se *domain.SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("Resolve() error = %v, want *SchemaError", err)
			}
			if se.Role != tt.wantRole {
				t.Errorf("Role = %s, want %s", se.Role, tt.wantRole)
			}
			if diff := cmp.Diff(tt.wantCols, se.Columns); diff != "" {
				t.Errorf("Columns mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_ColumnBoundTwice(t *testing.T) {
	r := NewResolver(map[domain.Role][]string{
		domain.RoleFrame: {"Track"},
	})

	_, err := r.Resolve([]string{"Track", "x", "y"})
	var se *domain.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("Resolve() error = %v, want *SchemaError", err)
	}
	if se.Role != domain.RoleFrame {
		t.Errorf("Role = %s, want frame", se.Role)
	}
}

func TestSchemaError_Message(t *testing.T) {
	_, err := Resolve([]string{"Track", "Frame", "x", "X", "y"})
	want := `schema: x column: ambiguous, several columns match "x": "x", "X"`
	if err == nil || err.Error() != want {
		t.Errorf("error = %v, want %s", err, want)
	}
}
