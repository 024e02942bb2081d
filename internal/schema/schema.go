// Package schema maps arbitrary trajectory CSV headers to the column roles
// the engine needs: track id, frame, x and y.
package schema

import (
	"fmt"
	"strings"

	"github.com/monetlab/monet/internal/domain"
)

// Aliases are the default priority-ordered alias tables, highest first.
var Aliases = map[domain.Role][]string{
	domain.RoleTrack: {"Trajectory", "Track ID", "TrackID", "Track", "Spot ID", "Particle ID"},
	domain.RoleFrame: {"Frame", "Frame ID", "Slice", "Time", "t"},
	domain.RoleX:     {"x", "xpx", "Position X", "X (um)", "X (px)"},
	domain.RoleY:     {"y", "ypx", "Position Y", "Y (um)", "Y (px)"},
}

// Resolver resolves headers against a set of alias tables.
type Resolver struct {
	aliases map[domain.Role][]string
}

// NewResolver creates a Resolver. A nil table uses Aliases; roles missing
// from a custom table fall back to the defaults.
func NewResolver(aliases map[domain.Role][]string) *Resolver {
	merged := make(map[domain.Role][]string, len(domain.Roles))
	for _, r := range domain.Roles {
		if a, ok := aliases[r]; ok && len(a) > 0 {
			merged[r] = a
		} else {
			merged[r] = Aliases[r]
		}
	}
	return &Resolver{aliases: merged}
}

var defaultResolver = NewResolver(nil)

// Resolve maps header to a ColumnMapping using the default aliases.
func Resolve(header []string) (domain.ColumnMapping, error) {
	return defaultResolver.Resolve(header)
}

// Resolve maps header to a ColumnMapping.
//
// For each role, aliases are tried in priority order, first as exact matches
// and then as substrings of the column name (case-insensitive, with '_', '-'
// and '.' read as spaces). The first alias that matches anything decides;
// more than one column matching it is ambiguous. Single-character aliases
// only match exactly.
func (r *Resolver) Resolve(header []string) (domain.ColumnMapping, error) {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalize(h)
	}

	idx := make(map[domain.Role]int, len(domain.Roles))
	owner := make(map[int]domain.Role, len(domain.Roles))
	for _, role := range domain.Roles {
		col, err := r.resolveRole(role, header, norm)
		if err != nil {
			return domain.ColumnMapping{}, err
		}
		if prev, taken := owner[col]; taken {
			return domain.ColumnMapping{}, &domain.SchemaError{
				Role:    role,
				Columns: []string{header[col]},
				Reason:  fmt.Sprintf("column already bound to %s", prev),
			}
		}
		owner[col] = role
		idx[role] = col
	}

	return domain.ColumnMapping{
		Track: idx[domain.RoleTrack],
		Frame: idx[domain.RoleFrame],
		X:     idx[domain.RoleX],
		Y:     idx[domain.RoleY],
	}, nil
}

func (r *Resolver) resolveRole(role domain.Role, header, norm []string) (int, error) {
	aliases := r.aliases[role]

	for _, substring := range []bool{false, true} {
		for _, alias := range aliases {
			a := normalize(alias)
			if a == "" || (substring && len(a) < 2) {
				continue
			}
			var hits []int
			for i, n := range norm {
				if n == a || (substring && strings.Contains(n, a)) {
					hits = append(hits, i)
				}
			}
			switch len(hits) {
			case 0:
				continue
			case 1:
				return hits[0], nil
			default:
				cols := make([]string, len(hits))
				for i, h := range hits {
					cols[i] = header[h]
				}
				return -1, &domain.SchemaError{
					Role:    role,
					Columns: cols,
					Reason:  fmt.Sprintf("ambiguous, several columns match %q", alias),
				}
			}
		}
	}

	return -1, &domain.SchemaError{
		Role:   role,
		Reason: fmt.Sprintf("no column matches any of %s", strings.Join(aliases, ", ")),
	}
}

var separators = strings.NewReplacer("_", " ", "-", " ", ".", " ")

func normalize(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(separators.Replace(s))
	return strings.Join(strings.Fields(s), " ")
}
