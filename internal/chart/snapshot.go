package chart

import "github.com/pcmnking/liangfstar/internal/cycle"

// Snapshot is an immutable value copy of a computed chart. Renderers, tool
// surfaces, and concurrent readers consume this instead of the live Chart.
type Snapshot struct {
	BirthStem string           `json:"birth_stem,omitempty" yaml:"birth_stem,omitempty"`
	Decade    string           `json:"decade,omitempty" yaml:"decade,omitempty"`
	Year      string           `json:"year,omitempty" yaml:"year,omitempty"`
	Sectors   []SectorSnapshot `json:"sectors" yaml:"sectors"`
}

// SectorSnapshot is the read-only view of one sector.
type SectorSnapshot struct {
	Branch        string          `json:"branch" yaml:"branch"`
	Stem          string          `json:"stem" yaml:"stem"`
	Role          string          `json:"role" yaml:"role"`
	RoleKey       string          `json:"role_key" yaml:"role_key"`
	Stars         []string        `json:"stars" yaml:"stars"`
	Birth         []BirthSnapshot `json:"birth,omitempty" yaml:"birth,omitempty"`
	Ming          bool            `json:"ming,omitempty" yaml:"ming,omitempty"`
	PrimaryAnchor bool            `json:"primary_anchor,omitempty" yaml:"primary_anchor,omitempty"`
	DecadeRole    string          `json:"decade_role,omitempty" yaml:"decade_role,omitempty"`
	YearRole      string          `json:"year_role,omitempty" yaml:"year_role,omitempty"`
}

// BirthSnapshot is a birth transformation in display form.
type BirthSnapshot struct {
	Star string `json:"star" yaml:"star"`
	Kind string `json:"kind" yaml:"kind"`
}

// Snapshot copies the chart into a Snapshot, sectors in canonical order.
func (c *Chart) Snapshot() Snapshot {
	snap := Snapshot{Sectors: make([]SectorSnapshot, 0, cycle.BranchCount)}
	if stem, ok := c.BirthStem(); ok {
		snap.BirthStem = stem.String()
	}
	if c.decade.Set {
		snap.Decade = c.decade.Branch.String()
	}
	if c.year.Set {
		snap.Year = c.year.Branch.String()
	}

	for _, s := range c.Sectors() {
		ss := SectorSnapshot{
			Branch:        s.branch.String(),
			Role:          s.role.Title(),
			RoleKey:       s.role.Key(),
			Stars:         s.Stars(),
			Ming:          s.isMing,
			PrimaryAnchor: s.isPrimary,
		}
		if ss.Stars == nil {
			ss.Stars = []string{}
		}
		if stem, ok := s.Stem(); ok {
			ss.Stem = stem.String()
		}
		for _, bt := range s.birth {
			ss.Birth = append(ss.Birth, BirthSnapshot{Star: bt.Star, Kind: bt.Kind.String()})
		}
		if c.decade.Set {
			ss.DecadeRole = LayerRole(c.decade.Branch, s.branch).Title()
		}
		if c.year.Set {
			ss.YearRole = LayerRole(c.year.Branch, s.branch).Title()
		}
		snap.Sectors = append(snap.Sectors, ss)
	}
	return snap
}
