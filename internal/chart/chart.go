// Package chart holds the 12-sector wheel and the placement passes that
// populate it: role titles and governing stems (Assign) and the two star
// series plus manual stars (Placer).
//
// A Chart is mutated only while a computation pass runs. Readers must not
// observe it until the pass completes; hand them a Snapshot when the chart
// is shared across goroutines.
package chart

import (
	"slices"

	"github.com/pcmnking/liangfstar/internal/cycle"
)

// BirthTransformation is a (star, kind) pair seeded from the birth stem.
type BirthTransformation struct {
	Star string
	Kind Kind
}

// Sector is one wheel position, identified by its branch.
type Sector struct {
	branch    cycle.Branch
	stem      cycle.Stem
	hasStem   bool
	role      Role
	stars     []string
	birth     []BirthTransformation
	isMing    bool
	isPrimary bool
}

// Branch returns the sector's identity.
func (s *Sector) Branch() cycle.Branch { return s.branch }

// Stem returns the governing stem and whether it has been assigned.
func (s *Sector) Stem() (cycle.Stem, bool) { return s.stem, s.hasStem }

// Role returns the role title, or RoleNone before assignment.
func (s *Sector) Role() Role { return s.role }

// Stars returns a copy of the sector's stars in placement order.
func (s *Sector) Stars() []string { return slices.Clone(s.stars) }

// HasStar reports whether name sits in this sector.
func (s *Sector) HasStar(name string) bool { return slices.Contains(s.stars, name) }

// BirthTransformations returns a copy of the seeded birth transformations.
func (s *Sector) BirthTransformations() []BirthTransformation { return slices.Clone(s.birth) }

// HasBirthKind reports whether any birth transformation of kind k landed here.
func (s *Sector) HasBirthKind(k Kind) bool {
	for _, bt := range s.birth {
		if bt.Kind == k {
			return true
		}
	}
	return false
}

// IsMing reports whether this is the Ming sector.
func (s *Sector) IsMing() bool { return s.isMing }

// IsPrimaryAnchor reports whether the primary series is anchored here.
func (s *Sector) IsPrimaryAnchor() bool { return s.isPrimary }

func (s *Sector) reset() {
	*s = Sector{branch: s.branch, role: RoleNone}
}

// addStar adds name once; it reports whether the star was new.
func (s *Sector) addStar(name string) bool {
	if s.HasStar(name) {
		return false
	}
	s.stars = append(s.stars, name)
	return true
}

// Anchor is an optional branch, used for the decade and year layers.
type Anchor struct {
	Branch cycle.Branch
	Set    bool
}

// At returns a set Anchor on b.
func At(b cycle.Branch) Anchor { return Anchor{Branch: b, Set: true} }

// Chart owns exactly 12 sectors keyed by branch.
type Chart struct {
	sectors  [cycle.BranchCount]Sector
	birth    cycle.Stem
	hasBirth bool
	decade   Anchor
	year     Anchor

	// starIndex maps a star name to the sector it was first placed in.
	starIndex map[string]cycle.Branch
}

// New returns an empty chart with all sectors reset.
func New() *Chart {
	c := &Chart{}
	for i := range c.sectors {
		c.sectors[i].branch = cycle.Branch(i)
	}
	c.Reset()
	return c
}

// Reset clears every sector field and chart-level input so the next
// computation starts from nothing.
func (c *Chart) Reset() {
	for i := range c.sectors {
		c.sectors[i].reset()
	}
	c.birth, c.hasBirth = 0, false
	c.decade, c.year = Anchor{}, Anchor{}
	c.starIndex = make(map[string]cycle.Branch)
}

// Sector returns the sector for branch b.
func (c *Chart) Sector(b cycle.Branch) *Sector {
	return &c.sectors[cycle.BranchAt(int(b))]
}

// Sectors returns the 12 sectors in canonical branch order.
func (c *Chart) Sectors() []*Sector {
	out := make([]*Sector, len(c.sectors))
	for i := range c.sectors {
		out[i] = &c.sectors[i]
	}
	return out
}

// SectorForRole finds the unique sector carrying role r.
func (c *Chart) SectorForRole(r Role) (*Sector, bool) {
	if !r.Valid() {
		return nil, false
	}
	for i := range c.sectors {
		if c.sectors[i].role == r {
			return &c.sectors[i], true
		}
	}
	return nil, false
}

// SectorOf resolves a star to the sector holding it.
func (c *Chart) SectorOf(star string) (*Sector, bool) {
	b, ok := c.starIndex[star]
	if !ok {
		return nil, false
	}
	return &c.sectors[b], true
}

// Ming returns the Ming sector, if assigned.
func (c *Chart) Ming() (*Sector, bool) {
	for i := range c.sectors {
		if c.sectors[i].isMing {
			return &c.sectors[i], true
		}
	}
	return nil, false
}

// AddStar places name in sector b. Adding a star the sector already holds is
// a no-op; it reports whether anything changed.
func (c *Chart) AddStar(b cycle.Branch, name string) bool {
	s := c.Sector(b)
	if !s.addStar(name) {
		return false
	}
	if _, seen := c.starIndex[name]; !seen {
		c.starIndex[name] = s.branch
	}
	return true
}

// RecordBirthTransformation appends a seeded birth transformation to sector b.
func (c *Chart) RecordBirthTransformation(b cycle.Branch, star string, k Kind) {
	s := c.Sector(b)
	s.birth = append(s.birth, BirthTransformation{Star: star, Kind: k})
}

// SetBirthStem records the stem that seeds birth transformations.
func (c *Chart) SetBirthStem(s cycle.Stem) { c.birth, c.hasBirth = s, true }

// BirthStem returns the birth stem, if set.
func (c *Chart) BirthStem() (cycle.Stem, bool) { return c.birth, c.hasBirth }

// SetLayers records the decade and year layer anchors. They only affect
// relative titles, never placement.
func (c *Chart) SetLayers(decade, year Anchor) { c.decade, c.year = decade, year }

// Decade returns the decade-layer Ming anchor.
func (c *Chart) Decade() Anchor { return c.decade }

// Year returns the year-layer Ming anchor.
func (c *Chart) Year() Anchor { return c.year }

// LayerRole returns the title sector b carries in a layer whose Ming sits on
// layerMing. Titles counter-rotate exactly as in the natal assignment.
func LayerRole(layerMing, b cycle.Branch) Role {
	return RoleAt(int(layerMing) - int(b))
}

// LayerSector returns the sector that carries role r in the layer anchored
// on layerMing.
func (c *Chart) LayerSector(layerMing cycle.Branch, r Role) *Sector {
	return c.Sector(layerMing.Add(-int(r)))
}
