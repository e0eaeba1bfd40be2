package transform

import (
	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/cycle"
)

// Resolver answers flight and self-transformation queries. It holds no
// per-chart state and is safe to share.
type Resolver struct {
	table *Table
}

// NewResolver returns a Resolver over t, or over DefaultTable when t is nil.
func NewResolver(t *Table) *Resolver {
	if t == nil {
		t = defaultTable
	}
	return &Resolver{table: t}
}

// Table exposes the resolver's transformation table.
func (r *Resolver) Table() *Table { return r.table }

// BirthTransformationsFor returns the 4 pairs of the birth stem and appends
// each pair to the sector currently holding its star. Stars that were never
// placed are skipped. Seeding happens once per computation: if the chart
// already carries birth transformations nothing is recorded again.
func (r *Resolver) BirthTransformationsFor(c *chart.Chart, birth cycle.Stem) []Transformation {
	pairs := r.table.For(birth)
	if seeded(c) {
		return pairs
	}
	for _, p := range pairs {
		s, ok := c.SectorOf(p.Star)
		if !ok {
			continue
		}
		c.RecordBirthTransformation(s.Branch(), p.Star, p.Kind)
	}
	return pairs
}

func seeded(c *chart.Chart) bool {
	for _, s := range c.Sectors() {
		if len(s.BirthTransformations()) > 0 {
			return true
		}
	}
	return false
}

// FlightTarget returns the sector holding the star that stem transforms into
// kind k, or false when that star is unplaced.
func (r *Resolver) FlightTarget(c *chart.Chart, stem cycle.Stem, k chart.Kind) (*chart.Sector, bool) {
	star, ok := r.table.Star(stem, k)
	if !ok {
		return nil, false
	}
	return c.SectorOf(star)
}

// IsSelfTransformation reports whether the sector's own stem transforms a
// star of kind k that sits in the sector itself.
func (r *Resolver) IsSelfTransformation(c *chart.Chart, s *chart.Sector, k chart.Kind) bool {
	if s == nil {
		return false
	}
	stem, ok := s.Stem()
	if !ok {
		return false
	}
	target, ok := r.FlightTarget(c, stem, k)
	return ok && target.Branch() == s.Branch()
}

// Flight describes one outgoing transformation of a sector.
type Flight struct {
	Source cycle.Branch
	Stem   cycle.Stem
	Star   string
	Kind   chart.Kind
	Target cycle.Branch
	Landed bool // false when the star is unplaced
	Self   bool
}

// Flights returns the 4 outgoing flights of sector s in kind order. A sector
// without a governing stem has none.
func (r *Resolver) Flights(c *chart.Chart, s *chart.Sector) []Flight {
	stem, ok := s.Stem()
	if !ok {
		return nil
	}
	var out []Flight
	for _, t := range r.table.For(stem) {
		f := Flight{Source: s.Branch(), Stem: stem, Star: t.Star, Kind: t.Kind}
		if target, ok := c.SectorOf(t.Star); ok {
			f.Target = target.Branch()
			f.Landed = true
			f.Self = target.Branch() == s.Branch()
		}
		out = append(out, f)
	}
	return out
}

// Arrival is a flight seen from its landing side.
type Arrival struct {
	Source cycle.Branch
	Stem   cycle.Stem
	Kind   chart.Kind
}

// Incoming lists every sector whose stem transforms star, in canonical
// branch order. The star need not be placed.
func (r *Resolver) Incoming(c *chart.Chart, star string) []Arrival {
	var out []Arrival
	for _, s := range c.Sectors() {
		stem, ok := s.Stem()
		if !ok {
			continue
		}
		if k, ok := r.table.KindOf(stem, star); ok {
			out = append(out, Arrival{Source: s.Branch(), Stem: stem, Kind: k})
		}
	}
	return out
}

// LayerSelfMatches returns, in role order, the titles whose layer-relative
// sector (layer Ming on layerMing) flies any transformation into the natal
// sector carrying the same title.
func (r *Resolver) LayerSelfMatches(c *chart.Chart, layerMing cycle.Branch) []chart.Role {
	var out []chart.Role
	for _, role := range chart.Roles() {
		src := c.LayerSector(layerMing, role)
		stem, ok := src.Stem()
		if !ok {
			continue
		}
		for _, t := range r.table.For(stem) {
			target, ok := c.SectorOf(t.Star)
			if ok && target.Role() == role {
				out = append(out, role)
				break
			}
		}
	}
	return out
}
