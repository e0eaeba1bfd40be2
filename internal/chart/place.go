package chart

import (
	"fmt"
	"slices"

	"github.com/pcmnking/liangfstar/internal/cycle"
)

// Manual star names. These are placed by explicit branch choice rather than
// by series offset.
const (
	StarWenqu    = "文曲"
	StarWenchang = "文昌"
	StarZuofu    = "左輔"
	StarYoubi    = "右弼"
)

// ManualStars lists the stars that accept manual placement, in input order.
func ManualStars() []string {
	return []string{StarWenqu, StarWenchang, StarZuofu, StarYoubi}
}

// SeriesStar is a star placed at a fixed offset from its series anchor.
type SeriesStar struct {
	Name   string
	Offset int
}

var primarySeries = []SeriesStar{
	{"紫微", 0},
	{"天機", -1},
	{"太陽", -3},
	{"武曲", -4},
	{"天同", -5},
	{"廉貞", -8},
}

var secondarySeries = []SeriesStar{
	{"天府", 0},
	{"太陰", 1},
	{"貪狼", 2},
	{"巨門", 3},
	{"天相", 4},
	{"天梁", 5},
	{"七殺", 6},
	{"破軍", 10},
}

// PrimarySeries returns a copy of the 紫微 series table.
func PrimarySeries() []SeriesStar { return slices.Clone(primarySeries) }

// SecondarySeries returns a copy of the 天府 series table.
func SecondarySeries() []SeriesStar { return slices.Clone(secondarySeries) }

// SecondaryAnchor derives the 天府 anchor from the 紫微 anchor:
// (4 - primary + 12) mod 12.
func SecondaryAnchor(primary cycle.Branch) cycle.Branch {
	return cycle.BranchAt(4 - primary.Index() + cycle.BranchCount)
}

// Manual is a single manual placement.
type Manual struct {
	Star   string
	Branch cycle.Branch
}

// Placer places the two star series. The zero value is not usable; use
// NewPlacer.
type Placer struct {
	primary   []SeriesStar
	secondary []SeriesStar
}

// NewPlacer returns a Placer sharing the static series tables.
func NewPlacer() *Placer {
	return &Placer{primary: primarySeries, secondary: secondarySeries}
}

// Place marks the primary anchor and places both series. Target sectors are
// anchor+offset under floored modulo, so negative and oversized offsets are
// both fine. Repeated placement is idempotent.
func (p *Placer) Place(c *Chart, primary cycle.Branch) error {
	if !primary.Valid() {
		return fmt.Errorf("%w: primary anchor %d", cycle.ErrInvalidBranch, int(primary))
	}
	c.Sector(primary).isPrimary = true
	placeSeries(c, primary, p.primary)
	placeSeries(c, SecondaryAnchor(primary), p.secondary)
	return nil
}

// PlaceManual applies manual placements unconditionally, after the series.
func (p *Placer) PlaceManual(c *Chart, placements []Manual) {
	for _, m := range placements {
		if m.Star == "" || !m.Branch.Valid() {
			continue
		}
		c.AddStar(m.Branch, m.Star)
	}
}

func placeSeries(c *Chart, anchor cycle.Branch, series []SeriesStar) {
	for _, s := range series {
		c.AddStar(anchor.Add(s.Offset), s.Name)
	}
}
