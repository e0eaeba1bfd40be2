// Package analysis derives the fixed flying-star readings that sit beside
// the rule engine: the wealth vault, the mental state of 福德, the yearly
// traffic light, and the borrowed-palace family scan. Every reading is a
// pure function of a computed chart.
package analysis

import (
	"fmt"

	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/cycle"
	"github.com/pcmnking/liangfstar/internal/transform"
)

// Analyzer computes readings against a transformation table.
type Analyzer struct {
	resolver *transform.Resolver
}

// New returns an Analyzer over r, or over the default table when r is nil.
func New(r *transform.Resolver) *Analyzer {
	if r == nil {
		r = transform.NewResolver(nil)
	}
	return &Analyzer{resolver: r}
}

// Report bundles every reading for one chart. Absent readings are nil.
type Report struct {
	Wealth *WealthVault   `json:"wealth,omitempty" yaml:"wealth,omitempty"`
	Mental *MentalState   `json:"mental,omitempty" yaml:"mental,omitempty"`
	Yearly *YearlyFortune `json:"yearly,omitempty" yaml:"yearly,omitempty"`
	Family []FamilyScan   `json:"family,omitempty" yaml:"family,omitempty"`
}

// reportRelations are the relatives scanned in a full report.
var reportRelations = []Relation{RelationSpouse, RelationChild1, RelationFather, RelationMother}

// Report runs every reading.
func (a *Analyzer) Report(c *chart.Chart) Report {
	var r Report
	if w, ok := a.WealthVault(c); ok {
		r.Wealth = &w
	}
	if m, ok := a.MentalState(c); ok {
		r.Mental = &m
	}
	if y, ok := a.YearlyFortune(c); ok {
		r.Yearly = &y
	}
	for _, rel := range reportRelations {
		if f, ok := a.FamilyScan(c, rel); ok {
			r.Family = append(r.Family, f)
		}
	}
	return r
}

// flight resolves where the stem of s sends kind k, with the star involved.
func (a *Analyzer) flight(c *chart.Chart, s *chart.Sector, k chart.Kind) (target *chart.Sector, star string, stem cycle.Stem, ok bool) {
	if s == nil {
		return nil, "", 0, false
	}
	stem, ok = s.Stem()
	if !ok {
		return nil, "", 0, false
	}
	star, _ = a.resolver.Table().Star(stem, k)
	target, ok = a.resolver.FlightTarget(c, stem, k)
	return target, star, stem, ok
}

// selfStar returns the star s self-transforms into kind k, if any.
func (a *Analyzer) selfStar(c *chart.Chart, s *chart.Sector, k chart.Kind) (string, bool) {
	if !a.resolver.IsSelfTransformation(c, s, k) {
		return "", false
	}
	stem, _ := s.Stem()
	return a.resolver.Table().Star(stem, k)
}

func stemLabel(title string, stem cycle.Stem) string {
	return fmt.Sprintf("%s(%s)", title, stem)
}
