// Package transform resolves the four transformations (祿權科忌) of any
// governing stem against an already-placed chart: where each transformed
// star lands (flight), whether it lands back on its source
// (self-transformation), and which sectors receive the birth-stem pairs.
package transform

import (
	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/cycle"
)

// Transformation is one transformed star tagged with its kind.
type Transformation struct {
	Star string     `json:"star"`
	Kind chart.Kind `json:"kind"`
}

// Table maps each stem to its 4 transformed stars, positionally tagged
// 祿, 權, 科, 忌.
type Table struct {
	stars [cycle.StemCount][chart.KindCount]string
}

var defaultTable = &Table{stars: [cycle.StemCount][chart.KindCount]string{
	{"廉貞", "破軍", "武曲", "太陽"}, // 甲
	{"天機", "天梁", "紫微", "太陰"}, // 乙
	{"天同", "天機", "文昌", "廉貞"}, // 丙
	{"太陰", "天同", "天機", "巨門"}, // 丁
	{"貪狼", "太陰", "右弼", "天機"}, // 戊
	{"武曲", "貪狼", "天梁", "文曲"}, // 己
	{"太陽", "武曲", "太陰", "天同"}, // 庚
	{"巨門", "太陽", "文曲", "文昌"}, // 辛
	{"天梁", "紫微", "左輔", "武曲"}, // 壬
	{"破軍", "巨門", "太陰", "貪狼"}, // 癸
}}

// DefaultTable returns the shared static table. Callers must treat it as
// read-only.
func DefaultTable() *Table { return defaultTable }

// Star returns the star that stem transforms into kind k.
func (t *Table) Star(stem cycle.Stem, k chart.Kind) (string, bool) {
	if !stem.Valid() || !k.Valid() {
		return "", false
	}
	return t.stars[stem][k], true
}

// For returns the 4 transformations of stem in kind order, or nil for an
// out-of-cycle stem.
func (t *Table) For(stem cycle.Stem) []Transformation {
	if !stem.Valid() {
		return nil
	}
	out := make([]Transformation, 0, chart.KindCount)
	for _, k := range chart.Kinds() {
		out = append(out, Transformation{Star: t.stars[stem][k], Kind: k})
	}
	return out
}

// KindOf reports which kind, if any, stem assigns to star.
func (t *Table) KindOf(stem cycle.Stem, star string) (chart.Kind, bool) {
	if !stem.Valid() {
		return 0, false
	}
	for _, k := range chart.Kinds() {
		if t.stars[stem][k] == star {
			return k, true
		}
	}
	return 0, false
}
