package analysis

import (
	"fmt"
	"strings"

	"github.com/pcmnking/liangfstar/internal/chart"
)

// Relation names a relative whose chart is borrowed from one of the natal
// sectors.
type Relation string

// Relations.
const (
	RelationFather   Relation = "father"
	RelationMother   Relation = "mother"
	RelationSpouse   Relation = "spouse"
	RelationChild1   Relation = "child_1"
	RelationChild2   Relation = "child_2"
	RelationChild3   Relation = "child_3"
	RelationSibling1 Relation = "sibling_1"
	RelationSibling2 Relation = "sibling_2"
)

type relationInfo struct {
	borrowed chart.Role
	label    string
}

var relationTable = map[Relation]relationInfo{
	RelationFather:   {chart.RoleParents, "父親"},
	RelationMother:   {chart.RoleBrother, "母親"},
	RelationSpouse:   {chart.RoleSpouse, "配偶"},
	RelationChild1:   {chart.RoleChildren, "長子/長女"},
	RelationChild2:   {chart.RoleWealth, "次子/次女"},
	RelationChild3:   {chart.RoleHealth, "三子/三女"},
	RelationSibling1: {chart.RoleBrother, "長兄/長姊"},
	RelationSibling2: {chart.RoleSpouse, "二哥/二姊"},
}

// Relations lists every supported relation in a stable order.
func Relations() []Relation {
	return []Relation{
		RelationFather, RelationMother, RelationSpouse,
		RelationChild1, RelationChild2, RelationChild3,
		RelationSibling1, RelationSibling2,
	}
}

// ParseRelation accepts a relation key in any case ("Child_1", "spouse").
func ParseRelation(s string) (Relation, bool) {
	r := Relation(strings.ToLower(strings.TrimSpace(s)))
	_, ok := relationTable[r]
	return r, ok
}

// Borrowed returns the natal role that stands in as the relative's Ming.
func (r Relation) Borrowed() chart.Role { return relationTable[r].borrowed }

// Label returns the display label of the relation.
func (r Relation) Label() string { return relationTable[r].label }

// FindingKind groups family findings.
type FindingKind string

// Finding kinds.
const (
	FindingWealth   FindingKind = "wealth"
	FindingHealth   FindingKind = "health"
	FindingTension  FindingKind = "tension"
	FindingAffinity FindingKind = "affinity"
	FindingCalm     FindingKind = "calm"
)

// Finding is one observation about a relative.
type Finding struct {
	Kind   FindingKind `json:"kind" yaml:"kind"`
	Text   string      `json:"text" yaml:"text"`
	Reason string      `json:"reason" yaml:"reason"`
}

// FamilyScan is the borrowed-palace reading for one relative.
type FamilyScan struct {
	Relation Relation   `json:"relation" yaml:"relation"`
	Label    string     `json:"label" yaml:"label"`
	Borrowed chart.Role `json:"borrowed" yaml:"borrowed"`
	Findings []Finding  `json:"findings" yaml:"findings"`
}

// Offsets from the borrowed Ming to the relative's own 疾厄 and 田宅
// along the title sequence.
const (
	healthOffset = 5
	vaultOffset  = 9
)

// FamilyScan treats the relative's natal sector as their Ming and reads
// their vault (+9) and health (+5) self-transformations, how their stem
// flies at the natal Ming, and whether the natal Ming's 祿 flies at them.
// There is always at least one finding.
func (a *Analyzer) FamilyScan(c *chart.Chart, rel Relation) (FamilyScan, bool) {
	info, ok := relationTable[rel]
	if !ok {
		return FamilyScan{}, false
	}
	borrowed, ok := c.SectorForRole(info.borrowed)
	if !ok {
		return FamilyScan{}, false
	}
	scan := FamilyScan{Relation: rel, Label: info.label, Borrowed: info.borrowed}
	add := func(k FindingKind, text, reason string) {
		scan.Findings = append(scan.Findings, Finding{Kind: k, Text: text, Reason: reason})
	}

	vaultRole := info.borrowed.Add(vaultOffset)
	if vault, ok := c.SectorForRole(vaultRole); ok {
		stem, _ := vault.Stem()
		if star, ok := a.selfStar(c, vault, chart.KindJi); ok {
			add(FindingWealth,
				fmt.Sprintf("庫位(%s)自化忌，%s理財能力較弱，較難存錢（財庫破洞）。", vaultRole, info.label),
				fmt.Sprintf("%s %s自化忌", stemLabel(vaultRole.Title(), stem), star))
		} else if star, ok := a.selfStar(c, vault, chart.KindLu); ok {
			add(FindingWealth,
				fmt.Sprintf("庫位(%s)自化祿，%s現金流充裕，花錢大方。", vaultRole, info.label),
				fmt.Sprintf("%s %s自化祿", stemLabel(vaultRole.Title(), stem), star))
		}
	}

	healthRole := info.borrowed.Add(healthOffset)
	if health, ok := c.SectorForRole(healthRole); ok {
		stem, _ := health.Stem()
		if star, ok := a.selfStar(c, health, chart.KindJi); ok {
			add(FindingHealth,
				fmt.Sprintf("疾厄位(%s)自化忌，%s體質較弱或情緒起伏大。", healthRole, info.label),
				fmt.Sprintf("%s %s自化忌", stemLabel(healthRole.Title(), stem), star))
		}
	}

	who := fmt.Sprintf("%s(%s)", info.label, info.borrowed)
	if ji, star, _, ok := a.flight(c, borrowed, chart.KindJi); ok {
		switch ji.Role() {
		case chart.RoleMing:
			add(FindingTension,
				fmt.Sprintf("該親屬化忌入本命，%s會帶給你壓力或責任。", info.label),
				fmt.Sprintf("%s %s化忌 入 命宮", who, star))
		case chart.RoleMigration:
			add(FindingTension,
				fmt.Sprintf("該親屬化忌沖本命，%s與你緣分較薄或容易起衝突。", info.label),
				fmt.Sprintf("%s %s化忌 沖 命宮", who, star))
		}
	}
	if lu, star, _, ok := a.flight(c, borrowed, chart.KindLu); ok && lu.Role() == chart.RoleMing {
		add(FindingAffinity,
			fmt.Sprintf("該親屬化祿入本命，%s對你很好，是你命中的貴人。", info.label),
			fmt.Sprintf("%s %s化祿 入 命宮", who, star))
	}

	if ming, ok := c.Ming(); ok {
		if lu, star, stem, ok := a.flight(c, ming, chart.KindLu); ok && lu.Role() == info.borrowed {
			add(FindingAffinity,
				fmt.Sprintf("你化祿入%s，代表你對%s特別疼愛或照顧。", info.borrowed, info.label),
				fmt.Sprintf("%s %s化祿 入 %s", stemLabel("命宮", stem), star, info.borrowed))
		}
	}

	if len(scan.Findings) == 0 {
		add(FindingCalm, "關係與運勢平穩，無明顯沖剋或重大變動。", "相關宮位無自化忌，互無忌沖")
	}
	return scan, true
}
