package analysis

import (
	"fmt"

	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/cycle"
)

// Light is the yearly traffic light.
type Light string

// Traffic lights.
const (
	LightGreen  Light = "green"
	LightYellow Light = "yellow"
	LightRed    Light = "red"
)

// Scores per light.
const (
	scoreGreen  = 90
	scoreYellow = 70
	scoreRed    = 50
)

// YearlyFortune is the decade-to-year traffic light reading.
type YearlyFortune struct {
	Year    cycle.Branch `json:"year" yaml:"year"`
	Light   Light        `json:"light" yaml:"light"`
	Score   int          `json:"score" yaml:"score"`
	Overlap chart.Role   `json:"overlap" yaml:"overlap"`
	Theme   string       `json:"theme" yaml:"theme"`
	Summary string       `json:"summary" yaml:"summary"`
	Advice  string       `json:"advice" yaml:"advice"`
	Reason  string       `json:"reason" yaml:"reason"`
}

var lightSummary = map[Light]string{
	LightGreen:  "【衝刺年】大限化祿進入或照流年命宮，機會主動上門。適合創業、求職、擴大投資。",
	LightYellow: "【耕耘年】運勢平穩，一分耕耘一分收穫。適合進修、調理身體，為明年做準備。",
	LightRed:    "【防守年】流年命宮正當大限化忌之沖。多看少做，嚴禁重大投資、借貸或隨意離職。",
}

// YearlyFortune grades the year layer against the decade layer. The decade
// Ming stem's 祿 entering or facing the year Ming lights green; its 忌
// landing opposite the year Ming lights red and wins over green. Both layer
// anchors must be set.
func (a *Analyzer) YearlyFortune(c *chart.Chart) (YearlyFortune, bool) {
	decade, year := c.Decade(), c.Year()
	if !decade.Set || !year.Set {
		return YearlyFortune{}, false
	}
	decadeStem, ok := c.Sector(decade.Branch).Stem()
	if !ok {
		return YearlyFortune{}, false
	}
	yearSector := c.Sector(year.Branch)

	y := YearlyFortune{
		Year:    year.Branch,
		Light:   LightYellow,
		Score:   scoreYellow,
		Overlap: yearSector.Role(),
		Theme:   fmt.Sprintf("流年命宮 重疊 本命%s宮", yearSector.Role()),
		Reason:  fmt.Sprintf("大限%s干 祿忌皆未沖照流年命宮", decadeStem),
	}

	luStar, _ := a.resolver.Table().Star(decadeStem, chart.KindLu)
	if lu, ok := a.resolver.FlightTarget(c, decadeStem, chart.KindLu); ok {
		enter := lu.Branch() == year.Branch
		if enter || lu.Branch().IsOpposite(year.Branch) {
			verb := "照"
			if enter {
				verb = "入"
			}
			y.Light, y.Score = LightGreen, scoreGreen
			y.Reason = fmt.Sprintf("大限%s干 %s化祿 %s 流年命宮(%s)", decadeStem, luStar, verb, year.Branch)
		}
	}

	jiStar, _ := a.resolver.Table().Star(decadeStem, chart.KindJi)
	if ji, ok := a.resolver.FlightTarget(c, decadeStem, chart.KindJi); ok && ji.Branch().IsOpposite(year.Branch) {
		y.Light, y.Score = LightRed, scoreRed
		y.Reason = fmt.Sprintf("大限%s干 %s化忌 沖 流年命宮(%s)", decadeStem, jiStar, year.Branch)
	}

	y.Summary = lightSummary[y.Light]
	y.Advice = focusAdvice(y.Overlap, y.Light, y.Score)
	return y, true
}

// focusAdvice picks the advice for the natal title the year Ming overlaps.
func focusAdvice(overlap chart.Role, light Light, score int) string {
	pick := func(green, red, yellow string) string {
		switch light {
		case LightGreen:
			return green
		case LightRed:
			return red
		default:
			return yellow
		}
	}
	switch overlap {
	case chart.RoleWealth, chart.RoleProperty:
		return pick(
			"今年重點在『錢』。流年重疊財庫且亮綠燈，投資置產獲利機率高。",
			"今年重點在『錢』。流年重疊財庫但亮紅燈，務必守成，慎防破財。",
			"今年重點在『錢』。財運平穩，宜多儲蓄。",
		)
	case chart.RoleSpouse, chart.RoleChildren, chart.RoleFriends:
		return pick(
			"今年重點在『情』。單身者有良緣，人際關係順遂。",
			"今年重點在『情』。注意感情爭吵或人際是非。",
			"今年重點在『情』。人際平順，多陪伴家人。",
		)
	case chart.RoleHealth, chart.RoleParents:
		return pick(
			"今年重點在『身』。身體狀況良好，適合健身或健康檢查。",
			"今年重點在『身』。抵抗力較弱，留意舊疾復發或意外。",
			"今年重點在『身』。平平安安，注意作息。",
		)
	}
	tail := "步步為營，持盈保泰。"
	if score >= 80 {
		tail = "吉星高照，諸事順遂。"
	}
	return fmt.Sprintf("流年重疊本命%s，今年生活重心將圍繞在該領域展開。%s", overlap, tail)
}
