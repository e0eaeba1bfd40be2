package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pcmnking/liangfstar/internal/analysis"
	"github.com/pcmnking/liangfstar/internal/batch"
	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/engine"
	"github.com/pcmnking/liangfstar/internal/rules"
	"github.com/pcmnking/liangfstar/internal/transform"
)

// gridRing lists the perimeter of the 4x4 board clockwise from the top-left
// corner, as branch symbols.
var (
	gridTop    = []string{"巳", "午", "未", "申"}
	gridLeft   = []string{"辰", "卯"}
	gridRight  = []string{"酉", "戌"}
	gridBottom = []string{"寅", "丑", "子", "亥"}
)

// Grid renders the chart as the traditional 4x4 board: twelve sectors on
// the perimeter, the birth stem and layer anchors in the middle.
func Grid(snap chart.Snapshot) string {
	byBranch := make(map[string]chart.SectorSnapshot, len(snap.Sectors))
	for _, s := range snap.Sectors {
		byBranch[s.Branch] = s
	}
	row := func(branches []string) string {
		cells := make([]string, 0, len(branches))
		for _, b := range branches {
			cells = append(cells, cell(byBranch[b], b))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	column := func(branches []string) string {
		cells := make([]string, 0, len(branches))
		for _, b := range branches {
			cells = append(cells, cell(byBranch[b], b))
		}
		return lipgloss.JoinVertical(lipgloss.Left, cells...)
	}

	middle := lipgloss.JoinHorizontal(lipgloss.Top,
		column(gridLeft),
		styleCenter.Render(centerText(snap)),
		column(gridRight),
	)
	return lipgloss.JoinVertical(lipgloss.Left, row(gridTop), middle, row(gridBottom))
}

func cell(s chart.SectorSnapshot, branch string) string {
	var lines []string
	head := styleBranch.Render(branch + s.Stem)
	if s.Role != "" {
		head += " " + styleRole.Render(s.Role)
	}
	lines = append(lines, head)

	birth := make(map[string]string, len(s.Birth))
	for _, b := range s.Birth {
		birth[b.Star] = b.Kind
	}
	for _, star := range s.Stars {
		line := styleStar.Render(star)
		if k, ok := birth[star]; ok {
			line += kindText(k)
		}
		lines = append(lines, line)
	}

	var layers []string
	if s.DecadeRole != "" {
		layers = append(layers, "限"+s.DecadeRole)
	}
	if s.YearRole != "" {
		layers = append(layers, "年"+s.YearRole)
	}
	if len(layers) > 0 {
		lines = append(lines, styleLayer.Render(strings.Join(layers, " ")))
	}

	style := styleCell
	if s.Ming {
		style = styleCellMing
	}
	return style.Render(strings.Join(lines, "\n"))
}

func centerText(snap chart.Snapshot) string {
	lines := []string{styleTitle.Render("飛星四化")}
	if snap.BirthStem != "" {
		lines = append(lines, "生年 "+snap.BirthStem)
	}
	if snap.Decade != "" {
		lines = append(lines, "大限 "+snap.Decade)
	}
	if snap.Year != "" {
		lines = append(lines, "流年 "+snap.Year)
	}
	lines = append(lines, "", kindText("祿")+" "+kindText("權")+" "+kindText("科")+" "+kindText("忌"))
	return strings.Join(lines, "\n")
}

func newTable() table.Writer {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	return w
}

// SectorTable renders one row per sector in display order.
func SectorTable(snap chart.Snapshot) string {
	w := newTable()
	w.AppendHeader(table.Row{"宮位", "干支", "主星", "生年四化", "大限", "流年"})
	for _, s := range displayOrder(snap) {
		var birth []string
		for _, b := range s.Birth {
			birth = append(birth, b.Star+kindText(b.Kind))
		}
		role := s.Role
		if s.Ming {
			role = styleTitle.Render(role)
		}
		w.AppendRow(table.Row{role, s.Stem + s.Branch, strings.Join(s.Stars, " "), strings.Join(birth, " "), s.DecadeRole, s.YearRole})
	}
	return w.Render()
}

// displayOrder reorders sectors so 寅 comes first.
func displayOrder(snap chart.Snapshot) []chart.SectorSnapshot {
	out := make([]chart.SectorSnapshot, 0, len(snap.Sectors))
	for i := range snap.Sectors {
		out = append(out, snap.Sectors[(i+2)%len(snap.Sectors)])
	}
	return out
}

// FlightTable renders the flights of one sector with their landing roles.
func FlightTable(c *chart.Chart, flights []transform.Flight) string {
	w := newTable()
	w.AppendHeader(table.Row{"四化", "星", "入", "宮位", ""})
	for _, f := range flights {
		target, role, note := "-", "-", "未安星"
		if f.Landed {
			target = f.Target.String()
			role = c.Sector(f.Target).Role().Title()
			note = ""
			if f.Self {
				note = "自化"
			}
		}
		w.AppendRow(table.Row{f.Stem.String() + kindText(f.Kind.String()), f.Star, target, role, note})
	}
	return w.Render()
}

// MatchTable renders matched rules with their insights.
func MatchTable(matches []engine.Match) string {
	w := newTable()
	w.AppendHeader(table.Row{"ID", "格局", "嚴重度", "觸發", "解讀"})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 28},
		{Number: 5, WidthMax: 40},
	})
	for _, m := range matches {
		w.AppendRow(table.Row{m.ID, m.Label, severityText(m.Severity), strings.Join(m.Trace, "\n"), m.Content.Insight})
	}
	if len(matches) == 0 {
		w.AppendFooter(table.Row{"", "no rule matched"})
	}
	return w.Render()
}

// RuleTable renders a rule set for listing.
func RuleTable(rs *rules.RuleSet) string {
	w := newTable()
	w.SetTitle(rs.Source)
	w.AppendHeader(table.Row{"ID", "格局", "分類", "嚴重度", "觸發"})
	for _, r := range rs.Rules {
		descs := make([]string, 0, len(r.Triggers))
		for _, t := range r.Triggers {
			descs = append(descs, t.Describe())
		}
		w.AppendRow(table.Row{r.ID, r.Name, r.Category, severityText(r.Severity), strings.Join(descs, " + ")})
	}
	w.AppendFooter(table.Row{"", fmt.Sprintf("%d rules", rs.Len())})
	return w.Render()
}

// BatchTable renders one row per batch result.
func BatchTable(results []batch.Result) string {
	w := newTable()
	w.AppendHeader(table.Row{"chart", "matches", "財庫", "心性", "流年", "error"})
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	for _, r := range results {
		if r.Err != nil {
			w.AppendRow(table.Row{r.Name, "-", "", "", "", r.Error})
			continue
		}
		ids := make([]string, 0, len(r.Matches))
		for _, m := range r.Matches {
			ids = append(ids, m.ID)
		}
		w.AppendRow(table.Row{r.Name, strings.Join(ids, ", "), wealthCell(r.Analysis), mentalCell(r.Analysis), yearlyCell(r.Analysis), ""})
	}
	return w.Render()
}

func wealthCell(r analysis.Report) string {
	if r.Wealth == nil {
		return ""
	}
	return string(r.Wealth.Grade)
}

func mentalCell(r analysis.Report) string {
	if r.Mental == nil {
		return ""
	}
	return r.Mental.Label
}

func yearlyCell(r analysis.Report) string {
	if r.Yearly == nil {
		return ""
	}
	return fmt.Sprintf("%s %d", r.Yearly.Light, r.Yearly.Score)
}

// ReportText renders the readings of an analysis report as plain sections.
func ReportText(r analysis.Report) string {
	var sb strings.Builder
	section := func(title, body string, reasons []string) {
		sb.WriteString(styleTitle.Render(title) + "\n")
		sb.WriteString(body + "\n")
		for _, reason := range reasons {
			sb.WriteString("  · " + reason + "\n")
		}
		sb.WriteString("\n")
	}
	if w := r.Wealth; w != nil {
		section(fmt.Sprintf("財庫 %s (%d★)", w.Result, w.Stars), w.Advice, w.Reason)
	}
	if m := r.Mental; m != nil {
		section(fmt.Sprintf("心性 %s", m.Label), m.Advice, []string{m.Reason})
	}
	if y := r.Yearly; y != nil {
		section(fmt.Sprintf("流年 %s %s %d", y.Year, y.Light, y.Score), y.Summary+"\n"+y.Advice, []string{y.Reason})
	}
	for _, f := range r.Family {
		var lines []string
		for _, finding := range f.Findings {
			lines = append(lines, finding.Text)
		}
		section("六親 "+f.Label, "借"+f.Borrowed.Title()+"為命", lines)
	}
	return strings.TrimRight(sb.String(), "\n")
}
