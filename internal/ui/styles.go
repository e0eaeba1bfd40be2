package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pcmnking/liangfstar/internal/chart"
)

// Semantic color palette.
var (
	colorPrimary    = lipgloss.Color("#00BFFF") // Cyan, headings
	colorAccent     = lipgloss.Color("#FFD700") // Gold, 權
	colorSuccess    = lipgloss.Color("#00E676") // Green, 祿
	colorDanger     = lipgloss.Color("#FF5252") // Red, 忌
	colorBlue       = lipgloss.Color("#5B8DEF") // Blue, 科
	colorMuted      = lipgloss.Color("#636363")
	colorMutedLight = lipgloss.Color("#8C8C8C")
	colorWhite      = lipgloss.Color("#EEEEEE")
)

// Sector cell dimensions inside the border.
const (
	cellWidth  = 16
	cellHeight = 7
)

var (
	styleCell = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Width(cellWidth).
			Height(cellHeight).
			Padding(0, 1)

	styleCellMing = styleCell.
			BorderForeground(colorPrimary)

	styleCenter = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Width(2*(cellWidth+2) - 2).
			Height(2*(cellHeight+2) - 2).
			Align(lipgloss.Center, lipgloss.Center)

	styleBranch = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	styleRole = lipgloss.NewStyle().
			Foreground(colorPrimary)

	styleLayer = lipgloss.NewStyle().
			Foreground(colorMutedLight)

	styleStar = lipgloss.NewStyle().
			Foreground(colorWhite)

	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)
)

// kindStyles colors each transformation kind.
var kindStyles = map[string]lipgloss.Style{
	chart.KindLu.String():   lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
	chart.KindQuan.String(): lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
	chart.KindKe.String():   lipgloss.NewStyle().Foreground(colorBlue).Bold(true),
	chart.KindJi.String():   lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
}

// severityStyles colors rule severities.
var severityStyles = map[string]lipgloss.Style{
	"high":   lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
	"medium": lipgloss.NewStyle().Foreground(colorAccent),
	"low":    lipgloss.NewStyle().Foreground(colorMutedLight),
}

func kindText(k string) string {
	if s, ok := kindStyles[k]; ok {
		return s.Render(k)
	}
	return k
}

func severityText(sev string) string {
	if s, ok := severityStyles[sev]; ok {
		return s.Render(sev)
	}
	return sev
}
