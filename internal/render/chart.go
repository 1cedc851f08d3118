package render

import (
	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskview/internal/source"
)

var barPalette = []lipgloss.Color{colorPrimary, colorSecondary, colorSuccess, colorWarning}

// ProjectChart draws one bar per project, sized by its pending task count.
func ProjectChart(projects []source.Project, width, height int) string {
	if len(projects) == 0 {
		return mutedStyle.Render("No projects with pending tasks.")
	}
	width = max(width, 20)
	height = max(height, 6)

	chart := barchart.New(width, height)
	bars := make([]barchart.BarData, 0, len(projects))
	for i, p := range projects {
		style := lipgloss.NewStyle().Foreground(barPalette[i%len(barPalette)])
		bars = append(bars, barchart.BarData{
			Label:  p.Name,
			Values: []barchart.BarValue{{Name: p.Name, Value: float64(p.Pending), Style: style}},
		})
	}
	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}
