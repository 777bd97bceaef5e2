// Package report renders a terminal summary of a viewer session.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"ctviewer/internal/models"
	"ctviewer/pkg/scene"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Summary is what the report shows.
type Summary struct {
	Mode    string
	Volume  models.Dims
	Range   [2]float64
	Objects []models.DetectedObject

	// Labels holds the flag text of each object, by position
	Labels []string

	Primitives []string
	Sliders    []*scene.RecordedSlider
}

// Render formats s for a terminal.
func Render(s Summary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ctviewer") + "\n\n")
	field := func(k, v string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", k)) + valueStyle.Render(v) + "\n")
	}
	field("mode", s.Mode)
	field("volume", fmt.Sprintf("%d x %d x %d", s.Volume[0], s.Volume[1], s.Volume[2]))
	field("range", fmt.Sprintf("%g .. %g", s.Range[0], s.Range[1]))
	field("primitives", strings.Join(s.Primitives, ", "))

	enabled := 0
	for _, sl := range s.Sliders {
		if sl.Enabled() {
			enabled++
		}
	}
	field("sliders", fmt.Sprintf("%d shown, %d built", enabled, len(s.Sliders)))
	b.WriteString("\n")

	if len(s.Objects) == 0 {
		b.WriteString(emptyStyle.Render("(no detections)") + "\n")
		return b.String()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(labelStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("ID", "CLASS", "LABEL", "BOX", "ANCHOR")

	for i, o := range s.Objects {
		label := ""
		if i < len(s.Labels) {
			label = s.Labels[i]
		}
		t.Row(
			fmt.Sprint(o.ID),
			fmt.Sprint(o.ClassLabel),
			label,
			o.Box.String(),
			fmt.Sprintf("(%.1f, %.1f, %.1f)", o.Anchor.X, o.Anchor.Y, o.Anchor.Z),
		)
	}
	b.WriteString(t.Render() + "\n")
	return b.String()
}
