package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/dataneko/internal/tui/theme"
)

// Gauge renders a labeled bar for a 0-1 fill level followed by a caption.
// With invert set, a full bar is good (stamina) rather than alarming (plan use).
func Gauge(label string, pct float64, caption string, labelW, barWidth int, invert bool) string {
	t := theme.Active
	pct = max(0, min(1, pct))
	color := t.ForLevel(pct, invert)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	captionStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	out := labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + " " +
		bar.ViewAs(pct) + " " +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
	if caption != "" {
		out += "  " + captionStyle.Render(caption)
	}
	return out
}
