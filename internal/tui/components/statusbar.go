package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/dataneko/internal/tui/theme"
)

// KeyHint is one entry in the status bar, rendered as "[key]label".
type KeyHint struct {
	Key   string
	Label string
}

// RenderStatusBar renders the bottom bar: key hints on the left and the
// data age on the right.
func RenderStatusBar(width int, hints []KeyHint, dataAge string) string {
	t := theme.Active
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyStyle.Render("["+h.Key+"]")+labelStyle.Render(h.Label))
	}
	left := " " + strings.Join(parts, "  ")
	right := ""
	if dataAge != "" {
		right = labelStyle.Render("Data: "+dataAge) + " "
	}

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", padding) + right
}
