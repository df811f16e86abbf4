package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/dataneko/internal/tui/theme"
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = max(0, min(len(blocks)-1, idx))
		buf.WriteRune(blocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(buf.String())
}

// StackedColumns renders one column per index with the WWAN share stacked
// under the WiFi share, height rows tall. Columns are one cell wide with a
// one cell gap; labels every six columns go underneath.
func StackedColumns(wifi, wwan []float64, height int) string {
	n := min(len(wifi), len(wwan))
	if n == 0 || height < 1 {
		return ""
	}
	t := theme.Active

	peak := 0.0
	for i := 0; i < n; i++ {
		peak = max(peak, wifi[i]+wwan[i])
	}
	if peak == 0 {
		peak = 1
	}

	// Cells per column, in eighths of a row.
	total := make([]int, n)
	lower := make([]int, n)
	for i := 0; i < n; i++ {
		total[i] = int((wifi[i] + wwan[i]) / peak * float64(height*8))
		lower[i] = int(wwan[i] / peak * float64(height*8))
	}

	wifiStyle := lipgloss.NewStyle().Foreground(t.Wifi)
	wwanStyle := lipgloss.NewStyle().Foreground(t.WWAN)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	for row := height - 1; row >= 0; row-- {
		base := row * 8
		for i := 0; i < n; i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			fill := total[i] - base
			if fill <= 0 {
				b.WriteByte(' ')
				continue
			}
			ch := string(blocks[min(fill, 8)-1])
			if lower[i] > base {
				b.WriteString(wwanStyle.Render(ch))
			} else {
				b.WriteString(wifiStyle.Render(ch))
			}
		}
		b.WriteByte('\n')
	}

	labels := make([]byte, 2*n-1)
	for i := range labels {
		labels[i] = ' '
	}
	for i := 0; i < n; i += 6 {
		copy(labels[2*i:], strconv.Itoa(i))
	}
	b.WriteString(axisStyle.Render(string(labels)))
	return b.String()
}
