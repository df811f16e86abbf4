package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/dataneko/internal/tui/theme"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	widths := LayoutRow(80, 3)
	require.Equal(t, []int{27, 27, 26}, widths)
	require.Nil(t, LayoutRow(80, 0))
}

func TestCardRowMatchesTallestCard(t *testing.T) {
	theme.SetActive("flexoki-dark")

	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "1\n2\n3\n4\n5", 22)
	tallLines := strings.Count(tall, "\n") + 1
	require.Less(t, strings.Count(short, "\n")+1, tallLines)

	joined := CardRow([]string{tall, short})
	require.Equal(t, tallLines, strings.Count(joined, "\n")+1)
	require.Equal(t, 44, lipgloss.Width(joined))
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Points", Value: "1,200 pt", Color: theme.Active.Points},
		{Label: "Mobile", Value: "2.1 GB", Detail: "of 5 GB"},
	}, 60)
	require.Equal(t, 60, lipgloss.Width(row))
	require.Contains(t, row, "1,200 pt")
	require.Contains(t, row, "of 5 GB")
	require.Empty(t, MetricCardRow(nil, 60))
}

func TestSparkline(t *testing.T) {
	out := Sparkline([]float64{0, 1, 2, 4}, theme.Active.Wifi)
	require.Contains(t, out, "▁")
	require.Contains(t, out, "█")
	require.Empty(t, Sparkline(nil, theme.Active.Wifi))
}

func TestStackedColumnsShape(t *testing.T) {
	wifi := make([]float64, 24)
	wwan := make([]float64, 24)
	wifi[8], wwan[8] = 1, 1
	wifi[20] = 0.5

	out := StackedColumns(wifi, wwan, 4)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5) // 4 rows + axis
	for _, l := range lines {
		require.Equal(t, 47, lipgloss.Width(l))
	}
	require.Contains(t, lines[4], "18")
	require.Empty(t, StackedColumns(nil, nil, 4))
}

func TestGaugeClampsAndCaptions(t *testing.T) {
	g := Gauge("Plan", 1.7, "5.0 GB left", 8, 20, false)
	require.Contains(t, g, "100%")
	require.Contains(t, g, "5.0 GB left")

	g = Gauge("Stamina", -1, "", 8, 20, true)
	require.Contains(t, g, "  0%")
}

func TestStatusBarFillsWidth(t *testing.T) {
	bar := RenderStatusBar(60, []KeyHint{{"f", "eed"}, {"q", "uit"}}, "2 minutes ago")
	require.Equal(t, 60, lipgloss.Width(bar))
	require.Contains(t, bar, "Data: 2 minutes ago")
}
