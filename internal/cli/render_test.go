package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Daily",
		Headers: []string{"Day", "WiFi", "WWAN"},
		Rows: [][]string{
			{"Mon", "1.0 GiB", "12 MiB"},
			{"---"},
			{"Total", "1.0 GiB", "12 MiB"},
		},
	})
	require.Contains(t, out, "Daily")
	require.Contains(t, out, "WWAN")
	require.Contains(t, out, "Total")
	require.Equal(t, 8, strings.Count(out, "\n"))
	require.Empty(t, RenderTable(Table{}))
}

func TestRenderSparkline(t *testing.T) {
	require.Equal(t, "▁▄█", RenderSparkline([]float64{0, 1, 2}))
	require.Equal(t, "▁▁", RenderSparkline([]float64{0, 0}))
	require.Empty(t, RenderSparkline(nil))
}

func TestRenderPlanBar(t *testing.T) {
	require.Empty(t, RenderPlanBar(1, 0, 10))
	out := RenderPlanBar(2.5, 5, 10)
	require.Contains(t, out, "2.50 GB / 5 GB")
	require.Equal(t, 5, strings.Count(out, "█"))
	require.Equal(t, 10, strings.Count(RenderPlanBar(9, 5, 10), "█"))
}

func TestRenderUsageBar(t *testing.T) {
	require.Contains(t, RenderUsageBar("09", 0, 0, 0, 20), "·")
	out := RenderUsageBar("09", 512, 512, 1024, 20)
	require.Equal(t, 20, strings.Count(out, "█"))
	require.Contains(t, out, "1.0 KiB")
}
