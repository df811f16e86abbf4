package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dataneko/internal/cli"
)

var flagHourlyDate string

var hourlyCmd = &cobra.Command{
	Use:   "hourly",
	Short: "Usage by hour of day",
	RunE:  runHourly,
}

func init() {
	hourlyCmd.Flags().StringVar(&flagHourlyDate, "date", "", "Day to show (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(hourlyCmd)
}

func runHourly(_ *cobra.Command, _ []string) error {
	date, err := parseDate(flagHourlyDate)
	if err != nil {
		return err
	}
	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	hours, err := e.usage.Hourly(ctx, date)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("USAGE BY HOUR  %s (local time)", date.Format("Mon 2006-01-02"))))
	fmt.Println()

	// Find max for bar scaling
	var peak uint64
	var wifi, wwan uint64
	peakHour := 0
	for _, h := range hours {
		total := h.WifiBytes + h.WWANBytes
		if total > peak {
			peak = total
			peakHour = h.Hour
		}
		wifi += h.WifiBytes
		wwan += h.WWANBytes
	}

	for _, h := range hours {
		fmt.Println(cli.RenderUsageBar(fmt.Sprintf("%02d:00", h.Hour), h.WifiBytes, h.WWANBytes, peak, 40))
	}
	fmt.Println()
	fmt.Println(cli.RenderLegend())
	fmt.Println()
	fmt.Println(cli.RenderKV("WiFi", cli.FormatBytes(wifi)))
	fmt.Println(cli.RenderKV("WWAN", cli.FormatBytes(wwan)))
	if peak > 0 {
		fmt.Println(cli.RenderKV("Peak", fmt.Sprintf("%02d:00 (%s)", peakHour, cli.FormatBytes(peak))))
	}
	fmt.Println()
	return nil
}
