package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dataneko/internal/cli"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast usage through the end of the month",
	RunE:  runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
}

func runPredict(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	now := time.Now()
	p, err := e.usage.Predict(ctx, now, e.cfg.PredictorConfig())
	if err != nil {
		return err
	}
	wifiGB, wwanGB, err := e.usage.CurrentMonthTotal(ctx, now)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PREDICTION  %s", now.Format("January 2006"))))
	fmt.Println()

	basis := "recent history"
	if p.IsDefault {
		basis = "plan defaults (not enough history yet)"
	}
	peaks := make([]string, len(p.PeakHours))
	for i, h := range p.PeakHours {
		peaks[i] = fmt.Sprintf("%02d:00", h)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Stream", "So far", "Remaining", "Month end"},
		Rows: [][]string{
			{"WiFi", cli.FormatGB(wifiGB), cli.FormatGB(p.PredictedWifiGB), cli.FormatGB(wifiGB + p.PredictedWifiGB)},
			{"WWAN", cli.FormatGB(wwanGB), cli.FormatGB(p.PredictedWWANGB), cli.FormatGB(wwanGB + p.PredictedWWANGB)},
		},
	}))
	fmt.Println()
	fmt.Println(cli.RenderKV("Days left", fmt.Sprintf("%d", p.RemainingDays)))
	fmt.Println(cli.RenderKV("Confidence", cli.FormatPercent(p.Confidence)))
	fmt.Println(cli.RenderKV("Peak hours", strings.Join(peaks, ", ")))
	fmt.Println(cli.RenderKV("Based on", basis))
	if wwanGB+p.PredictedWWANGB > float64(e.cfg.Plan.LimitGB) {
		fmt.Println(cli.RenderWarning(fmt.Sprintf("on track to exceed your %d GB plan", e.cfg.Plan.LimitGB)))
	}
	if p.IsUnusualPattern {
		fmt.Println(cli.RenderWarning("usage is running above your daily average"))
	}
	fmt.Println()
	return nil
}
