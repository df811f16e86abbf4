package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dataneko/internal/cli"
	"github.com/theirongolddev/dataneko/internal/economy"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Record a usage sample and catch the pet up to now",
	RunE:  runTick,
}

func init() {
	rootCmd.AddCommand(tickCmd)
}

func runTick(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	report, err := e.app.Tick(ctx, time.Now())
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderKV("Sample", report.Outcome))
	if report.Anomaly != "" {
		fmt.Println(cli.RenderWarning("counters went backwards; sample skipped"))
	} else {
		fmt.Println(cli.RenderKV("WiFi", cli.FormatBytes(report.Delta.WifiBytes)))
		fmt.Println(cli.RenderKV("WWAN", cli.FormatBytes(report.Delta.WWANBytes)))
	}
	if report.LoginAwarded {
		fmt.Println(cli.RenderKV("Login bonus", cli.FormatSignedPoints(economy.LoginBonus)))
	}
	if report.Settled {
		fmt.Println(cli.RenderKV("Month settled", cli.FormatSignedPoints(report.SettlementPoints)))
	}
	fmt.Println(cli.RenderKV("Balance", cli.RenderPoints(e.economy.State().CurrentPoints)))
	return nil
}
