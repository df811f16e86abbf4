package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dataneko/internal/cli"
	"github.com/theirongolddev/dataneko/internal/model"
)

var flagMonthlyDate string

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Daily usage for one calendar month",
	RunE:  runMonthly,
}

func init() {
	monthlyCmd.Flags().StringVar(&flagMonthlyDate, "date", "", "Any day in the month to show (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(_ *cobra.Command, _ []string) error {
	date, err := parseDate(flagMonthlyDate)
	if err != nil {
		return err
	}
	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	days, err := e.usage.Monthly(ctx, date)
	if err != nil {
		return err
	}

	var wwan uint64
	for _, d := range days {
		wwan += d.WWANBytes
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MONTHLY USAGE  %s", date.Format("January 2006"))))
	fmt.Println()
	fmt.Print(cli.RenderTable(dayTable(days)))
	fmt.Println()
	fmt.Println("  " + cli.RenderPlanBar(model.ToGB(wwan), e.cfg.Plan.LimitGB, 30))
	fmt.Println()
	return nil
}
