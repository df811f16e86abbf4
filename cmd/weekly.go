package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dataneko/internal/cli"
	"github.com/theirongolddev/dataneko/internal/model"
)

var flagWeeklyDate string

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Daily usage for one week",
	RunE:  runWeekly,
}

func init() {
	weeklyCmd.Flags().StringVar(&flagWeeklyDate, "date", "", "Any day in the week to show (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(weeklyCmd)
}

func runWeekly(_ *cobra.Command, _ []string) error {
	date, err := parseDate(flagWeeklyDate)
	if err != nil {
		return err
	}
	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	days, err := e.usage.Weekly(ctx, date)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("WEEKLY USAGE  from %s", days[0].Date.Format("2006-01-02"))))
	fmt.Println()
	fmt.Print(cli.RenderTable(dayTable(days)))
	return nil
}

// dayTable renders day buckets with a totals row.
func dayTable(days []model.DailyUsage) cli.Table {
	rows := make([][]string, 0, len(days)+2)
	var wifi, wwan uint64
	for _, d := range days {
		rows = append(rows, []string{
			d.Date.Format("2006-01-02"),
			cli.FormatDayOfWeek(d.Date.Weekday()),
			cli.FormatBytes(d.WifiBytes),
			cli.FormatBytes(d.WWANBytes),
			cli.FormatBytes(d.WifiBytes + d.WWANBytes),
		})
		wifi += d.WifiBytes
		wwan += d.WWANBytes
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Total", "", cli.FormatBytes(wifi), cli.FormatBytes(wwan), cli.FormatBytes(wifi + wwan)})

	return cli.Table{
		Headers: []string{"Date", "Day", "WiFi", "WWAN", "Total"},
		Rows:    rows,
	}
}
