package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dataneko/internal/cli"
	"github.com/theirongolddev/dataneko/internal/economy"
	"github.com/theirongolddev/dataneko/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show points, the pet and this month's usage",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	now := time.Now()
	st := e.economy.State()
	_, wwanGB, err := e.usage.CurrentMonthTotal(ctx, now)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("DATANEKO"))
	fmt.Println()
	fmt.Println(cli.RenderKV("Points", cli.RenderPoints(st.CurrentPoints)))
	fmt.Println(cli.RenderKV("Plan", e.cfg.PlanLabel()))
	fmt.Println("  " + cli.RenderPlanBar(wwanGB, e.cfg.Plan.LimitGB, 30))
	fmt.Println()

	fmt.Println(cli.RenderMeter("Stamina", st.Stamina, 24, false))
	fmt.Println(cli.RenderMeter("Stress", float64(st.Stress), 24, true))
	fmt.Println(cli.RenderKV("Food left", cli.FormatHours(st.StaminaTimeRemainingHours)))
	fmt.Println(cli.RenderKV("Affection", fmt.Sprintf("Lv %d  (%d / %d exp)",
		st.AffectionLevel, st.AffectionExperience, st.AffectionExpToNextLevel)))
	fmt.Println()

	rows := make([][]string, 0, len(model.FurnitureKinds))
	for _, k := range model.FurnitureKinds {
		item := st.Item(k)
		rows = append(rows, []string{
			k.String(),
			fmt.Sprintf("%d", item.Level),
			fmt.Sprintf("+%.1f%%", item.BonusPercent),
			cli.FormatPoints(item.UpgradeCost),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Furniture",
		Headers: []string{"Item", "Level", "Bonus", "Next upgrade"},
		Rows:    rows,
	}))
	fmt.Println()

	fmt.Println(cli.RenderKV("Last check", cli.FormatAgo(st.LastCheckedTimestamp)))
	if model.IsLastDayOfMonth(now) && !(st.MonthlySettlementDone && st.LastSettlementMonth == model.MonthKey(now)) {
		award, err := economy.SettlementAward(wwanGB, e.cfg.Plan.LimitGB, st.Item(model.FurniturePointMultiplier).BonusPercent)
		if err == nil {
			fmt.Println(cli.RenderKV("Settles today", cli.FormatSignedPoints(max(0, award))))
		}
	}
	fmt.Println()
	return nil
}
