package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/dataneko/internal/cli"
)

var flagResetYes bool

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Convert this month's unused allowance into points (last day of the month only)",
	Args:  cobra.NoArgs,
	RunE:  runSettle,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset points and the pet to a fresh start",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(settleCmd, resetCmd)
}

func runSettle(_ *cobra.Command, _ []string) error {
	now := time.Now()
	return withEconomy(func(ctx context.Context, e *env) (string, error) {
		_, wwanGB, err := e.usage.CurrentMonthTotal(ctx, now)
		if err != nil {
			return "", err
		}
		awarded, settled, err := e.economy.SettleMonth(ctx, now, wwanGB, e.cfg.Plan.LimitGB)
		if err != nil {
			return "", err
		}
		if !settled {
			return "Nothing to settle: settlement runs once, on the last day of the month.", nil
		}
		return fmt.Sprintf("Settled %s of %d GB used: %s", cli.FormatGB(wwanGB), e.cfg.Plan.LimitGB,
			cli.FormatSignedPoints(awarded)), nil
	})
}

func runReset(_ *cobra.Command, _ []string) error {
	if !flagResetYes {
		confirmed := false
		err := huh.NewConfirm().
			Title("Reset all points, furniture and the pet?").
			Description("Usage history is kept. This cannot be undone.").
			Affirmative("Reset").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if !confirmed {
			fmt.Println("  Cancelled.")
			return nil
		}
	}
	return withEconomy(func(ctx context.Context, e *env) (string, error) {
		if err := e.economy.Reset(ctx); err != nil {
			return "", err
		}
		return "Economy reset to defaults.", nil
	})
}
