package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dataneko/internal/cli"
)

var flagLedgerLimit int

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "List recent point transactions",
	Args:  cobra.NoArgs,
	RunE:  runLedger,
}

func init() {
	ledgerCmd.Flags().IntVarP(&flagLedgerLimit, "limit", "n", 20, "Number of entries to show")
	rootCmd.AddCommand(ledgerCmd)
}

func runLedger(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	entries, err := e.store.Ledger(ctx, flagLedgerLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("\n  No transactions yet.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, en := range entries {
		rows = append(rows, []string{
			en.At.Local().Format("2006-01-02 15:04"),
			en.Kind,
			cli.FormatSignedPoints(en.Amount),
			cli.FormatPoints(en.BalanceAfter),
			en.Note,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("POINTS LEDGER"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"When", "Kind", "Amount", "Balance", "Note"},
		Rows:    rows,
	}))
	return nil
}
