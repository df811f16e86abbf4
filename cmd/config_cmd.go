package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dataneko/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("  Problems:")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Printf("    - %s\n", line)
		}
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory: %s\n", cfg.DataDir())
	fmt.Printf("    Week starts:    %s\n", cfg.FirstWeekday())
	fmt.Println()

	fmt.Println("  [Plan]")
	fmt.Printf("    Limit:              %s\n", cfg.PlanLabel())
	fmt.Printf("    Default WiFi daily: %.1f GB\n", cfg.Plan.DefaultWifiDailyGB)
	fmt.Println()

	fmt.Println("  [Counters]")
	fmt.Printf("    Proc directory: %s\n", cfg.Counters.ProcDir)
	fmt.Printf("    WiFi prefixes:  %s\n", strings.Join(cfg.Counters.WifiPrefixes, ", "))
	fmt.Printf("    WWAN prefixes:  %s\n", strings.Join(cfg.Counters.WWANPrefixes, ", "))
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Schedule: %s\n", cfg.Daemon.Schedule)
	fmt.Printf("    Timeout:  %s\n", cfg.TickTimeout())
	fmt.Printf("    Events:   %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `dataneko setup` to reconfigure.")
	return nil
}
