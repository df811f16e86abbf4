package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/dataneko/internal/config"
	"github.com/theirongolddev/dataneko/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Existing values seed the form; a broken file falls back to defaults.
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	planOpts := make([]huh.Option[int], 0, len(config.PlanPresets))
	for _, gb := range config.PlanPresets {
		planOpts = append(planOpts, huh.NewOption(fmt.Sprintf("%d GB", gb), gb))
	}
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}
	wifiDaily := strconv.FormatFloat(cfg.Plan.DefaultWifiDailyGB, 'f', -1, 64)
	weekStart := strings.ToLower(cfg.FirstWeekday().String())

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to dataneko!").
				Description("Saved mobile data turns into points for your cat."),
			huh.NewSelect[int]().
				Title("Monthly mobile data plan").
				Options(planOpts...).
				Value(&cfg.Plan.LimitGB),
			huh.NewSelect[string]().
				Title("Week starts on").
				Options(
					huh.NewOption("Sunday", "sunday"),
					huh.NewOption("Monday", "monday"),
				).
				Value(&weekStart),
			huh.NewInput().
				Title("Typical WiFi use per day (GB)").
				Description("Used for predictions until there is enough history.").
				Value(&wifiDaily).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || v < 0 {
						return errors.New("enter a non-negative number")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&cfg.Appearance.Theme),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	cfg.General.WeekStart = weekStart
	cfg.Plan.DefaultWifiDailyGB, _ = strconv.ParseFloat(strings.TrimSpace(wifiDaily), 64)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `dataneko setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
