package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dataneko/internal/cli"
	"github.com/theirongolddev/dataneko/internal/economy"
	"github.com/theirongolddev/dataneko/internal/model"
)

var flagUpgradePoints int64

var feedCmd = &cobra.Command{
	Use:   "feed [points]",
	Short: "Spend points on food (0: 24h, 100: 48h, 200: 72h, 900: 240h)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFeed,
}

var toyCmd = &cobra.Command{
	Use:   "toy [points]",
	Short: "Spend points on a toy to relieve stress",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runToy,
}

var giftCmd = &cobra.Command{
	Use:   "gift <points>",
	Short: "Give a gift worth 1000, 5000 or 8000 points",
	Args:  cobra.ExactArgs(1),
	RunE:  runGift,
}

var petCmd = &cobra.Command{
	Use:   "pet",
	Short: "Pet the cat (free)",
	Args:  cobra.NoArgs,
	RunE:  runPet,
}

var upgradeCmd = &cobra.Command{
	Use:       "upgrade <point|affection|gift>",
	Short:     "Upgrade a furniture item",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"point", "affection", "gift"},
	RunE:      runUpgrade,
}

var rewardCmd = &cobra.Command{
	Use:   "reward",
	Short: "Credit the reward for a watched ad",
	Args:  cobra.NoArgs,
	RunE:  runReward,
}

var purchaseCmd = &cobra.Command{
	Use:   "purchase <points>",
	Short: "Credit a purchased point pack",
	Args:  cobra.ExactArgs(1),
	RunE:  runPurchase,
}

func init() {
	upgradeCmd.Flags().Int64Var(&flagUpgradePoints, "points", 0, "Points to spend (default: the item's current upgrade cost)")

	rootCmd.AddCommand(feedCmd, toyCmd, giftCmd, petCmd, upgradeCmd, rewardCmd, purchaseCmd)
}

func parsePoints(args []string, def int64) (int64, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid points %q", args[0])
	}
	return n, nil
}

// explain turns economy errors into user-facing messages.
func explain(err error) error {
	var ipe *economy.InsufficientPointsError
	switch {
	case errors.As(err, &ipe):
		return fmt.Errorf("not enough points: you have %s, this costs %s",
			cli.FormatPoints(ipe.Balance), cli.FormatPoints(ipe.Requested))
	case errors.Is(err, economy.ErrInvalidTier):
		return fmt.Errorf("%w (gifts cost %v points)", err, economy.GiftPrices())
	default:
		return err
	}
}

// withEconomy runs fn against the economy and prints the resulting balance.
func withEconomy(fn func(ctx context.Context, e *env) (string, error)) error {
	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	msg, err := fn(ctx, e)
	if err != nil {
		return explain(err)
	}
	fmt.Println("  " + msg)
	fmt.Println(cli.RenderKV("Balance", cli.RenderPoints(e.economy.State().CurrentPoints)))
	return nil
}

func runFeed(_ *cobra.Command, args []string) error {
	points, err := parsePoints(args, 0)
	if err != nil {
		return err
	}
	return withEconomy(func(ctx context.Context, e *env) (string, error) {
		hours, err := e.economy.Feed(ctx, points)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Fed! Stamina full for %s.", cli.FormatHours(hours)), nil
	})
}

func runToy(_ *cobra.Command, args []string) error {
	points, err := parsePoints(args, 100)
	if err != nil {
		return err
	}
	return withEconomy(func(ctx context.Context, e *env) (string, error) {
		if err := e.economy.GiveToy(ctx, points); err != nil {
			return "", err
		}
		return fmt.Sprintf("Playtime! Stress is now %d.", e.economy.State().Stress), nil
	})
}

func runGift(_ *cobra.Command, args []string) error {
	points, err := parsePoints(args, 0)
	if err != nil {
		return err
	}
	return withEconomy(func(ctx context.Context, e *env) (string, error) {
		levels, err := e.economy.Gift(ctx, points)
		if err != nil {
			return "", err
		}
		return affectionMessage("Gift accepted.", levels, e.economy.State()), nil
	})
}

func runPet(_ *cobra.Command, _ []string) error {
	return withEconomy(func(ctx context.Context, e *env) (string, error) {
		levels, err := e.economy.Pet(ctx)
		if err != nil {
			return "", err
		}
		return affectionMessage("Purr.", levels, e.economy.State()), nil
	})
}

func affectionMessage(prefix string, levels int, st model.EconomyState) string {
	msg := fmt.Sprintf("%s Affection %d / %d.", prefix, st.AffectionExperience, st.AffectionExpToNextLevel)
	if levels > 0 {
		msg += fmt.Sprintf(" Level up! Now Lv %d.", st.AffectionLevel)
	}
	return msg
}

func runUpgrade(_ *cobra.Command, args []string) error {
	kind, err := model.ParseFurnitureKind(args[0])
	if err != nil {
		return err
	}
	return withEconomy(func(ctx context.Context, e *env) (string, error) {
		points := flagUpgradePoints
		if points == 0 {
			points = e.economy.State().Furniture[kind].UpgradeCost
		}
		if err := e.economy.UpgradeFurniture(ctx, kind, points); err != nil {
			return "", err
		}
		item := e.economy.State().Furniture[kind]
		return fmt.Sprintf("Upgraded %s to Lv %d (+%.1f%%).", kind, item.Level, item.BonusPercent), nil
	})
}

func runReward(_ *cobra.Command, _ []string) error {
	return withEconomy(func(ctx context.Context, e *env) (string, error) {
		if err := e.economy.AwardAdReward(ctx); err != nil {
			return "", err
		}
		return fmt.Sprintf("Thanks for watching! %s", cli.FormatSignedPoints(economy.AdReward)), nil
	})
}

func runPurchase(_ *cobra.Command, args []string) error {
	points, err := parsePoints(args, 0)
	if err != nil {
		return err
	}
	return withEconomy(func(ctx context.Context, e *env) (string, error) {
		if err := e.economy.PurchasePointPack(ctx, points); err != nil {
			return "", err
		}
		return fmt.Sprintf("Purchase credited: %s", cli.FormatSignedPoints(points)), nil
	})
}
