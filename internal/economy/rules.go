// Package economy runs the points economy: earning, spending, the pet's
// stamina, stress and affection, furniture upgrades and monthly settlement.
package economy

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/theirongolddev/dataneko/internal/model"
)

const (
	// MaxMonthlyPoints scales the settlement formula.
	MaxMonthlyPoints = 5000
	// LoginBonus is awarded once per calendar day.
	LoginBonus = 20
	// AdReward is awarded per confirmed ad view.
	AdReward = 100
	// ToyStressRelief is subtracted from stress per toy.
	ToyStressRelief = 20
	// PetExperience is the affection experience gained per pet before bonuses.
	PetExperience = 5
	// LevelThresholdStep grows the experience needed for each new level.
	LevelThresholdStep = 100
	// FurnitureCostStep grows an item's next upgrade cost per level.
	FurnitureCostStep = 1000
	// FurnitureBonusStep grows an item's bonus percent per level.
	FurnitureBonusStep = 0.5
	// StressPerDepletedDay is added per whole day spent at zero stamina.
	StressPerDepletedDay = 5
	// MaxStress caps stress.
	MaxStress = 100

	defaultFeedHours = 24
)

// Ledger entry kinds.
const (
	KindLogin      = "login"
	KindAdReward   = "ad_reward"
	KindPurchase   = "purchase"
	KindSettlement = "settlement"
	KindSpend      = "spend"
	KindFeed       = "feed"
	KindToy        = "toy"
	KindGift       = "gift"
	KindUpgrade    = "upgrade"
	KindReset      = "reset"
)

// FeedTier maps a point price to the stamina hours it buys.
type FeedTier struct {
	Points int64
	Hours  float64
}

// FeedTiers is ordered by price.
var FeedTiers = []FeedTier{
	{Points: 0, Hours: 24},
	{Points: 100, Hours: 48},
	{Points: 200, Hours: 72},
	{Points: 900, Hours: 240},
}

// GiftTiers maps the exact gift price to its base affection experience.
var GiftTiers = map[int64]int{
	1000: 100,
	5000: 500,
	8000: 1000,
}

// GiftPrices lists the valid gift prices in ascending order.
func GiftPrices() []int64 {
	prices := make([]int64, 0, len(GiftTiers))
	for p := range GiftTiers {
		prices = append(prices, p)
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })
	return prices
}

// DefaultState is the economy a new install starts with.
func DefaultState() model.EconomyState {
	st := model.EconomyState{
		Stamina:                   100,
		StaminaTimeRemainingHours: defaultFeedHours,
		MaxStaminaHours:           defaultFeedHours,
		AffectionLevel:            1,
		AffectionExpToNextLevel:   200,
	}
	for _, k := range model.FurnitureKinds {
		*st.Item(k) = model.Furniture{Level: 1, UpgradeCost: 1000}
	}
	return st
}

// FeedHours selects the highest tier priced at or below points.
func FeedHours(points int64) float64 {
	hours := float64(defaultFeedHours)
	for _, t := range FeedTiers {
		if t.Points <= points {
			hours = t.Hours
		}
	}
	return hours
}

// spend debits points, leaving st untouched on failure.
func spend(st *model.EconomyState, points int64, kind, note string) ([]model.LedgerEntry, error) {
	if points < 0 {
		return nil, fmt.Errorf("%w: cannot spend %d points", ErrInvalidAmount, points)
	}
	if points > st.CurrentPoints {
		return nil, &InsufficientPointsError{Balance: st.CurrentPoints, Requested: points}
	}
	if points == 0 {
		return nil, nil
	}
	st.CurrentPoints -= points
	return []model.LedgerEntry{{Kind: kind, Amount: -points, BalanceAfter: st.CurrentPoints, Note: note}}, nil
}

func credit(st *model.EconomyState, points int64, kind, note string) []model.LedgerEntry {
	if points == 0 {
		return nil
	}
	st.CurrentPoints += points
	return []model.LedgerEntry{{Kind: kind, Amount: points, BalanceAfter: st.CurrentPoints, Note: note}}
}

// applyDecay burns elapsed hours of stamina. When the call leaves stamina
// at zero, the whole elapsed interval counts toward stress; hours short of a
// full day carry over in StaminaDepletedHours until stamina is restored.
func applyDecay(st *model.EconomyState, elapsedHours float64) {
	if elapsedHours <= 0 {
		return
	}
	st.StaminaTimeRemainingHours = math.Max(0, st.StaminaTimeRemainingHours-elapsedHours)
	if st.MaxStaminaHours > 0 {
		st.Stamina = st.StaminaTimeRemainingHours / st.MaxStaminaHours * 100
	} else {
		st.Stamina = 0
	}

	if st.Stamina > 0 {
		st.StaminaDepletedHours = 0
		return
	}
	st.StaminaDepletedHours += elapsedHours
	days := int(st.StaminaDepletedHours / 24)
	if days > 0 {
		st.StaminaDepletedHours -= float64(days) * 24
		st.Stress = min(MaxStress, st.Stress+StressPerDepletedDay*days)
	}
}

// addAffection adds experience and levels up while the threshold is met.
// It returns the number of levels gained.
func addAffection(st *model.EconomyState, exp int) int {
	st.AffectionExperience += exp
	levels := 0
	for st.AffectionExpToNextLevel > 0 && st.AffectionExperience >= st.AffectionExpToNextLevel {
		st.AffectionExperience -= st.AffectionExpToNextLevel
		st.AffectionLevel++
		st.AffectionExpToNextLevel += LevelThresholdStep
		levels++
	}
	return levels
}

// withBonus scales base by a furniture bonus percent, rounding down.
func withBonus(base int, bonusPercent float64) int {
	return base + int(math.Floor(float64(base)*bonusPercent/100))
}

// SettlementAward computes the points for a month with the given WWAN usage.
// Over-plan months produce a negative raw award; callers floor it at zero.
func SettlementAward(monthlyWWANGB float64, planLimitGB int, bonusPercent float64) (int64, error) {
	if planLimitGB <= 0 {
		return 0, fmt.Errorf("%w: %d GB", ErrInvalidPlan, planLimitGB)
	}
	plan := float64(planLimitGB)
	savedRate := 1 - monthlyWWANGB/plan
	base := MaxMonthlyPoints * savedRate * (1 / plan) * 10
	bonus := base * (bonusPercent / 100)
	return int64(math.Floor(base + bonus)), nil
}

// resetMonthlyFlag clears the settlement flag when now is in a different month
// from the recorded one. It reports whether anything changed.
func resetMonthlyFlag(st *model.EconomyState, now time.Time) bool {
	month := model.MonthKey(now)
	if st.LastSettlementMonth == month {
		return false
	}
	st.MonthlySettlementDone = false
	st.LastSettlementMonth = month
	return true
}
