package economy

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/dataneko/internal/model"
)

// Store persists the economy document and its ledger. UpdateEconomy must
// load, apply fn and save as one critical section across every process
// sharing the store.
type Store interface {
	LoadEconomy(ctx context.Context, defaults model.EconomyState) (model.EconomyState, bool, error)
	SaveEconomy(ctx context.Context, st model.EconomyState, entries ...model.LedgerEntry) error
	UpdateEconomy(ctx context.Context, defaults model.EconomyState, fn func(st *model.EconomyState) ([]model.LedgerEntry, bool, error)) (model.EconomyState, error)
}

// Manager owns the economy state. Every mutation is applied by the store to
// the stored document under its write lock, persisted together with its
// ledger entries, and only then becomes visible. A failed write leaves
// memory and storage unchanged.
type Manager struct {
	mu     sync.Mutex
	state  model.EconomyState
	store  Store
	logger *slog.Logger
	clock  func() time.Time
}

// Load reads the persisted economy, creating and persisting defaults on first use.
func Load(ctx context.Context, s Store, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	st, found, err := s.LoadEconomy(ctx, DefaultState())
	if err != nil {
		return nil, fmt.Errorf("loading economy: %w", err)
	}
	m := &Manager{state: st, store: s, logger: logger, clock: time.Now}
	if !found {
		if err := s.SaveEconomy(ctx, st); err != nil {
			return nil, fmt.Errorf("initializing economy: %w", err)
		}
	}
	return m, nil
}

// WithClock sets the time source used to stamp ledger entries.
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	m.clock = clock
	return m
}

// State returns a copy of the current state.
func (m *Manager) State() model.EconomyState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reload replaces the in-memory state with the stored document, picking up
// writes made by other processes sharing the database.
func (m *Manager) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, found, err := m.store.LoadEconomy(ctx, m.state)
	if err != nil {
		return fmt.Errorf("reloading economy: %w", err)
	}
	if found {
		m.state = st
	}
	return nil
}

// mutate applies fn to the current stored state and commits it.
// fn returning an error aborts without persisting. changed=false skips the write.
func (m *Manager) mutate(ctx context.Context, op string, fn func(st *model.EconomyState) (entries []model.LedgerEntry, changed bool, err error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var fnErr error
	next, err := m.store.UpdateEconomy(ctx, m.state, func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		entries, changed, err := fn(st)
		if err != nil {
			fnErr = err
			return nil, false, err
		}
		at := m.clock().UTC()
		for i := range entries {
			entries[i].ID = uuid.NewString()
			entries[i].At = at
		}
		return entries, changed, nil
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		m.logger.Error("economy write failed", "op", op, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	m.state = next
	m.logger.Debug("economy updated", "op", op, "points", next.CurrentPoints)
	return nil
}

// Spend debits points. It fails with *InsufficientPointsError, without any
// mutation, when the balance is too small.
func (m *Manager) Spend(ctx context.Context, points int64) error {
	return m.mutate(ctx, "spend", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		entries, err := spend(st, points, KindSpend, "")
		return entries, err == nil, err
	})
}

// AwardLogin grants the daily login bonus once per calendar day.
func (m *Manager) AwardLogin(ctx context.Context, now time.Time) (bool, error) {
	awarded := false
	err := m.mutate(ctx, "login bonus", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		day := model.DayKey(now)
		if st.LastLoginDay == day {
			return nil, false, nil
		}
		st.LastLoginDay = day
		awarded = true
		return credit(st, LoginBonus, KindLogin, now.Format("2006-01-02")), true, nil
	})
	return awarded && err == nil, err
}

// AwardAdReward credits the fixed reward for a confirmed ad view.
func (m *Manager) AwardAdReward(ctx context.Context) error {
	return m.mutate(ctx, "ad reward", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		return credit(st, AdReward, KindAdReward, ""), true, nil
	})
}

// PurchasePointPack credits a confirmed purchase.
func (m *Manager) PurchasePointPack(ctx context.Context, points int64) error {
	if points <= 0 {
		return fmt.Errorf("%w: purchase of %d points", ErrInvalidAmount, points)
	}
	return m.mutate(ctx, "purchase", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		return credit(st, points, KindPurchase, ""), true, nil
	})
}

// Feed spends points and refills stamina for the matching tier's hours.
func (m *Manager) Feed(ctx context.Context, points int64) (float64, error) {
	hours := FeedHours(points)
	err := m.mutate(ctx, "feed", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		entries, err := spend(st, points, KindFeed, fmt.Sprintf("%gh", hours))
		if err != nil {
			return nil, false, err
		}
		st.StaminaTimeRemainingHours = hours
		st.MaxStaminaHours = hours
		st.Stamina = 100
		st.StaminaDepletedHours = 0
		return entries, true, nil
	})
	if err != nil {
		return 0, err
	}
	return hours, nil
}

// Decay burns elapsedHours of stamina without touching the check timestamp.
func (m *Manager) Decay(ctx context.Context, elapsedHours float64) error {
	if elapsedHours <= 0 {
		return nil
	}
	return m.mutate(ctx, "decay", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		applyDecay(st, elapsedHours)
		return nil, true, nil
	})
}

// Tick is the per-foreground catch-up: it clears a stale settlement flag,
// decays stamina for the time since the last check and stamps now. The first
// tick only stamps. A clock that moved backwards decays nothing and keeps the
// later timestamp.
func (m *Manager) Tick(ctx context.Context, now time.Time) error {
	return m.mutate(ctx, "tick", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		resetMonthlyFlag(st, now)
		if st.LastCheckedTimestamp.IsZero() {
			st.LastCheckedTimestamp = now
			return nil, true, nil
		}
		elapsed := now.Sub(st.LastCheckedTimestamp).Hours()
		if elapsed <= 0 {
			return nil, true, nil
		}
		applyDecay(st, elapsed)
		st.LastCheckedTimestamp = now
		return nil, true, nil
	})
}

// GiveToy spends points and relieves stress.
func (m *Manager) GiveToy(ctx context.Context, points int64) error {
	return m.mutate(ctx, "toy", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		entries, err := spend(st, points, KindToy, "")
		if err != nil {
			return nil, false, err
		}
		st.Stress = max(0, st.Stress-ToyStressRelief)
		return entries, true, nil
	})
}

// Gift spends one of the GiftTiers prices for affection experience, scaled by
// the gift furniture bonus. It returns the number of levels gained.
func (m *Manager) Gift(ctx context.Context, points int64) (int, error) {
	base, ok := GiftTiers[points]
	if !ok {
		return 0, fmt.Errorf("%w: no gift costs %d points", ErrInvalidTier, points)
	}
	levels := 0
	err := m.mutate(ctx, "gift", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		entries, err := spend(st, points, KindGift, "")
		if err != nil {
			return nil, false, err
		}
		gain := withBonus(base, st.Item(model.FurnitureGiftMultiplier).BonusPercent)
		levels = addAffection(st, gain)
		return entries, true, nil
	})
	if err != nil {
		return 0, err
	}
	return levels, nil
}

// Pet adds a little affection for free. It returns the number of levels gained.
func (m *Manager) Pet(ctx context.Context) (int, error) {
	levels := 0
	err := m.mutate(ctx, "pet", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		gain := withBonus(PetExperience, st.Item(model.FurnitureAffectionMultiplier).BonusPercent)
		levels = addAffection(st, gain)
		return nil, true, nil
	})
	if err != nil {
		return 0, err
	}
	return levels, nil
}

// UpgradeFurniture spends points to raise one item's level, its next cost and
// its bonus.
func (m *Manager) UpgradeFurniture(ctx context.Context, kind model.FurnitureKind, points int64) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown furniture %d", ErrInvalidTier, int(kind))
	}
	return m.mutate(ctx, "upgrade", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		entries, err := spend(st, points, KindUpgrade, kind.String())
		if err != nil {
			return nil, false, err
		}
		item := st.Item(kind)
		item.Level++
		item.UpgradeCost += FurnitureCostStep
		item.BonusPercent += FurnitureBonusStep
		return entries, true, nil
	})
}

// SettleMonth converts the month's unused WWAN allowance into points. It only
// runs on the last calendar day of now's month and at most once per month;
// otherwise it reports settled=false and changes nothing.
func (m *Manager) SettleMonth(ctx context.Context, now time.Time, monthlyWWANGB float64, planLimitGB int) (awarded int64, settled bool, err error) {
	err = m.mutate(ctx, "settlement", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		if !model.IsLastDayOfMonth(now) {
			return nil, false, nil
		}
		month := model.MonthKey(now)
		if st.MonthlySettlementDone && st.LastSettlementMonth == month {
			return nil, false, nil
		}
		raw, err := SettlementAward(monthlyWWANGB, planLimitGB, st.Item(model.FurniturePointMultiplier).BonusPercent)
		if err != nil {
			return nil, false, err
		}
		awarded = max(0, raw)
		st.MonthlySettlementDone = true
		st.LastSettlementMonth = month
		settled = true
		note := fmt.Sprintf("%d: %.2f/%d GB", month, monthlyWWANGB, planLimitGB)
		return credit(st, awarded, KindSettlement, note), true, nil
	})
	if err != nil {
		return 0, false, err
	}
	return awarded, settled, nil
}

// ResetMonthlyFlagIfNewMonth clears the settlement flag once a new month starts.
func (m *Manager) ResetMonthlyFlagIfNewMonth(ctx context.Context, now time.Time) error {
	return m.mutate(ctx, "monthly reset", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		return nil, resetMonthlyFlag(st, now), nil
	})
}

// Reset overwrites the whole economy with defaults.
func (m *Manager) Reset(ctx context.Context) error {
	return m.mutate(ctx, "reset", func(st *model.EconomyState) ([]model.LedgerEntry, bool, error) {
		prev := st.CurrentPoints
		*st = DefaultState()
		var entries []model.LedgerEntry
		if prev != 0 {
			entries = append(entries, model.LedgerEntry{Kind: KindReset, Amount: -prev})
		}
		return entries, true, nil
	})
}

// StaminaHoursLeft is a display helper rounding remaining stamina hours up.
func StaminaHoursLeft(st model.EconomyState) int {
	return int(math.Ceil(st.StaminaTimeRemainingHours))
}
