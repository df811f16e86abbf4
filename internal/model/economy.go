package model

import (
	"fmt"
	"strings"
	"time"
)

// FurnitureKind identifies one of the three upgradeable furniture items.
type FurnitureKind int

const (
	// FurniturePointMultiplier boosts monthly settlement awards.
	FurniturePointMultiplier FurnitureKind = iota
	// FurnitureAffectionMultiplier boosts affection gained from petting.
	FurnitureAffectionMultiplier
	// FurnitureGiftMultiplier boosts affection gained from gifts.
	FurnitureGiftMultiplier

	furnitureKindCount
)

// FurnitureKinds lists every furniture kind in storage order.
var FurnitureKinds = []FurnitureKind{
	FurniturePointMultiplier,
	FurnitureAffectionMultiplier,
	FurnitureGiftMultiplier,
}

var furnitureNames = [furnitureKindCount]string{"point", "affection", "gift"}

func (k FurnitureKind) String() string {
	if k < 0 || k >= furnitureKindCount {
		return fmt.Sprintf("furniture(%d)", int(k))
	}
	return furnitureNames[k]
}

// Valid reports whether k names a known furniture item.
func (k FurnitureKind) Valid() bool {
	return k >= 0 && k < furnitureKindCount
}

// ParseFurnitureKind maps "point", "affection" or "gift" to a kind.
func ParseFurnitureKind(s string) (FurnitureKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range furnitureNames {
		if s == name {
			return FurnitureKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown furniture %q (want point, affection or gift)", s)
}

// Furniture tracks one item's upgrade level, next cost and accumulated bonus.
type Furniture struct {
	Level        int
	UpgradeCost  int64
	BonusPercent float64
}

// EconomyState is the single mutable aggregate of the points economy.
// It is a plain value: copying it yields an independent snapshot.
type EconomyState struct {
	CurrentPoints int64

	Stamina                   float64
	StaminaTimeRemainingHours float64
	MaxStaminaHours           float64
	StaminaDepletedHours      float64 // zero-stamina hours not yet turned into stress
	Stress                    int

	AffectionLevel          int
	AffectionExperience     int
	AffectionExpToNextLevel int

	Furniture [furnitureKindCount]Furniture

	LastLoginDay          int // YYYYMMDD of the last login bonus
	LastSettlementMonth   int // YYYYMM
	MonthlySettlementDone bool
	LastCheckedTimestamp  time.Time
}

// Item returns a pointer to the furniture entry for kind.
func (s *EconomyState) Item(kind FurnitureKind) *Furniture {
	return &s.Furniture[kind]
}

// LedgerEntry records one committed change to the point balance.
type LedgerEntry struct {
	ID           string
	At           time.Time
	Kind         string
	Amount       int64
	BalanceAfter int64
	Note         string
}

// MonthKey encodes t's calendar month as YYYYMM.
func MonthKey(t time.Time) int {
	return t.Year()*100 + int(t.Month())
}

// DayKey encodes t's calendar day as YYYYMMDD.
func DayKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// DaysInMonth returns the number of days in t's calendar month.
func DaysInMonth(t time.Time) int {
	return LastDayOfMonth(t).Day()
}

// LastDayOfMonth returns midnight of the last day of t's month,
// computed as the first day of the next month minus one day.
func LastDayOfMonth(t time.Time) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, 1, -1)
}

// IsLastDayOfMonth reports whether t falls on the final calendar day of its month.
func IsLastDayOfMonth(t time.Time) bool {
	return t.Day() == DaysInMonth(t)
}
