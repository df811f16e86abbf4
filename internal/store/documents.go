package store

import (
	"encoding/json"
	"time"

	"github.com/theirongolddev/dataneko/internal/model"
)

// observationDoc is the stable on-disk schema for model.ObservationState.
type observationDoc struct {
	Version               int     `json:"version"`
	LastWifiCumulative    uint64  `json:"last_wifi_cumulative"`
	LastWWANCumulative    uint64  `json:"last_wwan_cumulative"`
	LastBootUptimeSeconds float64 `json:"last_boot_uptime_seconds"`
}

func encodeObservation(o model.ObservationState) ([]byte, error) {
	return json.Marshal(observationDoc{
		Version:               schemaVersion,
		LastWifiCumulative:    o.LastWifiCumulative,
		LastWWANCumulative:    o.LastWWANCumulative,
		LastBootUptimeSeconds: o.LastBootUptimeSeconds,
	})
}

func decodeObservation(data []byte) (model.ObservationState, error) {
	var doc observationDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.ObservationState{}, err
	}
	return model.ObservationState{
		LastWifiCumulative:    doc.LastWifiCumulative,
		LastWWANCumulative:    doc.LastWWANCumulative,
		LastBootUptimeSeconds: doc.LastBootUptimeSeconds,
	}, nil
}

type furnitureDoc struct {
	Kind         string  `json:"kind"`
	Level        int     `json:"level"`
	UpgradeCost  int64   `json:"upgrade_cost"`
	BonusPercent float64 `json:"bonus_percent"`
}

// economyDoc is the stable on-disk schema for model.EconomyState.
// Pointer fields distinguish "absent" from zero so legacy documents
// keep the defaults for fields they never stored.
type economyDoc struct {
	Version                   int            `json:"version"`
	CurrentPoints             *int64         `json:"current_points,omitempty"`
	Stamina                   *float64       `json:"stamina,omitempty"`
	StaminaTimeRemainingHours *float64       `json:"stamina_time_remaining_hours,omitempty"`
	MaxStaminaHours           *float64       `json:"max_stamina_hours,omitempty"`
	StaminaDepletedHours      *float64       `json:"stamina_depleted_hours,omitempty"`
	Stress                    *int           `json:"stress,omitempty"`
	AffectionLevel            *int           `json:"affection_level,omitempty"`
	AffectionExperience       *int           `json:"affection_experience,omitempty"`
	AffectionExpToNextLevel   *int           `json:"affection_exp_to_next_level,omitempty"`
	Furniture                 []furnitureDoc `json:"furniture,omitempty"`
	LastLoginDay              *int           `json:"last_login_day,omitempty"`
	LastSettlementMonth       *int           `json:"last_settlement_month,omitempty"`
	MonthlySettlementDone     *bool          `json:"monthly_settlement_done,omitempty"`
	LastCheckedTimestamp      string         `json:"last_checked_timestamp,omitempty"`
}

func encodeEconomy(s model.EconomyState) ([]byte, error) {
	doc := economyDoc{
		Version:                   schemaVersion,
		CurrentPoints:             &s.CurrentPoints,
		Stamina:                   &s.Stamina,
		StaminaTimeRemainingHours: &s.StaminaTimeRemainingHours,
		MaxStaminaHours:           &s.MaxStaminaHours,
		StaminaDepletedHours:      &s.StaminaDepletedHours,
		Stress:                    &s.Stress,
		AffectionLevel:            &s.AffectionLevel,
		AffectionExperience:       &s.AffectionExperience,
		AffectionExpToNextLevel:   &s.AffectionExpToNextLevel,
		LastLoginDay:              &s.LastLoginDay,
		LastSettlementMonth:       &s.LastSettlementMonth,
		MonthlySettlementDone:     &s.MonthlySettlementDone,
	}
	if !s.LastCheckedTimestamp.IsZero() {
		doc.LastCheckedTimestamp = s.LastCheckedTimestamp.UTC().Format(time.RFC3339Nano)
	}
	for _, kind := range model.FurnitureKinds {
		f := s.Furniture[kind]
		doc.Furniture = append(doc.Furniture, furnitureDoc{
			Kind:         kind.String(),
			Level:        f.Level,
			UpgradeCost:  f.UpgradeCost,
			BonusPercent: f.BonusPercent,
		})
	}
	return json.Marshal(doc)
}

// decodeEconomy overlays the stored document onto defaults.
func decodeEconomy(data []byte, defaults model.EconomyState) (model.EconomyState, error) {
	var doc economyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return defaults, err
	}

	s := defaults
	setInt64(&s.CurrentPoints, doc.CurrentPoints)
	setFloat(&s.Stamina, doc.Stamina)
	setFloat(&s.StaminaTimeRemainingHours, doc.StaminaTimeRemainingHours)
	setFloat(&s.MaxStaminaHours, doc.MaxStaminaHours)
	setFloat(&s.StaminaDepletedHours, doc.StaminaDepletedHours)
	setInt(&s.Stress, doc.Stress)
	setInt(&s.AffectionLevel, doc.AffectionLevel)
	setInt(&s.AffectionExperience, doc.AffectionExperience)
	setInt(&s.AffectionExpToNextLevel, doc.AffectionExpToNextLevel)
	setInt(&s.LastLoginDay, doc.LastLoginDay)
	setInt(&s.LastSettlementMonth, doc.LastSettlementMonth)
	if doc.MonthlySettlementDone != nil {
		s.MonthlySettlementDone = *doc.MonthlySettlementDone
	}
	if doc.LastCheckedTimestamp != "" {
		if ts, err := time.Parse(time.RFC3339Nano, doc.LastCheckedTimestamp); err == nil {
			s.LastCheckedTimestamp = ts
		}
	}
	for _, fd := range doc.Furniture {
		kind, err := model.ParseFurnitureKind(fd.Kind)
		if err != nil {
			continue
		}
		s.Furniture[kind] = model.Furniture{
			Level:        fd.Level,
			UpgradeCost:  fd.UpgradeCost,
			BonusPercent: fd.BonusPercent,
		}
	}
	return s, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setInt64(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
