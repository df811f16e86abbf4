// Package model defines domain types for dataneko usage accounting and the points economy.
package model

import "time"

// BytesPerGB is the divisor used for every bytes -> GB conversion (2^30).
const BytesPerGB = 1 << 30

// Counters holds cumulative interface byte counts since the last device boot.
type Counters struct {
	WifiSentBytes     uint64
	WifiReceivedBytes uint64
	WWANSentBytes     uint64
	WWANReceivedBytes uint64
}

// Wifi returns sent+received WiFi bytes.
func (c Counters) Wifi() uint64 {
	return c.WifiSentBytes + c.WifiReceivedBytes
}

// WWAN returns sent+received cellular bytes.
func (c Counters) WWAN() uint64 {
	return c.WWANSentBytes + c.WWANReceivedBytes
}

// IsZero reports whether every counter reads zero.
func (c Counters) IsZero() bool {
	return c.Wifi() == 0 && c.WWAN() == 0
}

// IntervalDelta is the usage attributed to one observation interval.
// Immutable once appended.
type IntervalDelta struct {
	Timestamp time.Time
	WifiBytes uint64
	WWANBytes uint64
}

// Total returns WiFi+WWAN bytes.
func (d IntervalDelta) Total() uint64 {
	return d.WifiBytes + d.WWANBytes
}

// ObservationState is the checkpoint of the last successful counter read.
type ObservationState struct {
	LastWifiCumulative    uint64
	LastWWANCumulative    uint64
	LastBootUptimeSeconds float64
}

// HourlyUsage holds usage for one hour-of-day bucket (0-23).
type HourlyUsage struct {
	Hour      int    `json:"hour"`
	WifiBytes uint64 `json:"wifi_bytes"`
	WWANBytes uint64 `json:"wwan_bytes"`
}

// DailyUsage holds usage for one day bucket. Index is 0-6 for weekly views
// and the 1-based day of month for monthly views.
type DailyUsage struct {
	Index     int       `json:"index"`
	Date      time.Time `json:"date"`
	WifiBytes uint64    `json:"wifi_bytes"`
	WWANBytes uint64    `json:"wwan_bytes"`
}

// UsagePrediction is the end-of-month forecast shown to the user.
type UsagePrediction struct {
	PredictedWifiGB  float64 `json:"predicted_wifi_gb"`
	PredictedWWANGB  float64 `json:"predicted_wwan_gb"`
	Confidence       float64 `json:"confidence"`
	PeakHours        []int   `json:"peak_hours"`
	IsUnusualPattern bool    `json:"is_unusual_pattern"`
	RemainingDays    int     `json:"remaining_days"`
	IsDefault        bool    `json:"is_default"`
}

// ToGB converts a byte count to GB (2^30 bytes).
func ToGB(b uint64) float64 {
	return float64(b) / BytesPerGB
}
