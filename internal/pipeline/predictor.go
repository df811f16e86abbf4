package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/dataneko/internal/model"
)

const (
	// MinPredictionHistory is the number of deltas (about 3 days of hourly
	// ticks) below which the default prediction is used.
	MinPredictionHistory = 72
	// PredictionWindow is the most recent span of deltas used (7 days hourly).
	PredictionWindow = 7 * 24

	trendSample   = 72
	trendMin      = 0.8
	trendMax      = 1.2
	unusualRatio  = 1.2
	peakHourCount = 3
)

// DefaultPeakHours is reported when history is too short to rank hours.
var DefaultPeakHours = []int{9, 13, 20}

// PredictorConfig holds inputs owned by configuration, not by the predictor.
type PredictorConfig struct {
	PlanLimitGB        int
	DefaultWifiDailyGB float64
}

// Predict forecasts usage from now through the end of the current month.
// recent holds the newest deltas in append order (at most PredictionWindow are
// used) and totalCount the size of the whole recorded history.
func Predict(recent []model.IntervalDelta, totalCount int, now time.Time, cfg PredictorConfig) model.UsagePrediction {
	remaining := RemainingDays(now)

	if totalCount < MinPredictionHistory || len(recent) == 0 {
		return defaultPrediction(remaining, cfg)
	}

	window := recent
	if len(window) > PredictionWindow {
		window = window[len(window)-PredictionWindow:]
	}

	var wifiSum, wwanSum uint64
	var hourSum [24]float64
	var hourCount [24]int
	for _, d := range window {
		wifiSum += d.WifiBytes
		wwanSum += d.WWANBytes
		h := d.Timestamp.In(now.Location()).Hour()
		hourSum[h] += float64(d.Total())
		hourCount[h]++
	}

	windowDays := float64(len(window)) / 24
	avgDailyWifi := model.ToGB(wifiSum) / windowDays
	avgDailyWWAN := model.ToGB(wwanSum) / windowDays

	wifiTrend, wwanTrend := trendRatios(window)

	days := float64(remaining)
	p := model.UsagePrediction{
		PredictedWifiGB: avgDailyWifi * days * wifiTrend,
		PredictedWWANGB: avgDailyWWAN * days * wwanTrend,
		Confidence:      ConfidenceFor(totalCount),
		RemainingDays:   remaining,
	}

	var hourAvg [24]float64
	for h := range hourAvg {
		if hourCount[h] > 0 {
			hourAvg[h] = hourSum[h] / float64(hourCount[h])
		}
	}
	p.PeakHours = PeakHours(hourAvg)

	avgDailyTotal := avgDailyWifi + avgDailyWWAN
	p.IsUnusualPattern = p.PredictedWifiGB+p.PredictedWWANGB > avgDailyTotal*unusualRatio

	return p
}

func defaultPrediction(remaining int, cfg PredictorConfig) model.UsagePrediction {
	days := float64(remaining)
	return model.UsagePrediction{
		PredictedWifiGB: cfg.DefaultWifiDailyGB * days,
		PredictedWWANGB: float64(cfg.PlanLimitGB) / 30 * days,
		Confidence:      ConfidenceFor(0),
		PeakHours:       append([]int(nil), DefaultPeakHours...),
		RemainingDays:   remaining,
		IsDefault:       true,
	}
}

// trendRatios compares the newest trendSample deltas against the oldest
// trendSample deltas of the window, per stream, clamped to [0.8, 1.2].
func trendRatios(window []model.IntervalDelta) (wifi, wwan float64) {
	n := trendSample
	if n > len(window) {
		n = len(window)
	}
	early := window[:n]
	late := window[len(window)-n:]

	var earlyWifi, earlyWWAN, lateWifi, lateWWAN float64
	for _, d := range early {
		earlyWifi += float64(d.WifiBytes)
		earlyWWAN += float64(d.WWANBytes)
	}
	for _, d := range late {
		lateWifi += float64(d.WifiBytes)
		lateWWAN += float64(d.WWANBytes)
	}
	return clampTrend(lateWifi, earlyWifi), clampTrend(lateWWAN, earlyWWAN)
}

// clampTrend compares sums over equally sized samples, which is the same
// ratio as comparing their averages.
func clampTrend(recent, earliest float64) float64 {
	if earliest <= 0 {
		return 1
	}
	r := recent / earliest
	if r < trendMin {
		return trendMin
	}
	if r > trendMax {
		return trendMax
	}
	return r
}

// PeakHours returns the three hours with the highest averages, highest first,
// ties going to the earlier hour.
func PeakHours(hourAvg [24]float64) []int {
	hours := make([]int, 24)
	for i := range hours {
		hours[i] = i
	}
	sort.SliceStable(hours, func(i, j int) bool {
		return hourAvg[hours[i]] > hourAvg[hours[j]]
	})
	return hours[:peakHourCount]
}

// ConfidenceFor maps the total recorded delta count to a confidence step.
func ConfidenceFor(count int) float64 {
	switch {
	case count < MinPredictionHistory:
		return 0.3
	case count < 168:
		return 0.5
	case count < 720:
		return 0.7
	default:
		return 0.9
	}
}

// RemainingDays counts calendar days from now through the last day of the
// month, both inclusive.
func RemainingDays(now time.Time) int {
	return model.LastDayOfMonth(now).Day() - now.Day() + 1
}
