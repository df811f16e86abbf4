package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/dataneko/internal/model"
)

var testPredictorConfig = PredictorConfig{PlanLimitGB: 30, DefaultWifiDailyGB: 1.0}

func TestPredict_DefaultWithShortHistory(t *testing.T) {
	now := time.Date(2025, 10, 22, 12, 0, 0, 0, time.UTC)

	p := Predict(nil, 10, now, testPredictorConfig)
	require.True(t, p.IsDefault)
	require.Equal(t, 10, p.RemainingDays)
	require.InDelta(t, 10.0, p.PredictedWWANGB, 1e-9)
	require.InDelta(t, 10.0, p.PredictedWifiGB, 1e-9)
	require.Equal(t, 0.3, p.Confidence)
	require.Equal(t, []int{9, 13, 20}, p.PeakHours)
	require.False(t, p.IsUnusualPattern)
}

func TestPredict_TrendIsClamped(t *testing.T) {
	now := time.Date(2025, 10, 22, 12, 0, 0, 0, time.UTC)
	start := now.Add(-PredictionWindow * time.Hour)

	var window []model.IntervalDelta
	window = append(window, hourlyDeltas(start, 72, 50, 100)...)
	window = append(window, hourlyDeltas(start.Add(72*time.Hour), 24, 50, 100)...)
	window = append(window, hourlyDeltas(start.Add(96*time.Hour), 72, 50, 1000)...)

	p := Predict(window, 200, now, testPredictorConfig)
	require.False(t, p.IsDefault)
	require.Equal(t, 0.7, p.Confidence)

	avgWWAN := model.ToGB(72*100+24*100+72*1000) / 7
	avgWifi := model.ToGB(168*50) / 7
	require.InDelta(t, avgWWAN*10*1.2, p.PredictedWWANGB, 1e-12)
	require.InDelta(t, avgWifi*10, p.PredictedWifiGB, 1e-12)
}

func TestPredict_FallingTrendClampsLow(t *testing.T) {
	now := time.Date(2025, 10, 22, 12, 0, 0, 0, time.UTC)
	start := now.Add(-PredictionWindow * time.Hour)

	var window []model.IntervalDelta
	window = append(window, hourlyDeltas(start, 96, 0, 1000)...)
	window = append(window, hourlyDeltas(start.Add(96*time.Hour), 72, 0, 10)...)

	p := Predict(window, 1000, now, testPredictorConfig)
	avgWWAN := model.ToGB(96*1000+72*10) / 7
	require.InDelta(t, avgWWAN*10*0.8, p.PredictedWWANGB, 1e-12)
	require.Zero(t, p.PredictedWifiGB)
	require.Equal(t, 0.9, p.Confidence)
}

func TestPredict_UsesOnlyNewestWindow(t *testing.T) {
	now := time.Date(2025, 10, 22, 12, 0, 0, 0, time.UTC)
	start := now.Add(-200 * time.Hour)
	history := hourlyDeltas(start, 200, 0, 100)
	for i := 0; i < 32; i++ {
		history[i].WWANBytes = 1 << 40
	}

	p := Predict(history, 200, now, testPredictorConfig)
	require.InDelta(t, model.ToGB(168*100)/7*10, p.PredictedWWANGB, 1e-12)
}

func TestPredict_PeakHoursFollowUsage(t *testing.T) {
	now := time.Date(2025, 10, 22, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
	window := hourlyDeltas(start, 168, 1, 1)
	for i := range window {
		switch window[i].Timestamp.Hour() {
		case 21:
			window[i].WWANBytes = 500
		case 7:
			window[i].WWANBytes = 300
		case 2:
			window[i].WWANBytes = 100
		}
	}

	p := Predict(window, 168, now, testPredictorConfig)
	require.Equal(t, []int{21, 7, 2}, p.PeakHours)
}

func TestPredict_UnusualPatternComparesAgainstDailyAverage(t *testing.T) {
	start := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	window := hourlyDeltas(start, 168, 100, 100)

	lastDay := time.Date(2025, 10, 31, 12, 0, 0, 0, time.UTC)
	p := Predict(window, 168, lastDay, testPredictorConfig)
	require.Equal(t, 1, p.RemainingDays)
	require.False(t, p.IsUnusualPattern)

	p = Predict(window, 168, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), testPredictorConfig)
	require.True(t, p.IsUnusualPattern)
}

func TestPeakHours_TiesGoToEarlierHour(t *testing.T) {
	var avg [24]float64
	require.Equal(t, []int{0, 1, 2}, PeakHours(avg))

	avg[5] = 10
	avg[3] = 10
	avg[20] = 4
	require.Equal(t, []int{3, 5, 20}, PeakHours(avg))
}

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 0.3},
		{71, 0.3},
		{72, 0.5},
		{167, 0.5},
		{168, 0.7},
		{719, 0.7},
		{720, 0.9},
		{100000, 0.9},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ConfidenceFor(tt.count), "count=%d", tt.count)
	}
}

func TestRemainingDays(t *testing.T) {
	require.Equal(t, 1, RemainingDays(time.Date(2025, 10, 31, 23, 0, 0, 0, time.UTC)))
	require.Equal(t, 29, RemainingDays(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, 10, RemainingDays(time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC)))
}
