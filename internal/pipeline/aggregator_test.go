package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/dataneko/internal/model"
)

func hourlyDeltas(start time.Time, n int, wifi, wwan uint64) []model.IntervalDelta {
	out := make([]model.IntervalDelta, n)
	for i := range out {
		out[i] = model.IntervalDelta{Timestamp: start.Add(time.Duration(i) * time.Hour), WifiBytes: wifi, WWANBytes: wwan}
	}
	return out
}

func TestAggregateHourly_SumsMatchRawDay(t *testing.T) {
	day := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)
	var deltas []model.IntervalDelta
	// Spill a few hours into the neighbouring days.
	deltas = append(deltas, hourlyDeltas(day.Add(-3*time.Hour), 30, 10, 4)...)
	deltas = append(deltas, model.IntervalDelta{Timestamp: day.Add(90 * time.Minute), WifiBytes: 7, WWANBytes: 1})

	hours := AggregateHourly(deltas, day.Add(12*time.Hour))
	require.Len(t, hours, 24)

	var rawWifi, rawWWAN, gotWifi, gotWWAN uint64
	for _, d := range deltas {
		if !d.Timestamp.Before(day) && d.Timestamp.Before(day.AddDate(0, 0, 1)) {
			rawWifi += d.WifiBytes
			rawWWAN += d.WWANBytes
		}
	}
	for i, h := range hours {
		require.Equal(t, i, h.Hour)
		gotWifi += h.WifiBytes
		gotWWAN += h.WWANBytes
	}
	require.Equal(t, rawWifi, gotWifi)
	require.Equal(t, rawWWAN, gotWWAN)
	require.Equal(t, uint64(17), hours[1].WifiBytes)
}

func TestAggregateHourly_EmptyDayIsZeroFilled(t *testing.T) {
	hours := AggregateHourly(nil, time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC))
	require.Len(t, hours, 24)
	for _, h := range hours {
		require.Zero(t, h.WifiBytes)
		require.Zero(t, h.WWANBytes)
	}
}

func TestAggregateMonthly_OneBucketPerDay(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 29},
		{time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), 28},
		{time.Date(2025, 4, 30, 23, 0, 0, 0, time.UTC), 30},
		{time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), 31},
	}
	for _, tt := range tests {
		days := AggregateMonthly(nil, tt.date)
		require.Len(t, days, tt.want, tt.date.Format("2006-01"))
		require.Equal(t, 1, days[0].Index)
		require.Equal(t, tt.want, days[len(days)-1].Index)
	}
}

func TestAggregateMonthly_BucketsByCalendarDay(t *testing.T) {
	start := time.Date(2025, 3, 31, 22, 0, 0, 0, time.UTC)
	deltas := hourlyDeltas(start, 5, 100, 1)

	days := AggregateMonthly(deltas, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC))
	require.Equal(t, uint64(300), days[0].WifiBytes)
	require.Equal(t, uint64(3), days[0].WWANBytes)
	for _, d := range days[1:] {
		require.Zero(t, d.WifiBytes)
	}

	wifi, wwan := MonthTotal(deltas, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.InDelta(t, model.ToGB(200), wifi, 1e-12)
	require.InDelta(t, model.ToGB(2), wwan, 1e-12)
}

func TestAggregateWeekly_StartsOnFirstWeekday(t *testing.T) {
	wed := time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)

	days := AggregateWeekly(nil, wed, time.Sunday)
	require.Len(t, days, 7)
	require.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), days[0].Date)
	require.Equal(t, time.Sunday, days[0].Date.Weekday())
	require.Equal(t, 6, days[6].Index)

	days = AggregateWeekly(nil, wed, time.Monday)
	require.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), days[0].Date)
}

func TestAggregateWeekly_SundayAnchorsItself(t *testing.T) {
	sun := time.Date(2025, 6, 15, 0, 30, 0, 0, time.UTC)
	deltas := []model.IntervalDelta{
		{Timestamp: sun, WifiBytes: 1},
		{Timestamp: sun.AddDate(0, 0, 6), WifiBytes: 2},
		{Timestamp: sun.AddDate(0, 0, 7), WifiBytes: 4},
	}
	days := AggregateWeekly(deltas, sun, time.Sunday)
	require.Equal(t, uint64(1), days[0].WifiBytes)
	require.Equal(t, uint64(2), days[6].WifiBytes)
}
