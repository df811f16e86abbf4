package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	c := Counters{WifiSentBytes: 10, WifiReceivedBytes: 5, WWANSentBytes: 3, WWANReceivedBytes: 4}
	require.Equal(t, uint64(15), c.Wifi())
	require.Equal(t, uint64(7), c.WWAN())
	require.False(t, c.IsZero())
	require.True(t, Counters{}.IsZero())
}

func TestToGB(t *testing.T) {
	require.Equal(t, 1.0, ToGB(BytesPerGB))
	require.Equal(t, 2.5, ToGB(5*BytesPerGB/2))
}

func TestCalendarKeys(t *testing.T) {
	d := time.Date(2025, 3, 7, 23, 59, 0, 0, time.UTC)
	require.Equal(t, 202503, MonthKey(d))
	require.Equal(t, 20250307, DayKey(d))
}

func TestMonthBoundaries(t *testing.T) {
	tests := []struct {
		date time.Time
		days int
	}{
		{time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 29},
		{time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), 28},
		{time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), 31},
		{time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), 30},
	}
	for _, tt := range tests {
		require.Equal(t, tt.days, DaysInMonth(tt.date))
		last := LastDayOfMonth(tt.date)
		require.Equal(t, tt.days, last.Day())
		require.Equal(t, tt.date.Month(), last.Month())
		require.True(t, IsLastDayOfMonth(last.Add(23*time.Hour)))
	}
	require.False(t, IsLastDayOfMonth(time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC)))
}

func TestParseFurnitureKind(t *testing.T) {
	for _, k := range FurnitureKinds {
		got, err := ParseFurnitureKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}
	got, err := ParseFurnitureKind(" Gift ")
	require.NoError(t, err)
	require.Equal(t, FurnitureGiftMultiplier, got)

	_, err = ParseFurnitureKind("sofa")
	require.Error(t, err)
	require.False(t, FurnitureKind(7).Valid())
	require.Equal(t, "furniture(7)", FurnitureKind(7).String())
}
