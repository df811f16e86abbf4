package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/dataneko/internal/model"
	"github.com/theirongolddev/dataneko/internal/store"
)

func openAggregator(t *testing.T) (*Aggregator, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	a, err := NewAggregator(s, time.Sunday)
	require.NoError(t, err)
	return a, s
}

func commit(t *testing.T, s *store.Store, d model.IntervalDelta) {
	t.Helper()
	require.NoError(t, s.CommitTick(context.Background(), d, model.ObservationState{LastBootUptimeSeconds: 1}))
}

func TestAggregator_ViewsFollowNewDeltas(t *testing.T) {
	a, s := openAggregator(t)
	ctx := context.Background()
	day := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)

	commit(t, s, model.IntervalDelta{Timestamp: day.Add(2 * time.Hour), WifiBytes: 10, WWANBytes: 1})

	hours, err := a.Hourly(ctx, day)
	require.NoError(t, err)
	require.Equal(t, uint64(10), hours[2].WifiBytes)

	// Mutating the returned slice must not leak into the cached view.
	hours[2].WifiBytes = 999
	again, err := a.Hourly(ctx, day)
	require.NoError(t, err)
	require.Equal(t, uint64(10), again[2].WifiBytes)

	commit(t, s, model.IntervalDelta{Timestamp: day.Add(2*time.Hour + 15*time.Minute), WifiBytes: 5})
	hours, err = a.Hourly(ctx, day)
	require.NoError(t, err)
	require.Equal(t, uint64(15), hours[2].WifiBytes)

	week, err := a.Weekly(ctx, day)
	require.NoError(t, err)
	require.Equal(t, time.Sunday, week[0].Date.Weekday())
	require.Equal(t, uint64(15), week[3].WifiBytes)

	month, err := a.Monthly(ctx, day)
	require.NoError(t, err)
	require.Len(t, month, 30)
	require.Equal(t, uint64(15), month[17].WifiBytes)

	wifi, wwan, err := a.CurrentMonthTotal(ctx, day)
	require.NoError(t, err)
	require.InDelta(t, model.ToGB(15), wifi, 1e-15)
	require.InDelta(t, model.ToGB(1), wwan, 1e-15)
}

func TestAggregator_PredictDefaultsOnShortHistory(t *testing.T) {
	a, s := openAggregator(t)
	ctx := context.Background()
	now := time.Date(2025, 10, 22, 12, 0, 0, 0, time.UTC)
	for _, d := range hourlyDeltas(now.Add(-10*time.Hour), 10, 100, 100) {
		commit(t, s, d)
	}

	p, err := a.Predict(ctx, now, testPredictorConfig)
	require.NoError(t, err)
	require.True(t, p.IsDefault)
	require.InDelta(t, 10.0, p.PredictedWWANGB, 1e-9)
}

func TestAggregator_PredictFromHistory(t *testing.T) {
	a, s := openAggregator(t)
	ctx := context.Background()
	now := time.Date(2025, 10, 22, 12, 0, 0, 0, time.UTC)
	for _, d := range hourlyDeltas(now.Add(-96*time.Hour), 96, 0, 2400) {
		commit(t, s, d)
	}

	p, err := a.Predict(ctx, now, testPredictorConfig)
	require.NoError(t, err)
	require.False(t, p.IsDefault)
	require.Equal(t, 0.5, p.Confidence)
	require.InDelta(t, model.ToGB(24*2400)*10, p.PredictedWWANGB, 1e-12)
}
