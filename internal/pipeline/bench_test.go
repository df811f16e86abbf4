package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/dataneko/internal/store"
)

// A year of 15-minute ticks.
const benchTicks = 365 * 24 * 4

var benchNow = time.Date(2025, 12, 20, 12, 0, 0, 0, time.UTC)

func BenchmarkAggregateMonthly(b *testing.B) {
	deltas := hourlyDeltas(benchNow.AddDate(-1, 0, 0), benchTicks, 1<<20, 1<<18)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AggregateMonthly(deltas, benchNow)
	}
}

func BenchmarkPredict(b *testing.B) {
	recent := hourlyDeltas(benchNow.Add(-PredictionWindow*time.Hour), PredictionWindow, 1<<20, 1<<18)
	cfg := PredictorConfig{PlanLimitGB: 5, DefaultWifiDailyGB: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Predict(recent, benchTicks, benchNow, cfg)
	}
}

// BenchmarkAggregatorMonthlyCached measures the steady state the daemon and
// TUI see: repeated views with no new deltas are served from the cache.
func BenchmarkAggregatorMonthlyCached(b *testing.B) {
	ctx := context.Background()
	s, err := store.Open(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()

	agg, err := NewAggregator(s, time.Sunday)
	if err != nil {
		b.Fatal(err)
	}
	if _, err := agg.Monthly(ctx, benchNow); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := agg.Monthly(ctx, benchNow); err != nil {
			b.Fatal(err)
		}
	}
}
