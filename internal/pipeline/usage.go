package pipeline

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/theirongolddev/dataneko/internal/model"
)

const viewCacheSize = 256

// Source is the read side of the delta store.
type Source interface {
	LoadDeltas(ctx context.Context, since, until time.Time) ([]model.IntervalDelta, error)
	RecentDeltas(ctx context.Context, n int) ([]model.IntervalDelta, error)
	DeltaCount(ctx context.Context) (int, error)
	LastDeltaID(ctx context.Context) (int64, error)
}

// Aggregator answers calendar views over the delta series. Views are cached
// per anchor and invalidated whenever a new delta is appended; the store
// stays authoritative.
type Aggregator struct {
	src          Source
	firstWeekday time.Weekday
	cache        *lru.Cache
}

type viewKey struct {
	period  string
	anchor  int64
	zone    string
	version int64
}

// NewAggregator returns an aggregator over src. firstWeekday anchors weekly views.
func NewAggregator(src Source, firstWeekday time.Weekday) (*Aggregator, error) {
	cache, err := lru.New(viewCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating view cache: %w", err)
	}
	return &Aggregator{src: src, firstWeekday: firstWeekday, cache: cache}, nil
}

// FirstWeekday returns the weekday weekly views start on.
func (a *Aggregator) FirstWeekday() time.Weekday {
	return a.firstWeekday
}

// Hourly returns 24 buckets for the calendar day containing date.
func (a *Aggregator) Hourly(ctx context.Context, date time.Time) ([]model.HourlyUsage, error) {
	start := startOfDay(date)
	v, err := a.view(ctx, "hourly", start, func() (any, error) {
		deltas, err := a.src.LoadDeltas(ctx, start, start.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		return AggregateHourly(deltas, date), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]model.HourlyUsage(nil), v.([]model.HourlyUsage)...), nil
}

// Weekly returns 7 buckets for the week containing date.
func (a *Aggregator) Weekly(ctx context.Context, date time.Time) ([]model.DailyUsage, error) {
	start := WeekStart(date, a.firstWeekday)
	v, err := a.view(ctx, "weekly", start, func() (any, error) {
		deltas, err := a.src.LoadDeltas(ctx, start, start.AddDate(0, 0, 7))
		if err != nil {
			return nil, err
		}
		return AggregateWeekly(deltas, date, a.firstWeekday), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]model.DailyUsage(nil), v.([]model.DailyUsage)...), nil
}

// Monthly returns one bucket per day of date's month.
func (a *Aggregator) Monthly(ctx context.Context, date time.Time) ([]model.DailyUsage, error) {
	start := startOfMonth(date)
	v, err := a.view(ctx, "monthly", start, func() (any, error) {
		deltas, err := a.src.LoadDeltas(ctx, start, start.AddDate(0, 1, 0))
		if err != nil {
			return nil, err
		}
		return AggregateMonthly(deltas, date), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]model.DailyUsage(nil), v.([]model.DailyUsage)...), nil
}

// CurrentMonthTotal sums the month containing now, in GB.
func (a *Aggregator) CurrentMonthTotal(ctx context.Context, now time.Time) (wifiGB, wwanGB float64, err error) {
	days, err := a.Monthly(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	var wifi, wwan uint64
	for _, d := range days {
		wifi += d.WifiBytes
		wwan += d.WWANBytes
	}
	return model.ToGB(wifi), model.ToGB(wwan), nil
}

// Predict forecasts the rest of now's month from recent history.
func (a *Aggregator) Predict(ctx context.Context, now time.Time, cfg PredictorConfig) (model.UsagePrediction, error) {
	count, err := a.src.DeltaCount(ctx)
	if err != nil {
		return model.UsagePrediction{}, err
	}
	if count < MinPredictionHistory {
		return Predict(nil, count, now, cfg), nil
	}
	recent, err := a.src.RecentDeltas(ctx, PredictionWindow)
	if err != nil {
		return model.UsagePrediction{}, err
	}
	return Predict(recent, count, now, cfg), nil
}

func (a *Aggregator) view(ctx context.Context, period string, anchor time.Time, build func() (any, error)) (any, error) {
	version, err := a.src.LastDeltaID(ctx)
	if err != nil {
		return nil, err
	}
	key := viewKey{period: period, anchor: anchor.Unix(), zone: anchor.Location().String(), version: version}
	if v, ok := a.cache.Get(key); ok {
		return v, nil
	}
	v, err := build()
	if err != nil {
		return nil, err
	}
	a.cache.Add(key, v)
	return v, nil
}
