package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/theirongolddev/dataneko/internal/economy"
	"github.com/theirongolddev/dataneko/internal/model"
	"github.com/theirongolddev/dataneko/internal/pipeline"
	"github.com/theirongolddev/dataneko/internal/recorder"
)

// DeltaRecorder appends one usage delta per call.
type DeltaRecorder interface {
	RecordTick(ctx context.Context, now time.Time) (recorder.Result, error)
}

// App wires the recorder, the usage views and the economy into the single
// tick entry point any scheduler can call.
type App struct {
	Recorder    DeltaRecorder
	Usage       *pipeline.Aggregator
	Economy     *economy.Manager
	PlanLimitGB int
	Logger      *slog.Logger
}

// TickReport summarizes one tick.
type TickReport struct {
	At               time.Time           `json:"at"`
	Outcome          string              `json:"outcome"`
	Delta            model.IntervalDelta `json:"-"`
	LoginAwarded     bool                `json:"login_awarded"`
	Settled          bool                `json:"settled"`
	SettlementPoints int64               `json:"settlement_points,omitempty"`
	Anomaly          string              `json:"anomaly,omitempty"`
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// Tick records a usage delta, catches the economy up to now, grants the daily
// login bonus and settles the month when now is its last day. A counter
// anomaly is reported, not returned; only storage failures are errors.
func (a *App) Tick(ctx context.Context, now time.Time) (TickReport, error) {
	report := TickReport{At: now}

	res, err := a.Recorder.RecordTick(ctx, now)
	if err != nil {
		return report, fmt.Errorf("recording usage: %w", err)
	}
	report.Outcome = res.Outcome.String()
	report.Delta = res.Delta
	if res.Err != nil {
		report.Anomaly = res.Err.Error()
	}

	if err := a.Economy.Tick(ctx, now); err != nil {
		return report, fmt.Errorf("economy tick: %w", err)
	}

	report.LoginAwarded, err = a.Economy.AwardLogin(ctx, now)
	if err != nil {
		return report, fmt.Errorf("login bonus: %w", err)
	}

	if model.IsLastDayOfMonth(now) {
		_, wwanGB, err := a.Usage.CurrentMonthTotal(ctx, now)
		if err != nil {
			return report, fmt.Errorf("month total: %w", err)
		}
		report.SettlementPoints, report.Settled, err = a.Economy.SettleMonth(ctx, now, wwanGB, a.PlanLimitGB)
		if err != nil {
			return report, fmt.Errorf("settlement: %w", err)
		}
		if report.Settled {
			a.logger().Info("month settled", "wwan_gb", wwanGB, "awarded", report.SettlementPoints)
		}
	}

	a.logger().Debug("tick",
		"outcome", report.Outcome,
		"wifi_bytes", res.Delta.WifiBytes,
		"wwan_bytes", res.Delta.WWANBytes,
		"login", report.LoginAwarded,
	)
	return report, nil
}
