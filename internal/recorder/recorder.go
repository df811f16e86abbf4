// Package recorder turns cumulative, reboot-resettable interface counters into
// an append-only series of per-interval usage deltas.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/theirongolddev/dataneko/internal/counter"
	"github.com/theirongolddev/dataneko/internal/model"
)

// ErrCounterAnomaly reports a tick skipped because the counters went
// backwards without a reboot, or could not be read at all.
var ErrCounterAnomaly = errors.New("recorder: counter anomaly")

// Outcome describes what a tick did.
type Outcome int

const (
	// OutcomeBaseline is the first-ever tick: a zero delta and a fresh checkpoint.
	OutcomeBaseline Outcome = iota
	// OutcomeNormal is a delta computed as current minus stored counters.
	OutcomeNormal
	// OutcomeReboot is a delta equal to the current counters after a reboot.
	OutcomeReboot
	// OutcomeAnomaly means nothing was appended and the checkpoint is unchanged.
	OutcomeAnomaly
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBaseline:
		return "baseline"
	case OutcomeNormal:
		return "normal"
	case OutcomeReboot:
		return "reboot"
	case OutcomeAnomaly:
		return "anomaly"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Store is the persistence the recorder needs. UpdateObservation must run fn
// and the resulting write as one critical section across every process
// sharing the store.
type Store interface {
	UpdateObservation(ctx context.Context, fn func(prev model.ObservationState, found bool) (model.IntervalDelta, model.ObservationState, bool, error)) error
}

// Result is the outcome of one tick.
type Result struct {
	Outcome Outcome
	Delta   model.IntervalDelta // zero unless a delta was appended
	Err     error               // wraps ErrCounterAnomaly when Outcome is OutcomeAnomaly
}

// Appended reports whether the tick added a delta to the series.
func (r Result) Appended() bool {
	return r.Outcome != OutcomeAnomaly
}

// Recorder owns the observation checkpoint. RecordTick calls are serialized.
type Recorder struct {
	store  Store
	reader counter.Reader
	logger *slog.Logger
	mu     sync.Mutex
}

// New returns a recorder reading from r and persisting to s.
func New(s Store, r counter.Reader, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: s, reader: r, logger: logger}
}

// RecordTick reads the counters and appends the usage since the previous tick.
//
// Counter anomalies are absorbed: they are logged and reported in the Result
// with a nil error, and the next tick retries from the unchanged checkpoint.
// A non-nil error is always a storage failure; nothing was committed.
func (r *Recorder) RecordTick(ctx context.Context, now time.Time) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var (
		res      Result
		counters model.Counters
		uptime   float64
	)
	// Counters are read while the checkpoint is locked, so a concurrent
	// writer can never commit a newer checkpoint between our read and write.
	err := r.store.UpdateObservation(ctx, func(prev model.ObservationState, found bool) (model.IntervalDelta, model.ObservationState, bool, error) {
		counters = r.reader.ReadCounters()
		uptime = r.reader.SystemUptime()
		res = Compute(prev, found, counters, uptime, now)
		if res.Outcome == OutcomeAnomaly {
			return model.IntervalDelta{}, prev, false, nil
		}
		next := model.ObservationState{
			LastWifiCumulative:    counters.Wifi(),
			LastWWANCumulative:    counters.WWAN(),
			LastBootUptimeSeconds: uptime,
		}
		return res.Delta, next, true, nil
	})
	if err != nil {
		r.logger.Error("committing usage tick", slog.Any("error", err))
		return Result{}, err
	}

	if res.Outcome == OutcomeAnomaly {
		r.logger.Warn("skipping usage tick",
			slog.Any("error", res.Err),
			slog.Float64("uptime", uptime),
			slog.Uint64("wifi", counters.Wifi()),
			slog.Uint64("wwan", counters.WWAN()),
		)
		return res, nil
	}

	r.logger.Debug("recorded usage tick",
		slog.String("outcome", res.Outcome.String()),
		slog.Uint64("wifi_bytes", res.Delta.WifiBytes),
		slog.Uint64("wwan_bytes", res.Delta.WWANBytes),
	)
	return res, nil
}

// Compute derives the delta for one reading against the stored checkpoint.
// It has no side effects.
func Compute(prev model.ObservationState, found bool, c model.Counters, uptime float64, now time.Time) Result {
	if uptime <= 0 {
		return Result{Outcome: OutcomeAnomaly, Err: fmt.Errorf("%w: uptime unavailable", ErrCounterAnomaly)}
	}

	wifi, wwan := c.Wifi(), c.WWAN()

	if !found {
		return Result{
			Outcome: OutcomeBaseline,
			Delta:   model.IntervalDelta{Timestamp: now},
		}
	}

	if uptime < prev.LastBootUptimeSeconds {
		return Result{
			Outcome: OutcomeReboot,
			Delta:   model.IntervalDelta{Timestamp: now, WifiBytes: wifi, WWANBytes: wwan},
		}
	}

	if wifi < prev.LastWifiCumulative || wwan < prev.LastWWANCumulative {
		return Result{
			Outcome: OutcomeAnomaly,
			Err: fmt.Errorf("%w: counters decreased without reboot (wifi %d -> %d, wwan %d -> %d)",
				ErrCounterAnomaly, prev.LastWifiCumulative, wifi, prev.LastWWANCumulative, wwan),
		}
	}

	return Result{
		Outcome: OutcomeNormal,
		Delta: model.IntervalDelta{
			Timestamp: now,
			WifiBytes: wifi - prev.LastWifiCumulative,
			WWANBytes: wwan - prev.LastWWANCumulative,
		},
	}
}
