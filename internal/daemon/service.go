// Package daemon hosts the background refresh loop: cron-scheduled ticks and a
// local HTTP API with a server-sent event stream.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/dataneko/internal/pipeline"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Schedule     string
	TickTimeout  time.Duration
	EventsBuffer int
	DataDir      string
	Predictor    pipeline.PredictorConfig
}

// Snapshot is a compact state for status and event payloads.
type Snapshot struct {
	At             time.Time `json:"at"`
	Points         int64     `json:"points"`
	Stamina        float64   `json:"stamina"`
	Stress         int       `json:"stress"`
	AffectionLevel int       `json:"affection_level"`
	MonthWifiGB    float64   `json:"month_wifi_gb"`
	MonthWWANGB    float64   `json:"month_wwan_gb"`
	PlanLimitGB    int       `json:"plan_limit_gb"`
}

// Delta captures snapshot changes between ticks.
type Delta struct {
	Points         int64   `json:"points"`
	Stress         int     `json:"stress"`
	AffectionLevel int     `json:"affection_level"`
	MonthWifiGB    float64 `json:"month_wifi_gb"`
	MonthWWANGB    float64 `json:"month_wwan_gb"`
}

func (d Delta) isZero() bool {
	return d.Points == 0 &&
		d.Stress == 0 &&
		d.AffectionLevel == 0 &&
		d.MonthWifiGB == 0 &&
		d.MonthWWANGB == 0
}

// Event is emitted whenever a tick changes the snapshot.
type Event struct {
	ID        int64       `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Snapshot  Snapshot    `json:"snapshot"`
	Delta     Delta       `json:"delta"`
	Tick      *TickReport `json:"tick,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time   `json:"started_at"`
	LastTickAt      time.Time   `json:"last_tick_at"`
	Schedule        string      `json:"schedule"`
	TickCount       int64       `json:"tick_count"`
	DataDir         string      `json:"data_dir"`
	Summary         Snapshot    `json:"summary"`
	LastTick        *TickReport `json:"last_tick,omitempty"`
	LastError       string      `json:"last_error,omitempty"`
	EventCount      int         `json:"event_count"`
	SubscriberCount int         `json:"subscriber_count"`
}

// Service runs ticks on a schedule and serves the HTTP API.
type Service struct {
	cfg    Config
	app    *App
	logger *slog.Logger
	clock  func() time.Time

	tickMu sync.Mutex

	mu          sync.RWMutex
	startedAt   time.Time
	lastTickAt  time.Time
	tickCount   int64
	lastTick    *TickReport
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, app *App, logger *slog.Logger) *Service {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 15m"
	}
	if cfg.TickTimeout <= 0 {
		cfg.TickTimeout = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		app:       app,
		logger:    logger,
		clock:     time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/usage/hourly", s.handleHourly)
	mux.HandleFunc("/v1/usage/monthly", s.handleMonthly)
	mux.HandleFunc("/v1/prediction", s.handlePrediction)
	return mux
}

// Run serves the API and runs scheduled ticks until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	sched, err := cron.ParseStandard(s.cfg.Schedule)
	if err != nil {
		return fmt.Errorf("daemon schedule %q: %w", s.cfg.Schedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// Seed a tick so status is useful immediately.
		s.TickOnce(gctx)

		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
		c.Schedule(sched, cron.FuncJob(func() { s.TickOnce(gctx) }))
		c.Start()

		<-gctx.Done()
		<-c.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// TickOnce runs one tick bounded by the configured timeout and publishes any
// resulting change.
func (s *Service) TickOnce(parent context.Context) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	ctx, cancel := context.WithTimeout(parent, s.cfg.TickTimeout)
	defer cancel()

	now := s.clock()
	report, err := s.app.Tick(ctx, now)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastTickAt = now
		s.tickCount++
		s.mu.Unlock()
		s.logger.Error("tick failed", "err", err)
		return
	}
	if report.Anomaly != "" {
		s.logger.Warn("tick skipped", "reason", report.Anomaly)
	}

	snap, err := s.buildSnapshot(ctx, now)
	if err != nil {
		// Keep the last good snapshot so a failed read never shows up as a
		// drop to zero usage.
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastTickAt = now
		s.tickCount++
		s.lastTick = &report
		s.mu.Unlock()
		s.logger.Error("snapshot failed", "err", err)
		return
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastTickAt = now
	s.tickCount++
	s.lastTick = &report
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap, Tick: &report}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() || report.Settled {
		s.nextEventID++
		typ := "usage_delta"
		if report.Settled {
			typ = "settlement"
		}
		ev = Event{ID: s.nextEventID, Type: typ, Timestamp: now, Snapshot: snap, Delta: delta, Tick: &report}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) buildSnapshot(ctx context.Context, now time.Time) (Snapshot, error) {
	st := s.app.Economy.State()
	snap := Snapshot{
		At:             now,
		Points:         st.CurrentPoints,
		Stamina:        st.Stamina,
		Stress:         st.Stress,
		AffectionLevel: st.AffectionLevel,
		PlanLimitGB:    s.app.PlanLimitGB,
	}
	wifi, wwan, err := s.app.Usage.CurrentMonthTotal(ctx, now)
	if err != nil {
		return snap, err
	}
	snap.MonthWifiGB = wifi
	snap.MonthWWANGB = wwan
	return snap, nil
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Points:         curr.Points - prev.Points,
		Stress:         curr.Stress - prev.Stress,
		AffectionLevel: curr.AffectionLevel - prev.AffectionLevel,
		MonthWifiGB:    curr.MonthWifiGB - prev.MonthWifiGB,
		MonthWWANGB:    curr.MonthWWANGB - prev.MonthWWANGB,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastTickAt:      s.lastTickAt,
		Schedule:        s.cfg.Schedule,
		TickCount:       s.tickCount,
		DataDir:         s.cfg.DataDir,
		Summary:         s.snapshot,
		LastTick:        s.lastTick,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
