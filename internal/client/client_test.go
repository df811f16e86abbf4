package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/dataneko/internal/daemon"
	"github.com/theirongolddev/dataneko/internal/economy"
	"github.com/theirongolddev/dataneko/internal/model"
	"github.com/theirongolddev/dataneko/internal/pipeline"
	"github.com/theirongolddev/dataneko/internal/recorder"
	"github.com/theirongolddev/dataneko/internal/store"
)

type fixedReader struct{}

func (fixedReader) ReadCounters() model.Counters { return model.Counters{WWANReceivedBytes: 1 << 20} }
func (fixedReader) SystemUptime() float64        { return 100 }

func newTestDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	agg, err := pipeline.NewAggregator(s, time.Sunday)
	require.NoError(t, err)
	econ, err := economy.Load(ctx, s, nil)
	require.NoError(t, err)

	svc := daemon.New(daemon.Config{
		Predictor: pipeline.PredictorConfig{PlanLimitGB: 5, DefaultWifiDailyGB: 1},
	}, &daemon.App{
		Recorder:    recorder.New(s, fixedReader{}, nil),
		Usage:       agg,
		Economy:     econ,
		PlanLimitGB: 5,
	}, nil)
	svc.TickOnce(ctx)

	srv := httptest.NewServer(svc.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestNew(t *testing.T) {
	require.Nil(t, New("  "))
	require.Equal(t, "http://127.0.0.1:8788", New("127.0.0.1:8788").base)
	require.Equal(t, "https://example.test", New("https://example.test/").base)
}

func TestClientAgainstDaemon(t *testing.T) {
	srv := newTestDaemon(t)
	c := New(srv.URL)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	st, err := c.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), st.TickCount)
	require.Equal(t, 5, st.Summary.PlanLimitGB)
	require.GreaterOrEqual(t, st.Summary.Points, int64(economy.LoginBonus))

	evs, err := c.Events(ctx)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, "snapshot", evs[0].Type)

	hours, err := c.Hourly(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, hours, 24)

	days, err := c.Monthly(ctx, time.Time{})
	require.NoError(t, err)
	require.Equal(t, model.DaysInMonth(time.Now()), len(days))

	p, err := c.Prediction(ctx)
	require.NoError(t, err)
	require.True(t, p.IsDefault)
}

func TestErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") != "" {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.Hourly(ctx, time.Now())
	require.ErrorIs(t, err, ErrBadRequest)
	require.ErrorContains(t, err, "invalid date")

	_, err = c.Status(ctx)
	require.ErrorContains(t, err, "unexpected status 500")

	srv.Close()
	require.ErrorIs(t, c.Health(ctx), ErrUnreachable)
}
