package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/dataneko/internal/model"
	"github.com/theirongolddev/dataneko/internal/store"
)

type fakeReader struct {
	wifi, wwan uint64
	uptime     float64
}

func (f *fakeReader) ReadCounters() model.Counters {
	return model.Counters{WifiReceivedBytes: f.wifi, WWANReceivedBytes: f.wwan}
}

func (f *fakeReader) SystemUptime() float64 { return f.uptime }

func newTestRecorder(t *testing.T, r *fakeReader) (*Recorder, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s, r, nil), s
}

// seed commits a checkpoint as if an earlier tick had recorded it.
func seed(t *testing.T, s *store.Store, obs model.ObservationState) {
	t.Helper()
	require.NoError(t, s.CommitTick(context.Background(), model.IntervalDelta{Timestamp: time.Unix(0, 0)}, obs))
}

func allDeltas(t *testing.T, s *store.Store) []model.IntervalDelta {
	t.Helper()
	d, err := s.LoadDeltas(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	return d
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestRecordTick_FirstTickIsZeroBaseline(t *testing.T) {
	r := &fakeReader{wifi: 123456, wwan: 7890, uptime: 500}
	rec, s := newTestRecorder(t, r)
	ctx := context.Background()

	res, err := rec.RecordTick(ctx, now)
	require.NoError(t, err)
	require.Equal(t, OutcomeBaseline, res.Outcome)

	deltas := allDeltas(t, s)
	require.Len(t, deltas, 1)
	require.Zero(t, deltas[0].WifiBytes)
	require.Zero(t, deltas[0].WWANBytes)

	obs, found, err := s.LoadObservation(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, model.ObservationState{
		LastWifiCumulative:    123456,
		LastWWANCumulative:    7890,
		LastBootUptimeSeconds: 500,
	}, obs)
}

func TestRecordTick_RebootUsesCurrentCounters(t *testing.T) {
	r := &fakeReader{wifi: 50, wwan: 20, uptime: 10}
	rec, s := newTestRecorder(t, r)
	seed(t, s, model.ObservationState{LastWifiCumulative: 500, LastWWANCumulative: 300, LastBootUptimeSeconds: 1000})

	res, err := rec.RecordTick(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, OutcomeReboot, res.Outcome)
	require.Equal(t, uint64(50), res.Delta.WifiBytes)
	require.Equal(t, uint64(20), res.Delta.WWANBytes)

	deltas := allDeltas(t, s)
	require.Len(t, deltas, 2)
	require.Equal(t, uint64(50), deltas[1].WifiBytes)
	require.Equal(t, uint64(20), deltas[1].WWANBytes)
}

func TestRecordTick_MonotonicDelta(t *testing.T) {
	r := &fakeReader{wifi: 1500, wwan: 40, uptime: 200}
	rec, s := newTestRecorder(t, r)
	seed(t, s, model.ObservationState{LastWifiCumulative: 1000, LastWWANCumulative: 10, LastBootUptimeSeconds: 100})

	res, err := rec.RecordTick(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, OutcomeNormal, res.Outcome)
	require.Equal(t, uint64(500), res.Delta.WifiBytes)
	require.Equal(t, uint64(30), res.Delta.WWANBytes)

	obs, _, err := s.LoadObservation(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1500), obs.LastWifiCumulative)
	require.Equal(t, 200.0, obs.LastBootUptimeSeconds)
}

func TestRecordTick_AnomalyLeavesStateUntouched(t *testing.T) {
	r := &fakeReader{wifi: 1000, wwan: 10, uptime: 250}
	rec, s := newTestRecorder(t, r)
	before := model.ObservationState{LastWifiCumulative: 1500, LastWWANCumulative: 10, LastBootUptimeSeconds: 200}
	seed(t, s, before)

	res, err := rec.RecordTick(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, OutcomeAnomaly, res.Outcome)
	require.False(t, res.Appended())
	require.True(t, errors.Is(res.Err, ErrCounterAnomaly))

	require.Len(t, allDeltas(t, s), 1)
	obs, _, err := s.LoadObservation(context.Background())
	require.NoError(t, err)
	require.Equal(t, before, obs)
}

func TestRecordTick_FailedReadIsNotAReboot(t *testing.T) {
	r := &fakeReader{}
	rec, s := newTestRecorder(t, r)
	before := model.ObservationState{LastWifiCumulative: 1500, LastWWANCumulative: 10, LastBootUptimeSeconds: 200}
	seed(t, s, before)

	res, err := rec.RecordTick(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, OutcomeAnomaly, res.Outcome)

	obs, _, err := s.LoadObservation(context.Background())
	require.NoError(t, err)
	require.Equal(t, before, obs)
}

func TestRecordTick_CanceledContextCommitsNothing(t *testing.T) {
	r := &fakeReader{wifi: 10, wwan: 10, uptime: 10}
	rec, s := newTestRecorder(t, r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rec.RecordTick(ctx, now)
	require.Error(t, err)
	require.Empty(t, allDeltas(t, s))
}

func TestRecordTick_SequenceSumsToCounterGrowth(t *testing.T) {
	r := &fakeReader{wifi: 100, wwan: 100, uptime: 10}
	rec, s := newTestRecorder(t, r)
	ctx := context.Background()

	steps := []fakeReader{
		{wifi: 100, wwan: 100, uptime: 10}, // baseline
		{wifi: 160, wwan: 130, uptime: 20},
		{wifi: 200, wwan: 150, uptime: 30},
		{wifi: 5, wwan: 7, uptime: 3}, // reboot
		{wifi: 15, wwan: 9, uptime: 13},
	}
	for i, st := range steps {
		*r = st
		_, err := rec.RecordTick(ctx, now.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	var wifi, wwan uint64
	for _, d := range allDeltas(t, s) {
		wifi += d.WifiBytes
		wwan += d.WWANBytes
	}
	require.Equal(t, uint64(100+15), wifi)
	require.Equal(t, uint64(50+9), wwan)
}

// gatedReader parks inside ReadCounters until released.
type gatedReader struct {
	fakeReader
	entered chan struct{}
	release chan struct{}
}

func (g *gatedReader) ReadCounters() model.Counters {
	close(g.entered)
	<-g.release
	return g.fakeReader.ReadCounters()
}

func TestRecordTick_TwoStoresOnOneFileCountUsageOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")
	open := func() *store.Store {
		s, err := store.Open(path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}
	sa, sb := open(), open()
	ctx := context.Background()
	seed(t, sa, model.ObservationState{LastBootUptimeSeconds: 100})

	ga := &gatedReader{
		fakeReader: fakeReader{wifi: 500, uptime: 200},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	recA := New(sa, ga, nil)
	recB := New(sb, &fakeReader{wifi: 500, uptime: 200}, nil)

	errA := make(chan error, 1)
	go func() {
		_, err := recA.RecordTick(ctx, now)
		errA <- err
	}()
	<-ga.entered

	errB := make(chan error, 1)
	go func() {
		_, err := recB.RecordTick(ctx, now.Add(time.Minute))
		errB <- err
	}()
	select {
	case err := <-errB:
		t.Fatalf("second store ticked while the first held the checkpoint: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(ga.release)
	require.NoError(t, <-errA)
	require.NoError(t, <-errB)

	var wifi uint64
	for _, d := range allDeltas(t, sb) {
		wifi += d.WifiBytes
	}
	require.Equal(t, uint64(500), wifi)

	obs, _, err := sb.LoadObservation(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(500), obs.LastWifiCumulative)
}
