// Package store provides the SQLite-backed durable store shared by the CLI,
// the daemon and any other process pointed at the same database file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/dataneko/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrStorage wraps every failure to read or write durable state.
var ErrStorage = errors.New("store: storage failure")

// Store is the durable key-value document store plus the append-only delta
// series and points ledger.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(full)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	// One writer connection keeps transactions serialized inside this process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, logger: slog.Default()}, nil
}

// WithLogger sets the logger used to report malformed stored data.
func (s *Store) WithLogger(l *slog.Logger) *Store {
	if l != nil {
		s.logger = l
	}
	return s
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// Get returns the raw JSON document stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return getKV(ctx, s.db, key)
}

// Set stores a raw JSON document under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := putKV(ctx, s.db, key, value); err != nil {
		return storageErr("set "+key, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	execer
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getKV(ctx context.Context, q querier, key string) ([]byte, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr("get "+key, err)
	}
	return []byte(value), true, nil
}

// immediate runs fn in a BEGIN IMMEDIATE transaction on a dedicated
// connection. The write lock is held before fn reads anything, so a second
// process on the same file waits out busy_timeout instead of interleaving
// its read-modify-write with ours. fn must only use q.
func (s *Store) immediate(ctx context.Context, op string, fn func(q querier) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return storageErr("acquire "+op, err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return storageErr("begin "+op, err)
	}
	if err := fn(conn); err != nil {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK")
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK")
		return storageErr("commit "+op, err)
	}
	return nil
}

func putKV(ctx context.Context, e execer, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := e.ExecContext(ctx, `INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		key, string(value), now)
	return err
}

// LoadObservation returns the stored counter checkpoint. A missing or
// malformed document reports found=false.
func (s *Store) LoadObservation(ctx context.Context) (model.ObservationState, bool, error) {
	return s.loadObservation(ctx, s.db)
}

func (s *Store) loadObservation(ctx context.Context, q querier) (model.ObservationState, bool, error) {
	data, ok, err := getKV(ctx, q, keyObservation)
	if err != nil || !ok {
		return model.ObservationState{}, false, err
	}
	obs, err := decodeObservation(data)
	if err != nil {
		s.logger.Warn("malformed observation state, treating as missing", slog.Any("error", err))
		return model.ObservationState{}, false, nil
	}
	return obs, true, nil
}

// CommitTick appends a delta and replaces the observation checkpoint in a
// single transaction. Either both writes land or neither does.
func (s *Store) CommitTick(ctx context.Context, d model.IntervalDelta, obs model.ObservationState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin tick", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := writeTick(ctx, tx, d, obs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit tick", err)
	}
	return nil
}

// UpdateObservation reads the checkpoint, lets fn decide what the tick
// records, and writes the delta plus the new checkpoint, all under the
// database write lock. commit=false or an error from fn writes nothing.
func (s *Store) UpdateObservation(ctx context.Context, fn func(prev model.ObservationState, found bool) (d model.IntervalDelta, next model.ObservationState, commit bool, err error)) error {
	return s.immediate(ctx, "tick", func(q querier) error {
		prev, found, err := s.loadObservation(ctx, q)
		if err != nil {
			return err
		}
		d, next, commit, err := fn(prev, found)
		if err != nil || !commit {
			return err
		}
		return writeTick(ctx, q, d, next)
	})
}

func writeTick(ctx context.Context, e execer, d model.IntervalDelta, obs model.ObservationState) error {
	doc, err := encodeObservation(obs)
	if err != nil {
		return storageErr("encode observation", err)
	}
	_, err = e.ExecContext(ctx, `INSERT INTO deltas (ts, wifi_bytes, wwan_bytes) VALUES (?, ?, ?)`,
		formatTS(d.Timestamp), clampInt64(d.WifiBytes), clampInt64(d.WWANBytes))
	if err != nil {
		return storageErr("append delta", err)
	}
	if err := putKV(ctx, e, keyObservation, doc); err != nil {
		return storageErr("save observation", err)
	}
	return nil
}

// LoadDeltas returns deltas with since <= ts < until in append order.
// A zero bound is open.
func (s *Store) LoadDeltas(ctx context.Context, since, until time.Time) ([]model.IntervalDelta, error) {
	query := "SELECT ts, wifi_bytes, wwan_bytes FROM deltas"
	var (
		where []string
		args  []any
	)
	if !since.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, formatTS(since))
	}
	if !until.IsZero() {
		where = append(where, "ts < ?")
		args = append(args, formatTS(until))
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY id"

	return s.queryDeltas(ctx, query, args...)
}

// RecentDeltas returns the last n deltas in append order.
func (s *Store) RecentDeltas(ctx context.Context, n int) ([]model.IntervalDelta, error) {
	if n <= 0 {
		return nil, nil
	}
	deltas, err := s.queryDeltas(ctx,
		"SELECT ts, wifi_bytes, wwan_bytes FROM (SELECT id, ts, wifi_bytes, wwan_bytes FROM deltas ORDER BY id DESC LIMIT ?) ORDER BY id", n)
	if err != nil {
		return nil, err
	}
	return deltas, nil
}

func (s *Store) queryDeltas(ctx context.Context, query string, args ...any) ([]model.IntervalDelta, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query deltas", err)
	}
	defer func() { _ = rows.Close() }()

	var deltas []model.IntervalDelta
	for rows.Next() {
		var (
			ts         string
			wifi, wwan sql.NullInt64
		)
		if err := rows.Scan(&ts, &wifi, &wwan); err != nil {
			return nil, storageErr("scan delta", err)
		}
		at, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			s.logger.Warn("skipping delta with malformed timestamp", slog.String("ts", ts))
			continue
		}
		deltas = append(deltas, model.IntervalDelta{
			Timestamp: at,
			WifiBytes: nonNegative(wifi),
			WWANBytes: nonNegative(wwan),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("read deltas", err)
	}
	return deltas, nil
}

// DeltaCount returns the number of recorded deltas.
func (s *Store) DeltaCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM deltas").Scan(&count); err != nil {
		return 0, storageErr("count deltas", err)
	}
	return count, nil
}

// LastDeltaID returns the id of the most recent delta, or 0 when empty.
// It changes on every append, which makes it a cheap cache version.
func (s *Store) LastDeltaID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(id) FROM deltas").Scan(&id); err != nil {
		return 0, storageErr("last delta id", err)
	}
	return id.Int64, nil
}

// LoadEconomy returns the stored economy state overlaid on defaults.
// A missing or malformed document yields defaults with found=false.
func (s *Store) LoadEconomy(ctx context.Context, defaults model.EconomyState) (model.EconomyState, bool, error) {
	return s.loadEconomy(ctx, s.db, defaults)
}

func (s *Store) loadEconomy(ctx context.Context, q querier, defaults model.EconomyState) (model.EconomyState, bool, error) {
	data, ok, err := getKV(ctx, q, keyEconomy)
	if err != nil || !ok {
		return defaults, false, err
	}
	st, err := decodeEconomy(data, defaults)
	if err != nil {
		s.logger.Warn("malformed economy state, using defaults", slog.Any("error", err))
		return defaults, false, nil
	}
	return st, true, nil
}

// SaveEconomy writes the economy state and any ledger entries in one transaction.
func (s *Store) SaveEconomy(ctx context.Context, st model.EconomyState, entries ...model.LedgerEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin economy", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := writeEconomy(ctx, tx, st, entries); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit economy", err)
	}
	return nil
}

// UpdateEconomy applies fn to the stored economy (defaults when missing)
// while holding the database write lock and persists the result with fn's
// ledger entries. It returns the state now stored. When fn fails nothing is
// written; changed=false skips the write and returns the loaded state.
func (s *Store) UpdateEconomy(ctx context.Context, defaults model.EconomyState, fn func(st *model.EconomyState) ([]model.LedgerEntry, bool, error)) (model.EconomyState, error) {
	var out model.EconomyState
	err := s.immediate(ctx, "economy", func(q querier) error {
		st, _, err := s.loadEconomy(ctx, q, defaults)
		if err != nil {
			return err
		}
		next := st
		entries, changed, err := fn(&next)
		if err != nil {
			return err
		}
		if !changed {
			out = st
			return nil
		}
		if err := writeEconomy(ctx, q, next, entries); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return model.EconomyState{}, err
	}
	return out, nil
}

func writeEconomy(ctx context.Context, e execer, st model.EconomyState, entries []model.LedgerEntry) error {
	doc, err := encodeEconomy(st)
	if err != nil {
		return storageErr("encode economy", err)
	}
	if err := putKV(ctx, e, keyEconomy, doc); err != nil {
		return storageErr("save economy", err)
	}
	for _, le := range entries {
		_, err := e.ExecContext(ctx, `INSERT INTO ledger (id, ts, kind, amount, balance_after, note)
			VALUES (?, ?, ?, ?, ?, ?)`,
			le.ID, formatTS(le.At), le.Kind, le.Amount, le.BalanceAfter, le.Note)
		if err != nil {
			return storageErr("append ledger", err)
		}
	}
	return nil
}

// Ledger returns the most recent ledger entries, newest first.
func (s *Store) Ledger(ctx context.Context, limit int) ([]model.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, ts, kind, amount, balance_after, note
		FROM ledger ORDER BY ts DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, storageErr("query ledger", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.LedgerEntry
	for rows.Next() {
		var (
			e    model.LedgerEntry
			ts   string
			note sql.NullString
		)
		if err := rows.Scan(&e.ID, &ts, &e.Kind, &e.Amount, &e.BalanceAfter, &note); err != nil {
			return nil, storageErr("scan ledger", err)
		}
		at, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			s.logger.Warn("skipping ledger entry with malformed timestamp",
				slog.String("id", e.ID), slog.String("ts", ts))
			continue
		}
		e.At = at
		e.Note = note.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("read ledger", err)
	}
	return entries, nil
}

// tsLayout is fixed width so that lexical order in SQLite matches time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

func nonNegative(v sql.NullInt64) uint64 {
	if !v.Valid || v.Int64 < 0 {
		return 0
	}
	return uint64(v.Int64)
}
