package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS deltas (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    ts                   TEXT NOT NULL,
    wifi_bytes           INTEGER NOT NULL DEFAULT 0,
    wwan_bytes           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS ledger (
    id                   TEXT PRIMARY KEY,
    ts                   TEXT NOT NULL,
    kind                 TEXT NOT NULL,
    amount               INTEGER NOT NULL,
    balance_after        INTEGER NOT NULL,
    note                 TEXT
);

CREATE INDEX IF NOT EXISTS idx_deltas_ts ON deltas(ts);
CREATE INDEX IF NOT EXISTS idx_ledger_ts ON ledger(ts);
`

// Document keys in the kv table.
const (
	keyObservation = "observation_state"
	keyEconomy     = "economy_state"
)

// schemaVersion is written into every kv document.
const schemaVersion = 1
