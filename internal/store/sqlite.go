package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/marketgrid/nsesync/internal/normalize"
)

// SQLiteStore implements Store using modernc.org/sqlite. Dates are stored as
// ISO text so lexical max() matches chronological order.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteDate = "2006-01-02"

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS equity_data (
	scrip      TEXT NOT NULL,
	date       TEXT NOT NULL,
	series     TEXT NOT NULL,
	open       REAL, high REAL, low REAL, prev_close REAL, ltp REAL, close REAL,
	vwap       REAL, high_52w REAL, low_52w REAL, volume REAL, value REAL, trades REAL,
	PRIMARY KEY (scrip, date, series)
);

CREATE TABLE IF NOT EXISTS index_data (
	scrip      TEXT NOT NULL,
	date       TEXT NOT NULL,
	series     TEXT NOT NULL,
	open       REAL, high REAL, low REAL, prev_close REAL, ltp REAL, close REAL,
	vwap       REAL, high_52w REAL, low_52w REAL, volume REAL, value REAL, trades REAL,
	PRIMARY KEY (scrip, date, series)
);

CREATE TABLE IF NOT EXISTS futures_data (
	scrip            TEXT NOT NULL,
	date             TEXT NOT NULL,
	expiry_date      TEXT NOT NULL,
	open             REAL, high REAL, low REAL, close REAL, ltp REAL, settle_price REAL,
	volume           REAL, value REAL, open_interest REAL, change_in_oi REAL, underlying_value REAL,
	PRIMARY KEY (scrip, date, expiry_date)
);

CREATE TABLE IF NOT EXISTS delivery_data (
	scrip_name           TEXT NOT NULL,
	type                 TEXT NOT NULL,
	quantity_traded      REAL,
	deliverable_quantity REAL,
	date                 TEXT NOT NULL,
	PRIMARY KEY (scrip_name, date, type)
);

CREATE TABLE IF NOT EXISTS bhavcopy_data (
	scrip_name            TEXT NOT NULL,
	type                  TEXT NOT NULL,
	open                  REAL, high REAL, low REAL, close REAL, last REAL, prev_close REAL,
	total_traded_quantity REAL, total_traded_value REAL, total_trades REAL,
	isin                  TEXT,
	date                  TEXT NOT NULL,
	PRIMARY KEY (scrip_name, date, type)
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id          TEXT PRIMARY KEY,
	symbol      TEXT NOT NULL,
	series      TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	rows        INTEGER NOT NULL DEFAULT 0,
	error       TEXT,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_equity_data_date ON equity_data(date);
CREATE INDEX IF NOT EXISTS idx_futures_data_date ON futures_data(date);
CREATE INDEX IF NOT EXISTS idx_delivery_data_date ON delivery_data(date);
CREATE INDEX IF NOT EXISTS idx_bhavcopy_data_date ON bhavcopy_data(date);
CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// maxDate runs a max(date) query over ISO date text.
func (s *SQLiteStore) maxDate(ctx context.Context, query string, args ...any) (time.Time, error) {
	var latest sql.NullString
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&latest); err != nil {
		return time.Time{}, eris.Wrap(err, "sqlite: latest date")
	}
	if !latest.Valid || latest.String == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(sqliteDate, latest.String, time.Local)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "sqlite: stored date %q", latest.String)
	}
	return t, nil
}

func (s *SQLiteStore) LatestDate(ctx context.Context, category Category, symbol string) (time.Time, error) {
	var latest time.Time
	switch category {
	case CategoryEquity:
		eq, err := s.maxDate(ctx, `SELECT max(date) FROM equity_data WHERE scrip = ?`, symbol)
		if err != nil {
			return time.Time{}, err
		}
		ix, err := s.maxDate(ctx, `SELECT max(date) FROM index_data WHERE scrip = ?`, symbol)
		if err != nil {
			return time.Time{}, err
		}
		latest = eq
		if ix.After(latest) {
			latest = ix
		}
	case CategoryDelivery:
		d, err := s.maxDate(ctx, `SELECT max(date) FROM delivery_data`)
		if err != nil {
			return time.Time{}, err
		}
		latest = d
	case CategoryBhavCopy:
		d, err := s.maxDate(ctx, `SELECT max(date) FROM bhavcopy_data`)
		if err != nil {
			return time.Time{}, err
		}
		latest = d
	default:
		return time.Time{}, eris.Errorf("sqlite: unknown category %q", category)
	}
	if latest.IsZero() {
		return Epoch, nil
	}
	return latest, nil
}

func (s *SQLiteStore) UpsertTable(ctx context.Context, kind Kind, symbol string, tbl *normalize.Table) (int64, error) {
	table, conflictKeys, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	cols, rows, err := flatten(kind, symbol, tbl, func(t time.Time) any { return t.Format(sqliteDate) })
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	conflictSet := make(map[string]bool, len(conflictKeys))
	for _, k := range conflictKeys {
		conflictSet[k] = true
	}
	var setClauses []string
	for _, c := range cols {
		if !conflictSet[c] {
			setClauses = append(setClauses, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table,
		strings.Join(cols, ", "),
		placeholders,
		strings.Join(conflictKeys, ", "),
		strings.Join(setClauses, ", "),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: prepare upsert for %s", table)
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, vals := range rows {
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert into %s", table)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return n, nil
}

func (s *SQLiteStore) StartRun(ctx context.Context, symbol, series string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_runs (id, symbol, series, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, symbol, series, string(RunRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return &Run{ID: id, Symbol: symbol, Series: series, Status: RunRunning, StartedAt: now}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, rows int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sync_runs SET status = ?, rows = ?, finished_at = ? WHERE id = ?`,
		string(RunComplete), rows, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sync_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(RunFailed), message, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, series, status, rows, COALESCE(error, ''), started_at, finished_at
		 FROM sync_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Series, &r.Status, &r.Rows, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
