package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/marketgrid/nsesync/internal/db"
	"github.com/marketgrid/nsesync/internal/normalize"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS equity_data (
	scrip      TEXT NOT NULL,
	date       DATE NOT NULL,
	series     TEXT NOT NULL,
	open       DOUBLE PRECISION,
	high       DOUBLE PRECISION,
	low        DOUBLE PRECISION,
	prev_close DOUBLE PRECISION,
	ltp        DOUBLE PRECISION,
	close      DOUBLE PRECISION,
	vwap       DOUBLE PRECISION,
	high_52w   DOUBLE PRECISION,
	low_52w    DOUBLE PRECISION,
	volume     DOUBLE PRECISION,
	value      DOUBLE PRECISION,
	trades     DOUBLE PRECISION,
	PRIMARY KEY (scrip, date, series)
);

CREATE TABLE IF NOT EXISTS index_data (
	scrip      TEXT NOT NULL,
	date       DATE NOT NULL,
	series     TEXT NOT NULL,
	open       DOUBLE PRECISION,
	high       DOUBLE PRECISION,
	low        DOUBLE PRECISION,
	prev_close DOUBLE PRECISION,
	ltp        DOUBLE PRECISION,
	close      DOUBLE PRECISION,
	vwap       DOUBLE PRECISION,
	high_52w   DOUBLE PRECISION,
	low_52w    DOUBLE PRECISION,
	volume     DOUBLE PRECISION,
	value      DOUBLE PRECISION,
	trades     DOUBLE PRECISION,
	PRIMARY KEY (scrip, date, series)
);

CREATE TABLE IF NOT EXISTS futures_data (
	scrip            TEXT NOT NULL,
	date             DATE NOT NULL,
	expiry_date      DATE NOT NULL,
	open             DOUBLE PRECISION,
	high             DOUBLE PRECISION,
	low              DOUBLE PRECISION,
	close            DOUBLE PRECISION,
	ltp              DOUBLE PRECISION,
	settle_price     DOUBLE PRECISION,
	volume           DOUBLE PRECISION,
	value            DOUBLE PRECISION,
	open_interest    DOUBLE PRECISION,
	change_in_oi     DOUBLE PRECISION,
	underlying_value DOUBLE PRECISION,
	PRIMARY KEY (scrip, date, expiry_date)
);

CREATE TABLE IF NOT EXISTS delivery_data (
	scrip_name           TEXT NOT NULL,
	type                 TEXT NOT NULL,
	quantity_traded      DOUBLE PRECISION,
	deliverable_quantity DOUBLE PRECISION,
	date                 DATE NOT NULL,
	PRIMARY KEY (scrip_name, date, type)
);

CREATE TABLE IF NOT EXISTS bhavcopy_data (
	scrip_name            TEXT NOT NULL,
	type                  TEXT NOT NULL,
	open                  DOUBLE PRECISION,
	high                  DOUBLE PRECISION,
	low                   DOUBLE PRECISION,
	close                 DOUBLE PRECISION,
	last                  DOUBLE PRECISION,
	prev_close            DOUBLE PRECISION,
	total_traded_quantity DOUBLE PRECISION,
	total_traded_value    DOUBLE PRECISION,
	total_trades          DOUBLE PRECISION,
	isin                  TEXT,
	date                  DATE NOT NULL,
	PRIMARY KEY (scrip_name, date, type)
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id          TEXT PRIMARY KEY,
	symbol      TEXT NOT NULL,
	series      TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	rows        BIGINT NOT NULL DEFAULT 0,
	error       TEXT,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_equity_data_date ON equity_data(date);
CREATE INDEX IF NOT EXISTS idx_futures_data_date ON futures_data(date);
CREATE INDEX IF NOT EXISTS idx_delivery_data_date ON delivery_data(date);
CREATE INDEX IF NOT EXISTS idx_bhavcopy_data_date ON bhavcopy_data(date);
CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

// maxDate runs a max(date) query, mapping an empty table to the zero time.
func (s *PostgresStore) maxDate(ctx context.Context, query string, args ...any) (time.Time, error) {
	var latest *time.Time
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&latest); err != nil {
		return time.Time{}, eris.Wrap(err, "postgres: latest date")
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}

func (s *PostgresStore) LatestDate(ctx context.Context, category Category, symbol string) (time.Time, error) {
	var latest time.Time
	switch category {
	case CategoryEquity:
		// A symbol lives in exactly one of the two tables, but the
		// watermark question does not care which.
		eq, err := s.maxDate(ctx, `SELECT max(date) FROM equity_data WHERE scrip = $1`, symbol)
		if err != nil {
			return time.Time{}, err
		}
		ix, err := s.maxDate(ctx, `SELECT max(date) FROM index_data WHERE scrip = $1`, symbol)
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
		return time.Time{}, eris.Errorf("postgres: unknown category %q", category)
	}
	if latest.IsZero() {
		return Epoch, nil
	}
	return latest, nil
}

func (s *PostgresStore) UpsertTable(ctx context.Context, kind Kind, symbol string, tbl *normalize.Table) (int64, error) {
	table, conflictKeys, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	cols, rows, err := flatten(kind, symbol, tbl, func(t time.Time) any { return t })
	if err != nil {
		return 0, err
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        table,
		Columns:      cols,
		ConflictKeys: conflictKeys,
	}, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: upsert %s %s", kind, symbol)
	}
	return n, nil
}

func (s *PostgresStore) StartRun(ctx context.Context, symbol, series string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_runs (id, symbol, series, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		id, symbol, series, string(RunRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return &Run{ID: id, Symbol: symbol, Series: series, Status: RunRunning, StartedAt: now}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, rows int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sync_runs SET status = $1, rows = $2, finished_at = $3 WHERE id = $4`,
		string(RunComplete), rows, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sync_runs SET status = $1, error = $2, finished_at = $3 WHERE id = $4`,
		string(RunFailed), message, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, symbol, series, status, rows, COALESCE(error, ''), started_at, finished_at
		 FROM sync_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Series, &r.Status, &r.Rows, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}
