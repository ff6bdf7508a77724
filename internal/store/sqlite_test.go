package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgrid/nsesync/internal/normalize"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "nsesync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func equityTable(day time.Time, close float64) *normalize.Table {
	return &normalize.Table{
		Columns: []normalize.Column{
			{Name: "DATE", Type: normalize.Date},
			{Name: "SERIES", Type: normalize.Text},
			{Name: "OPEN", Type: normalize.Number},
			{Name: "CLOSE", Type: normalize.Number},
		},
		Rows: []normalize.Row{
			{normalize.DateCell(day), normalize.TextCell("EQ"), normalize.NumberCell(3000), normalize.NumberCell(close)},
		},
	}
}

func TestSQLiteStore_LatestDate_EpochFallback(t *testing.T) {
	s := newTestSQLite(t)

	for _, cat := range []Category{CategoryEquity, CategoryDelivery, CategoryBhavCopy} {
		got, err := s.LatestDate(context.Background(), cat, "TCS")
		require.NoError(t, err)
		assert.Equal(t, Epoch, got, string(cat))
	}
}

func TestSQLiteStore_UpsertAdvancesWatermark(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	day := time.Date(2021, time.June, 10, 0, 0, 0, 0, time.Local)
	n, err := s.UpsertTable(ctx, KindEquity, "TCS", equityTable(day, 3013.95))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.LatestDate(ctx, CategoryEquity, "TCS")
	require.NoError(t, err)
	assert.Equal(t, day, got)

	// Another symbol still reports the epoch.
	got, err = s.LatestDate(ctx, CategoryEquity, "INFY")
	require.NoError(t, err)
	assert.Equal(t, Epoch, got)
}

func TestSQLiteStore_UpsertIsIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	day := time.Date(2021, time.June, 10, 0, 0, 0, 0, time.Local)
	_, err := s.UpsertTable(ctx, KindEquity, "TCS", equityTable(day, 3013.95))
	require.NoError(t, err)
	_, err = s.UpsertTable(ctx, KindEquity, "TCS", equityTable(day, 3020.00))
	require.NoError(t, err)

	var count int
	var close float64
	row := s.db.QueryRowContext(ctx, `SELECT count(*), max(close) FROM equity_data WHERE scrip = 'TCS'`)
	require.NoError(t, row.Scan(&count, &close))
	assert.Equal(t, 1, count, "conflicting row must update, not duplicate")
	assert.Equal(t, 3020.00, close)
}

func TestSQLiteStore_IndexDataFeedsEquityWatermark(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	day := time.Date(2021, time.July, 1, 0, 0, 0, 0, time.Local)
	_, err := s.UpsertTable(ctx, KindIndex, "NIFTY", equityTable(day, 15700))
	require.NoError(t, err)

	got, err := s.LatestDate(ctx, CategoryEquity, "NIFTY")
	require.NoError(t, err)
	assert.Equal(t, day, got)
}

func TestSQLiteStore_DeliveryWatermarkIsMarketWide(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	day := time.Date(2021, time.June, 11, 0, 0, 0, 0, time.Local)
	tbl := &normalize.Table{
		Columns: []normalize.Column{
			{Name: "SCRIPNAME", Type: normalize.Text},
			{Name: "TYPE", Type: normalize.Text},
			{Name: "QUANTITYTRADED", Type: normalize.Number},
			{Name: "DELIVERABLEQUANTITY", Type: normalize.Number},
			{Name: "DATE", Type: normalize.Date},
		},
		Rows: []normalize.Row{
			{normalize.TextCell("TCS"), normalize.TextCell("EQ"), normalize.NumberCell(3431914), normalize.NumberCell(52.31), normalize.DateCell(day)},
		},
	}
	_, err := s.UpsertTable(ctx, KindDelivery, "", tbl)
	require.NoError(t, err)

	// Symbol argument is irrelevant for daily market-wide feeds.
	got, err := s.LatestDate(ctx, CategoryDelivery, "anything")
	require.NoError(t, err)
	assert.Equal(t, day, got)
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.StartRun(ctx, "TCS", "EQUITY")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, run.ID, 250))

	failed, err := s.StartRun(ctx, "INFY", "FUTURES")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, failed.ID, "fetch timed out"))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byID := map[string]Run{}
	for _, r := range runs {
		byID[r.ID] = r
	}
	assert.Equal(t, RunComplete, byID[run.ID].Status)
	assert.Equal(t, int64(250), byID[run.ID].Rows)
	assert.NotNil(t, byID[run.ID].FinishedAt)
	assert.Equal(t, RunFailed, byID[failed.ID].Status)
	assert.Equal(t, "fetch timed out", byID[failed.ID].Error)
}

func TestSQLiteStore_FailRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	err := s.FailRun(context.Background(), "missing-id", "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
