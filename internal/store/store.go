// Package store persists normalized market data and the sync run log.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/marketgrid/nsesync/internal/normalize"
)

// Category groups the tables one watermark covers. Equity watermarks are per
// symbol; the daily market-wide feeds share one watermark each.
type Category string

const (
	CategoryEquity   Category = "EQUITY"
	CategoryDelivery Category = "DELIVERY"
	CategoryBhavCopy Category = "BHAVCOPY"
)

// Kind routes an upsert to its table.
type Kind string

const (
	KindEquity   Kind = "EQUITY"
	KindFutures  Kind = "FUTURES"
	KindIndex    Kind = "INDEX"
	KindDelivery Kind = "DELIVERY"
	KindBhavCopy Kind = "BHAVCOPY"
)

// Epoch is the watermark reported when a table holds no data yet: history
// before it is never fetched.
var Epoch = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.Local)

// RunStatus tracks a sync run through its lifecycle.
type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunComplete RunStatus = "complete"
	RunFailed   RunStatus = "failed"
)

// Run is one logged sync attempt for a symbol and series.
type Run struct {
	ID         string
	Symbol     string
	Series     string
	Status     RunStatus
	Rows       int64
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Store defines the persistence interface for the sync pipeline.
type Store interface {
	// LatestDate returns the most recent persisted date for the category
	// (and, for equity, the symbol), or Epoch when nothing is stored.
	LatestDate(ctx context.Context, category Category, symbol string) (time.Time, error)

	// UpsertTable writes a filtered normalized table, returning rows written.
	UpsertTable(ctx context.Context, kind Kind, symbol string, tbl *normalize.Table) (int64, error)

	// Run log
	StartRun(ctx context.Context, symbol, series string) (*Run, error)
	CompleteRun(ctx context.Context, runID string, rows int64) error
	FailRun(ctx context.Context, runID string, message string) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	case "sqlite":
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// tableFor maps a kind to its table and conflict key.
func tableFor(kind Kind) (table string, conflictKeys []string, err error) {
	switch kind {
	case KindEquity:
		return "equity_data", []string{"scrip", "date", "series"}, nil
	case KindIndex:
		return "index_data", []string{"scrip", "date", "series"}, nil
	case KindFutures:
		return "futures_data", []string{"scrip", "date", "expiry_date"}, nil
	case KindDelivery:
		return "delivery_data", []string{"scrip_name", "date", "type"}, nil
	case KindBhavCopy:
		return "bhavcopy_data", []string{"scrip_name", "date", "type"}, nil
	default:
		return "", nil, eris.Errorf("store: unknown kind %q", kind)
	}
}

// columnMaps translate canonical normalizer columns to database columns.
// Canonical columns without a mapping are dropped.
var (
	quoteColumnMap = map[string]string{
		"DATE":       "date",
		"SERIES":     "series",
		"OPEN":       "open",
		"HIGH":       "high",
		"LOW":        "low",
		"PREVCLOSE":  "prev_close",
		"LTP":        "ltp",
		"CLOSE":      "close",
		"VWAP":       "vwap",
		"52WH":       "high_52w",
		"52WL":       "low_52w",
		"VOLUME":     "volume",
		"VALUE":      "value",
		"NOOFTRADES": "trades",
	}

	futuresColumnMap = map[string]string{
		"DATE":            "date",
		"EXPIRYDATE":      "expiry_date",
		"OPEN":            "open",
		"HIGH":            "high",
		"LOW":             "low",
		"CLOSE":           "close",
		"LTP":             "ltp",
		"SETTLEPRICE":     "settle_price",
		"VOLUME":          "volume",
		"VALUE":           "value",
		"OPENINTEREST":    "open_interest",
		"CHANGEINOI":      "change_in_oi",
		"UNDERLYINGVALUE": "underlying_value",
	}

	deliveryColumnMap = map[string]string{
		"SCRIPNAME":           "scrip_name",
		"TYPE":                "type",
		"QUANTITYTRADED":      "quantity_traded",
		"DELIVERABLEQUANTITY": "deliverable_quantity",
		"DATE":                "date",
	}

	bhavColumnMap = map[string]string{
		"SCRIPNAME":           "scrip_name",
		"TYPE":                "type",
		"OPEN":                "open",
		"HIGH":                "high",
		"LOW":                 "low",
		"CLOSE":               "close",
		"LAST":                "last",
		"PREVCLOSE":           "prev_close",
		"TOTALTRADEDQUANTITY": "total_traded_quantity",
		"TOTALTRADEDVALUE":    "total_traded_value",
		"TOTALTRADES":         "total_trades",
		"ISIN":                "isin",
		"DATE":                "date",
	}
)

func columnMapFor(kind Kind) (map[string]string, error) {
	switch kind {
	case KindEquity, KindIndex:
		return quoteColumnMap, nil
	case KindFutures:
		return futuresColumnMap, nil
	case KindDelivery:
		return deliveryColumnMap, nil
	case KindBhavCopy:
		return bhavColumnMap, nil
	default:
		return nil, eris.Errorf("store: unknown kind %q", kind)
	}
}

// symbolKeyed reports whether the kind's table carries the instrument symbol
// as its own column, supplied by the caller rather than the file.
func symbolKeyed(kind Kind) bool {
	return kind == KindEquity || kind == KindIndex || kind == KindFutures
}

// flatten converts a normalized table into insert columns and row values.
// Dates are rendered through renderDate so each driver can pick its own
// representation.
func flatten(kind Kind, symbol string, tbl *normalize.Table, renderDate func(time.Time) any) ([]string, [][]any, error) {
	colMap, err := columnMapFor(kind)
	if err != nil {
		return nil, nil, err
	}

	var dbCols []string
	var srcIdx []int
	if symbolKeyed(kind) {
		dbCols = append(dbCols, "scrip")
		srcIdx = append(srcIdx, -1)
	}
	for i, c := range tbl.Columns {
		if dbCol, ok := colMap[c.Name]; ok {
			dbCols = append(dbCols, dbCol)
			srcIdx = append(srcIdx, i)
		}
	}

	rows := make([][]any, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		vals := make([]any, len(dbCols))
		for j, i := range srcIdx {
			if i < 0 {
				vals[j] = symbol
				continue
			}
			switch tbl.Columns[i].Type {
			case normalize.Text:
				vals[j] = row[i].Text
			case normalize.Date:
				vals[j] = renderDate(row[i].Date)
			default:
				vals[j] = row[i].Number
			}
		}
		rows = append(rows, vals)
	}
	return dbCols, rows, nil
}
