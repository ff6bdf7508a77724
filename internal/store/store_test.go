package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgrid/nsesync/internal/normalize"
)

func TestFlattenPrependsSymbol(t *testing.T) {
	day := time.Date(2021, time.January, 4, 0, 0, 0, 0, time.Local)
	tbl := &normalize.Table{
		Columns: []normalize.Column{
			{Name: "DATE", Type: normalize.Date},
			{Name: "SERIES", Type: normalize.Text},
			{Name: "CLOSE", Type: normalize.Number},
		},
		Rows: []normalize.Row{
			{normalize.DateCell(day), normalize.TextCell("EQ"), normalize.NumberCell(3013.95)},
		},
	}

	cols, rows, err := flatten(KindEquity, "TCS", tbl, func(t time.Time) any { return t })
	require.NoError(t, err)
	assert.Equal(t, []string{"scrip", "date", "series", "close"}, cols)
	require.Len(t, rows, 1)
	assert.Equal(t, []any{"TCS", day, "EQ", 3013.95}, rows[0])
}

func TestFlattenDropsUnmappedColumns(t *testing.T) {
	tbl := &normalize.Table{
		Columns: []normalize.Column{
			{Name: "DATE", Type: normalize.Date},
			{Name: "SOMETHINGNEW", Type: normalize.Number},
		},
		Rows: []normalize.Row{
			{normalize.DateCell(time.Now()), normalize.NumberCell(1)},
		},
	}

	cols, rows, err := flatten(KindEquity, "TCS", tbl, func(t time.Time) any { return t })
	require.NoError(t, err)
	assert.Equal(t, []string{"scrip", "date"}, cols)
	assert.Len(t, rows[0], 2)
}

func TestFlattenDeliveryHasNoSymbolColumn(t *testing.T) {
	tbl := &normalize.Table{
		Columns: []normalize.Column{
			{Name: "SCRIPNAME", Type: normalize.Text},
			{Name: "DATE", Type: normalize.Date},
		},
		Rows: []normalize.Row{
			{normalize.TextCell("TCS"), normalize.DateCell(time.Now())},
		},
	}

	cols, _, err := flatten(KindDelivery, "", tbl, func(t time.Time) any { return t.Format("2006-01-02") })
	require.NoError(t, err)
	assert.Equal(t, []string{"scrip_name", "date"}, cols)
}

func TestTableFor(t *testing.T) {
	tests := []struct {
		kind     Kind
		table    string
		conflict []string
	}{
		{KindEquity, "equity_data", []string{"scrip", "date", "series"}},
		{KindIndex, "index_data", []string{"scrip", "date", "series"}},
		{KindFutures, "futures_data", []string{"scrip", "date", "expiry_date"}},
		{KindDelivery, "delivery_data", []string{"scrip_name", "date", "type"}},
		{KindBhavCopy, "bhavcopy_data", []string{"scrip_name", "date", "type"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			table, keys, err := tableFor(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.table, table)
			assert.Equal(t, tt.conflict, keys)
		})
	}

	_, _, err := tableFor(Kind("BOGUS"))
	assert.Error(t, err)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	assert.Error(t, err)
}
