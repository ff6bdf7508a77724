package normalize

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bhavFixture = `SYMBOL,SERIES,OPEN,HIGH,LOW,CLOSE,LAST,PREVCLOSE,TOTTRDQTY,TOTTRDVAL,TIMESTAMP,TOTALTRADES,ISIN,
TCS,EQ,2953.00,3025.00,2948.10,3013.95,3011.00,2928.25,3431914,1028831877.06,04-JAN-2021,155119,INE467B01029,
NIFTYBEES,EQ,153.50,154.90,153.21,154.55,154.60,153.11,4157494,64118168.20,04-JAN-2021,10790,INF204KB14I2,
`

func TestParseBhavFile(t *testing.T) {
	day := time.Date(2021, time.January, 4, 0, 0, 0, 0, time.Local)
	path := writeFixture(t, "cm04JAN2021bhav.csv", bhavFixture)

	tbl, err := ParseBhavFile(path, day)
	require.NoError(t, err)

	// The trailing comma adds an unnamed header field; it is dropped along
	// with any other unrecognized column.
	assert.Len(t, tbl.Columns, 13)
	require.Len(t, tbl.Rows, 2)

	row := tbl.Rows[0]
	assert.Equal(t, "TCS", row[tbl.ColumnIndex("SCRIPNAME")].Text)
	assert.Equal(t, "EQ", row[tbl.ColumnIndex("TYPE")].Text)
	assert.Equal(t, 2953.0, row[tbl.ColumnIndex("OPEN")].Number)
	assert.Equal(t, 155119.0, row[tbl.ColumnIndex("TOTALTRADES")].Number)
	assert.Equal(t, "INE467B01029", row[tbl.ColumnIndex("ISIN")].Text)
	assert.True(t, row.Complete())
}

func TestParseBhavFileDateComesFromCaller(t *testing.T) {
	// The file's own TIMESTAMP field says January, but the report date the
	// caller associates with the file wins.
	day := time.Date(2021, time.February, 1, 0, 0, 0, 0, time.Local)
	path := writeFixture(t, "b.csv", bhavFixture)

	tbl, err := ParseBhavFile(path, day)
	require.NoError(t, err)
	assert.Equal(t, day, tbl.Rows[0][tbl.ColumnIndex("DATE")].Date)
}

func TestParseBhavFileMissingIsEmpty(t *testing.T) {
	tbl, err := ParseBhavFile(filepath.Join(t.TempDir(), "absent.csv"), time.Now())
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
}
