package normalize

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The MTO report carries three banner lines, then a header row. Data rows
// open with a record type and serial number, so each recognized column's
// value sits two raw fields right of the column's own position; the trailing
// percentage field is never read.
const deliveryFixture = `Daily Share-wise Delivery Position
Trade Date 04-JAN-2021
Record Type 20
Record Type ,Sr No ,Name of Security ,Quantity Traded ,Deliverable Quantity(gross across client level) ,% of Deliverable Quantity to Traded Quantity
20,1,TCS,EQ,3431914,1795000,52.31
20,2,INFY,EQ,8111000,4950954,61.04
`

var deliveryDay = time.Date(2021, time.January, 4, 0, 0, 0, 0, time.Local)

func TestParseDeliveryFile(t *testing.T) {
	path := writeFixture(t, "DELIVERYDATA_04JAN2021.csv", deliveryFixture)

	tbl, err := ParseDeliveryFile(path, deliveryDay)
	require.NoError(t, err)

	want := []Column{
		{Name: "SCRIPNAME", Type: Text},
		{Name: "TYPE", Type: Text},
		{Name: "QUANTITYTRADED", Type: Number},
		{Name: "DELIVERABLEQUANTITY", Type: Number},
		{Name: "DATE", Type: Date},
	}
	assert.Equal(t, want, tbl.Columns)
	require.Len(t, tbl.Rows, 2)

	row := tbl.Rows[0]
	assert.Equal(t, "TCS", row[0].Text)
	assert.Equal(t, "EQ", row[1].Text)
	assert.Equal(t, 3431914.0, row[2].Number)
	assert.Equal(t, 1795000.0, row[3].Number)
	assert.Equal(t, deliveryDay, row[4].Date)
	assert.True(t, row.Complete())
}

func TestParseDeliveryFileTruncation(t *testing.T) {
	fixture := `banner
banner
banner
Record Type ,Sr No ,Name of Security ,Quantity Traded ,Deliverable Quantity(gross across client level) ,% of Deliverable Quantity to Traded Quantity
20,,INFY,EQ,8111000,4950954,61.04
`
	path := writeFixture(t, "d.csv", fixture)

	tbl, err := ParseDeliveryFile(path, deliveryDay)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)

	row := tbl.Rows[0]
	assert.True(t, row[0].Set)
	assert.Equal(t, "INFY", row[0].Text)
	assert.False(t, row[1].Set)
	assert.False(t, row[4].Set, "date stays unset on a truncated row")
	assert.False(t, row.Complete())
}

func TestParseDeliveryFileCountsBlankPreambleLines(t *testing.T) {
	// A blank line in the preamble still counts toward the header's
	// physical position.
	fixture := `Daily Share-wise Delivery Position
Trade Date 04-JAN-2021

Record Type ,Sr No ,Name of Security ,Quantity Traded ,Deliverable Quantity(gross across client level) ,% of Deliverable Quantity to Traded Quantity
20,1,TCS,EQ,3431914,1795000,52.31
`
	path := writeFixture(t, "d.csv", fixture)

	tbl, err := ParseDeliveryFile(path, deliveryDay)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "TCS", tbl.Rows[0][0].Text)
	assert.True(t, tbl.Rows[0].Complete())
}

func TestParseDeliveryFileMissingIsEmpty(t *testing.T) {
	tbl, err := ParseDeliveryFile(filepath.Join(t.TempDir(), "absent.csv"), deliveryDay)
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
}

func TestParseDeliveryFileTooShortIsEmpty(t *testing.T) {
	path := writeFixture(t, "d.csv", "banner\nbanner\n")

	tbl, err := ParseDeliveryFile(path, deliveryDay)
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
}
