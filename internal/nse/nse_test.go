package nse

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2021, time.January, 4, 0, 0, 0, 0, time.Local)

func TestEquityHistoryURL(t *testing.T) {
	ep := DefaultEndpoints()
	raw := ep.EquityHistoryURL("TCS", day, time.Date(2021, time.December, 31, 0, 0, 0, 0, time.Local))

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.nseindia.com", u.Host)
	assert.Equal(t, "/api/historical/cm/equity", u.Path)
	q := u.Query()
	assert.Equal(t, "TCS", q.Get("symbol"))
	assert.Equal(t, `["EQ"]`, q.Get("series"))
	assert.Equal(t, "04-01-2021", q.Get("from"))
	assert.Equal(t, "31-12-2021", q.Get("to"))
}

func TestFuturesHistoryURL(t *testing.T) {
	ep := DefaultEndpoints()

	tests := []struct {
		name   string
		symbol string
		index  bool
		want   string
	}{
		{"stock future", "TCS", false, "FUTSTK"},
		{"index future", "NIFTY", true, "FUTIDX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := ep.FuturesHistoryURL(tt.symbol, day, day.AddDate(0, 0, 27), "28-Jan-2021", tt.index)
			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "/api/historical/fo/derivatives", u.Path)
			q := u.Query()
			assert.Equal(t, tt.want, q.Get("instrumentType"))
			assert.Equal(t, "28-Jan-2021", q.Get("expiryDate"))
			assert.Equal(t, tt.symbol, q.Get("symbol"))
		})
	}
}

func TestDeliveryCSVURL(t *testing.T) {
	raw := DefaultEndpoints().DeliveryCSVURL("TCS", day, day.AddDate(0, 0, 10))
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/api/historicalOR/generateSecurityWiseHistoricalData", u.Path)
	q := u.Query()
	assert.Equal(t, "04-01-2021", q.Get("from"))
	assert.Equal(t, "14-01-2021", q.Get("to"))
	assert.Equal(t, "TCS", q.Get("symbol"))
	assert.Equal(t, "EQ", q.Get("series"))
	assert.Equal(t, "priceVolumeDeliverable", q.Get("type"))
}

func TestArchiveURLs(t *testing.T) {
	ep := DefaultEndpoints()
	assert.Equal(t,
		"https://www1.nseindia.com/archives/equities/mto/MTO_04012021.DAT",
		ep.DeliveryArchiveURL(day))
	assert.Equal(t,
		"https://www1.nseindia.com/content/historical/EQUITIES/2021/JAN/cm04JAN2021bhav.csv.zip",
		ep.BhavArchiveURL(day))
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "DELIVERYDATA_04012021.csv", DeliveryDownloadName(day))
	assert.Equal(t, "DELIVERYDATA_04JAN2021.csv", DeliveryStagedName(day))
	assert.Equal(t, "bhavcopy_04JAN2021.zip", BhavArchiveName(day))
	assert.Equal(t, "cm04JAN2021bhav.csv", BhavStagedName(day))
	assert.Equal(t, "Quote-Equity-TCS-EQ-04-01-2021-04-01-2021.csv", EquityQuoteName("TCS", day, day))
	assert.Equal(t, "Delivery-TCS-EQ-04-01-2021-04-01-2021.csv", DeliveryReportName("TCS", day, day))
	assert.Equal(t, "Quote-FAO-NIFTY-01-01-2021-31-01-2021-28-Jan-2021.csv",
		FuturesQuoteName("NIFTY",
			time.Date(2021, time.January, 1, 0, 0, 0, 0, time.Local),
			time.Date(2021, time.January, 31, 0, 0, 0, 0, time.Local),
			"28-Jan-2021"))
	assert.Equal(t, "Quote-Equity-TCS-*", EquityQuoteGlob("TCS"))
	assert.Equal(t, "Quote-FAO-NIFTY-*", FuturesQuoteGlob("NIFTY"))
}
