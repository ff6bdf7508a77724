// Package nse builds request URLs and staging file names for NSE India's
// historical data endpoints.
package nse

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAPIBase serves the JSON/CSV historical APIs.
	DefaultAPIBase = "https://www.nseindia.com"
	// DefaultArchiveBase serves the static daily archives.
	DefaultArchiveBase = "https://www1.nseindia.com"
)

// Endpoints holds the base URLs for the two NSE hosts.
type Endpoints struct {
	APIBase     string
	ArchiveBase string
}

// DefaultEndpoints returns the production NSE hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{APIBase: DefaultAPIBase, ArchiveBase: DefaultArchiveBase}
}

// dateParam renders a date the way the historical APIs expect query
// parameters, dd-MM-yyyy.
func dateParam(t time.Time) string {
	return t.Format("02-01-2006")
}

// upperMonthStamp renders ddMMMyyyy with the month abbreviation uppercased,
// e.g. 04JAN2021.
func upperMonthStamp(t time.Time) string {
	return t.Format("02") + strings.ToUpper(t.Format("Jan")) + t.Format("2006")
}

// EquityHistoryURL returns the cash-market historical data URL for one symbol
// over an inclusive date range. Only the EQ series is requested. csv=true
// selects the CSV rendering of the response; the portal's own link passes
// csv=false and gets JSON, which nothing here can parse.
func (e Endpoints) EquityHistoryURL(symbol string, from, to time.Time) string {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("series", `["EQ"]`)
	q.Set("from", dateParam(from))
	q.Set("to", dateParam(to))
	q.Set("csv", "true")
	return e.APIBase + "/api/historical/cm/equity?" + q.Encode()
}

// FuturesHistoryURL returns the derivatives historical data URL for one
// contract. Index underlyings use instrument type FUTIDX, stocks FUTSTK.
func (e Endpoints) FuturesHistoryURL(symbol string, from, to time.Time, expiry string, index bool) string {
	instrument := "FUTSTK"
	if index {
		instrument = "FUTIDX"
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("from", dateParam(from))
	q.Set("to", dateParam(to))
	q.Set("expiryDate", expiry)
	q.Set("instrumentType", instrument)
	q.Set("csv", "true")
	return e.APIBase + "/api/historical/fo/derivatives?" + q.Encode()
}

// DeliveryCSVURL returns the security-wise deliverable position report URL
// for one symbol over an inclusive date range. This report is fetched per
// symbol as a reference file; the market-wide MTO archive is what feeds the
// delivery table.
func (e Endpoints) DeliveryCSVURL(symbol string, from, to time.Time) string {
	q := url.Values{}
	q.Set("from", dateParam(from))
	q.Set("to", dateParam(to))
	q.Set("symbol", symbol)
	q.Set("type", "priceVolumeDeliverable")
	q.Set("series", "EQ")
	q.Set("csv", "true")
	return e.APIBase + "/api/historicalOR/generateSecurityWiseHistoricalData?" + q.Encode()
}

// DeliveryArchiveURL returns the market-wide MTO delivery report URL for one
// day on the archive host.
func (e Endpoints) DeliveryArchiveURL(day time.Time) string {
	return fmt.Sprintf("%s/archives/equities/mto/MTO_%s.DAT", e.ArchiveBase, day.Format("02012006"))
}

// BhavArchiveURL returns the zipped cash-market bhavcopy URL for one day.
func (e Endpoints) BhavArchiveURL(day time.Time) string {
	return fmt.Sprintf("%s/content/historical/EQUITIES/%d/%s/cm%sbhav.csv.zip",
		e.ArchiveBase, day.Year(), strings.ToUpper(day.Format("Jan")), upperMonthStamp(day))
}

// DeliveryDownloadName is the on-disk name a delivery report is downloaded
// under, with a numeric month, e.g. DELIVERYDATA_04012021.csv.
func DeliveryDownloadName(day time.Time) string {
	return fmt.Sprintf("DELIVERYDATA_%s.csv", day.Format("02012006"))
}

// DeliveryStagedName is the name a delivery report carries after staging,
// with the month spelled out, e.g. DELIVERYDATA_04JAN2021.csv.
func DeliveryStagedName(day time.Time) string {
	return fmt.Sprintf("DELIVERYDATA_%s.csv", upperMonthStamp(day))
}

// BhavArchiveName is the on-disk name a bhavcopy archive is downloaded under,
// e.g. bhavcopy_04JAN2021.zip.
func BhavArchiveName(day time.Time) string {
	return fmt.Sprintf("bhavcopy_%s.zip", upperMonthStamp(day))
}

// BhavStagedName is the CSV inside the bhavcopy archive, e.g.
// cm04JAN2021bhav.csv.
func BhavStagedName(day time.Time) string {
	return fmt.Sprintf("cm%sbhav.csv", upperMonthStamp(day))
}

// DeliveryReportName is the on-disk name a per-symbol deliverable position
// report is saved under. The Delivery- prefix keeps these files out of the
// Quote- and DELIVERYDATA_ globs.
func DeliveryReportName(symbol string, from, to time.Time) string {
	return fmt.Sprintf("Delivery-%s-EQ-%s-%s.csv",
		symbol, from.Format("02-01-2006"), to.Format("02-01-2006"))
}

// EquityQuoteName is the on-disk name an equity history download is saved
// under for one symbol and window.
func EquityQuoteName(symbol string, from, to time.Time) string {
	return fmt.Sprintf("Quote-Equity-%s-EQ-%s-%s.csv",
		symbol, from.Format("02-01-2006"), to.Format("02-01-2006"))
}

// FuturesQuoteName is the on-disk name a futures history download is saved
// under for one contract.
func FuturesQuoteName(symbol string, from, to time.Time, expiry string) string {
	return fmt.Sprintf("Quote-FAO-%s-%s-%s-%s.csv",
		symbol, from.Format("02-01-2006"), to.Format("02-01-2006"), expiry)
}

// EquityQuoteGlob matches every staged equity history file for a symbol.
func EquityQuoteGlob(symbol string) string {
	return fmt.Sprintf("Quote-Equity-%s-*", symbol)
}

// FuturesQuoteGlob matches every staged futures history file for a symbol.
func FuturesQuoteGlob(symbol string) string {
	return fmt.Sprintf("Quote-FAO-%s-*", symbol)
}
