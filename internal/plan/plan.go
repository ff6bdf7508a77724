// Package plan turns a watermark and a target date into the download windows
// each data series needs.
package plan

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/marketgrid/nsesync/internal/expiry"
)

// Series identifies one of the NSE data feeds the pipeline tracks.
type Series int

const (
	Equity Series = iota
	Futures
	Delivery
	BhavCopy
)

func (s Series) String() string {
	switch s {
	case Equity:
		return "EQUITY"
	case Futures:
		return "FUTURES"
	case Delivery:
		return "DELIVERY"
	case BhavCopy:
		return "BHAVCOPY"
	}
	return "UNKNOWN"
}

// Sentinel outcomes of planning. ErrNoData means the range holds no trading
// data worth fetching; ErrNotYetAvailable means the exchange has not
// published today's data yet.
var (
	ErrNoData          = eris.New("plan: no data in range")
	ErrNotYetAvailable = eris.New("plan: data not yet available")
)

// Window is one download request: a series, a symbol, an inclusive date
// range, and for futures the contract expiry label.
type Window struct {
	Series Series
	Symbol string
	From   time.Time
	To     time.Time
	Expiry string
	Index  bool
}

// Policy configures availability rules. The zero value is not usable; use
// DefaultPolicy.
type Policy struct {
	// AvailableAfterHour is the local hour after which the current day's
	// data is considered published.
	AvailableAfterHour int
	// Now supplies the current time; tests override it.
	Now func() time.Time
}

// DefaultPolicy gates same-day fetches until 21:00 local time.
func DefaultPolicy() Policy {
	return Policy{AvailableAfterHour: 21, Now: time.Now}
}

// Planner computes download windows against the expiry calendar.
type Planner struct {
	cal *expiry.Calendar
	pol Policy
}

// New returns a Planner over the given calendar and policy.
func New(cal *expiry.Calendar, pol Policy) *Planner {
	if pol.Now == nil {
		pol.Now = time.Now
	}
	return &Planner{cal: cal, pol: pol}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// clamp advances from past the watermark. Daily series re-fetch the watermark
// day itself; cumulative series resume the day after.
func clamp(from, watermark time.Time, refetchWatermark bool) time.Time {
	if !from.Before(watermark) {
		return from
	}
	if refetchWatermark {
		return watermark
	}
	return watermark.AddDate(0, 0, 1)
}

// bounds validates and clamps a requested range for one series. It applies
// the availability gate and, for the quote series, the weekend guard.
func (p *Planner) bounds(series Series, from, to, watermark time.Time) (time.Time, time.Time, error) {
	from, to, watermark = midnight(from), midnight(to), midnight(watermark)
	rawSpan := to.Sub(from).Hours() / 24

	refetch := series == Delivery || series == BhavCopy
	from = clamp(from, watermark, refetch)
	if from.After(to) {
		return time.Time{}, time.Time{}, eris.Wrapf(ErrNoData, "%s range empty after watermark", series)
	}

	today := midnight(p.pol.Now())
	if from.After(today) {
		return time.Time{}, time.Time{}, eris.Wrapf(ErrNotYetAvailable, "%s window starts %s", series, from.Format("2006-01-02"))
	}
	if from.Equal(today) && p.pol.Now().Hour() < p.pol.AvailableAfterHour {
		return time.Time{}, time.Time{}, eris.Wrapf(ErrNotYetAvailable, "%s data for %s publishes after %02d:00", series, from.Format("2006-01-02"), p.pol.AvailableAfterHour)
	}

	if series == Equity || series == Futures {
		// A span of more than two days always crosses a weekday. Short
		// weekend-to-weekend ranges hold no trading sessions.
		clampedSpan := to.Sub(from).Hours() / 24
		if rawSpan <= 2 && isWeekend(from) && isWeekend(to) && clampedSpan < 2 {
			return time.Time{}, time.Time{}, eris.Wrapf(ErrNoData, "%s range %s..%s is all weekend", series, from.Format("2006-01-02"), to.Format("2006-01-02"))
		}
	}
	return from, to, nil
}

// EquityWindows plans cash-market history windows for one symbol, chunked
// per calendar year.
func (p *Planner) EquityWindows(symbol string, from, to, watermark time.Time) ([]Window, error) {
	from, to, err := p.bounds(Equity, from, to, watermark)
	if err != nil {
		return nil, err
	}
	var out []Window
	for start := from; !start.After(to); {
		end := time.Date(start.Year(), time.December, 31, 0, 0, 0, 0, time.Local)
		if end.After(to) {
			end = to
		}
		out = append(out, Window{Series: Equity, Symbol: symbol, From: start, To: end})
		start = end.AddDate(0, 0, 1)
	}
	return out, nil
}

// FuturesWindows plans derivatives history windows for one symbol: for every
// contract month the range touches, the whole calendar month crossed with the
// near and next contract expiries.
func (p *Planner) FuturesWindows(symbol string, index bool, from, to, watermark time.Time) ([]Window, error) {
	from, to, err := p.bounds(Futures, from, to, watermark)
	if err != nil {
		return nil, err
	}
	first, err := p.cal.MonthIndex(from)
	if err != nil {
		return nil, err
	}
	last, err := p.cal.MonthIndex(to)
	if err != nil {
		return nil, err
	}
	var out []Window
	for idx := first; idx <= last; idx++ {
		near, err := p.cal.For(idx)
		if err != nil {
			return nil, err
		}
		next, err := p.cal.For(idx + 1)
		if err != nil {
			return nil, eris.Wrapf(err, "next contract for month %d", idx)
		}
		for _, exp := range []expiry.Entry{near, next} {
			out = append(out, Window{
				Series: Futures,
				Symbol: symbol,
				From:   near.MonthStart(),
				To:     near.MonthEnd(),
				Expiry: exp.Label(),
				Index:  index,
			})
		}
	}
	return out, nil
}

// DailyWindows plans one window per day for a market-wide daily series.
func (p *Planner) DailyWindows(series Series, from, to, watermark time.Time) ([]Window, error) {
	from, to, err := p.bounds(series, from, to, watermark)
	if err != nil {
		return nil, err
	}
	var out []Window
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		out = append(out, Window{Series: series, From: day, To: day})
	}
	return out, nil
}
