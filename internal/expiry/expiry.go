// Package expiry maintains the monthly F&O contract expiry calendar and maps
// calendar dates to contract month indexes.
package expiry

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// baseYear anchors month index 1 at January of this year.
const baseYear = 2018

// ErrOutOfRange is returned when a month index or date falls outside the
// populated calendar.
var ErrOutOfRange = eris.New("expiry: month outside calendar range")

// Entry is one contract month's expiry date.
type Entry struct {
	MonthIndex int        `yaml:"-"`
	Day        int        `yaml:"day"`
	Month      time.Month `yaml:"month"`
	Year       int        `yaml:"year"`
}

// Date returns the expiry date at midnight local time.
func (e Entry) Date() time.Time {
	return time.Date(e.Year, e.Month, e.Day, 0, 0, 0, 0, time.Local)
}

// Label formats the expiry the way NSE's historical derivatives API expects
// it, e.g. "28-Jan-2021".
func (e Entry) Label() string {
	return e.Date().Format("02-Jan-2006")
}

// MonthStart returns the first day of the entry's contract month.
func (e Entry) MonthStart() time.Time {
	return time.Date(e.Year, e.Month, 1, 0, 0, 0, 0, time.Local)
}

// MonthEnd returns the last day of the entry's contract month.
func (e Entry) MonthEnd() time.Time {
	return e.MonthStart().AddDate(0, 1, -1)
}

// Calendar is the validated expiry schedule. Month indexes are contiguous
// starting at 1 (January 2018).
type Calendar struct {
	entries []Entry
}

// NewCalendar builds the calendar from the built-in schedule.
func NewCalendar() (*Calendar, error) {
	return build(monthlyExpiries)
}

// NewCalendarWithExtension builds the calendar from the built-in schedule
// followed by additional months read from a YAML file. The extension must
// continue the schedule without gaps.
func NewCalendarWithExtension(path string) (*Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reading expiry extension %s", path)
	}
	var ext []Entry
	if err := yaml.Unmarshal(data, &ext); err != nil {
		return nil, eris.Wrapf(err, "parsing expiry extension %s", path)
	}
	return build(append(append([]Entry{}, monthlyExpiries...), ext...))
}

func build(entries []Entry) (*Calendar, error) {
	if len(entries) == 0 {
		return nil, eris.New("expiry: empty calendar")
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		wantYear := baseYear + i/12
		wantMonth := time.Month(i%12 + 1)
		if e.Year != wantYear || e.Month != wantMonth {
			return nil, eris.Errorf("expiry: entry %d is %s %d, want %s %d",
				i+1, e.Month, e.Year, wantMonth, wantYear)
		}
		if e.Day < 1 || e.Day > e.MonthEnd().Day() {
			return nil, eris.Errorf("expiry: entry %d has invalid day %d", i+1, e.Day)
		}
		e.MonthIndex = i + 1
		out[i] = e
	}
	return &Calendar{entries: out}, nil
}

// Len reports the number of contract months in the calendar.
func (c *Calendar) Len() int { return len(c.entries) }

// For returns the entry for a 1-based month index.
func (c *Calendar) For(monthIndex int) (Entry, error) {
	if monthIndex < 1 || monthIndex > len(c.entries) {
		return Entry{}, eris.Wrapf(ErrOutOfRange, "month index %d", monthIndex)
	}
	return c.entries[monthIndex-1], nil
}

// MonthIndex maps a date to its contract month index. The index advances by
// one per calendar month regardless of where in the month t falls.
func (c *Calendar) MonthIndex(t time.Time) (int, error) {
	idx := (t.Year()-baseYear)*12 + int(t.Month())
	if idx < 1 || idx > len(c.entries) {
		return 0, eris.Wrapf(ErrOutOfRange, "date %s", t.Format("2006-01-02"))
	}
	return idx, nil
}
