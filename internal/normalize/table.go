// Package normalize parses NSE's downloaded report files into typed tables
// with canonical column names.
package normalize

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Type classifies a column's cell values.
type Type int

const (
	Text Type = iota
	Number
	Date
)

func (t Type) String() string {
	switch t {
	case Text:
		return "Text"
	case Number:
		return "Number"
	case Date:
		return "Date"
	}
	return "Unknown"
}

// Column is a named, typed table column.
type Column struct {
	Name string
	Type Type
}

// Cell holds one typed value. Set is false for cells a truncated source row
// never reached.
type Cell struct {
	Set    bool
	Text   string
	Number float64
	Date   time.Time
}

// TextCell returns a populated text cell.
func TextCell(s string) Cell { return Cell{Set: true, Text: s} }

// NumberCell returns a populated numeric cell.
func NumberCell(f float64) Cell { return Cell{Set: true, Number: f} }

// DateCell returns a populated date cell.
func DateCell(t time.Time) Cell { return Cell{Set: true, Date: t} }

// Row is one table row, cells positionally aligned with the table's columns.
type Row []Cell

// Table is a parsed report: a column schema plus rows of typed cells.
type Table struct {
	Columns []Column
	Rows    []Row
}

// Complete reports whether every cell in the row was populated.
func (r Row) Complete() bool {
	for _, c := range r {
		if !c.Set {
			return false
		}
	}
	return true
}

// ColumnIndex returns the position of a canonical column name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// canonicalName normalizes a source header field: quotes, spaces and periods
// stripped, uppercased.
func canonicalName(raw string) string {
	r := strings.NewReplacer(`"`, "", " ", "", ".", "")
	return strings.ToUpper(r.Replace(raw))
}

// parseNumber reads a numeric field leniently: surrounding quotes and
// thousands separators are stripped, and anything still unparsable becomes
// zero rather than failing the file.
func parseNumber(raw string) float64 {
	s := strings.TrimSpace(strings.NewReplacer(`"`, "", ",", "").Replace(raw))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// dateLayout is how NSE renders dates in report bodies, e.g. 28-Jan-2021.
const dateLayout = "02-Jan-2006"

func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "parsing date %q", raw)
	}
	return t, nil
}

// cleanText strips surrounding quotes and whitespace from a text field.
func cleanText(raw string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
}

// readLines splits a file into comma-separated records line by line, keeping
// blank lines as empty records. The MTO report locates its header by physical
// line number, so blank preamble lines must count toward the index; a csv
// reader would silently drop them.
func readLines(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "opening %s", path)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	recs := make([][]string, len(lines))
	for i, line := range lines {
		recs[i] = strings.Split(line, ",")
	}
	return recs, nil
}

// readRecords loads a whole CSV file. Quoting is lax because NSE files embed
// commas inside quoted numbers and rows vary in width.
func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "reading %s", path)
	}
	return recs, nil
}
