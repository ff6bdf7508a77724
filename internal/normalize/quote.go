package normalize

import (
	"github.com/rotisserie/eris"
)

// quoteColumnType types a canonical quote-file column. Dates and the series
// flag are the only non-numeric columns NSE emits in these reports.
func quoteColumnType(name string) Type {
	switch name {
	case "DATE", "EXPIRYDATE":
		return Date
	case "SERIES":
		return Text
	default:
		return Number
	}
}

// ParseQuoteFile parses a downloaded equity or derivatives history CSV. The
// first record is the header; a missing file is an error because the engine
// only asks for files it downloaded.
//
// An empty field ends its row early: that cell and every cell after it stay
// unset, and the filter later drops the row.
func ParseQuoteFile(path string) (*Table, error) {
	recs, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, eris.Errorf("quote file %s is empty", path)
	}

	cols := make([]Column, len(recs[0]))
	for i, raw := range recs[0] {
		name := canonicalName(raw)
		cols[i] = Column{Name: name, Type: quoteColumnType(name)}
	}

	tbl := &Table{Columns: cols}
	for _, rec := range recs[1:] {
		row := make(Row, len(cols))
		for i := range cols {
			if i >= len(rec) || cleanText(rec[i]) == "" {
				break
			}
			cell, err := typedCell(cols[i].Type, rec[i])
			if err != nil {
				return nil, eris.Wrapf(err, "%s column %s", path, cols[i].Name)
			}
			row[i] = cell
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

func typedCell(t Type, raw string) (Cell, error) {
	switch t {
	case Date:
		d, err := parseDate(raw)
		if err != nil {
			return Cell{}, err
		}
		return DateCell(d), nil
	case Text:
		return TextCell(cleanText(raw)), nil
	default:
		return NumberCell(parseNumber(raw)), nil
	}
}
