package normalize

import (
	"os"
	"time"
)

// bhavColumns maps canonicalized bhavcopy header names to output columns.
// Header fields outside this set are dropped.
var bhavColumns = map[string]Column{
	"SYMBOL":      {Name: "SCRIPNAME", Type: Text},
	"SERIES":      {Name: "TYPE", Type: Text},
	"OPEN":        {Name: "OPEN", Type: Number},
	"HIGH":        {Name: "HIGH", Type: Number},
	"LOW":         {Name: "LOW", Type: Number},
	"CLOSE":       {Name: "CLOSE", Type: Number},
	"LAST":        {Name: "LAST", Type: Number},
	"PREVCLOSE":   {Name: "PREVCLOSE", Type: Number},
	"TOTTRDQTY":   {Name: "TOTALTRADEDQUANTITY", Type: Number},
	"TOTTRDVAL":   {Name: "TOTALTRADEDVALUE", Type: Number},
	"TOTALTRADES": {Name: "TOTALTRADES", Type: Number},
	"ISIN":        {Name: "ISIN", Type: Text},
	"TIMESTAMP":   {Name: "DATE", Type: Date},
}

// ParseBhavFile parses an extracted end-of-day bhavcopy CSV. The DATE column
// is filled from the supplied report date rather than the file's TIMESTAMP
// field. A missing file yields an empty table.
func ParseBhavFile(path string, associatedDate time.Time) (*Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Table{}, nil
	}
	recs, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return &Table{}, nil
	}

	var cols []Column
	var srcPos []int
	for k, raw := range recs[0] {
		if col, ok := bhavColumns[canonicalName(raw)]; ok {
			cols = append(cols, col)
			srcPos = append(srcPos, k)
		}
	}

	tbl := &Table{Columns: cols}
	for _, rec := range recs[1:] {
		row := make(Row, len(cols))
		for i, k := range srcPos {
			if k >= len(rec) || cleanText(rec[k]) == "" {
				break
			}
			if cols[i].Type == Date {
				row[i] = DateCell(associatedDate)
				continue
			}
			cell, err := typedCell(cols[i].Type, rec[k])
			if err != nil {
				return nil, err
			}
			row[i] = cell
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}
