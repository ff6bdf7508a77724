package normalize

import (
	"os"
	"time"
)

// deliveryHeaderRow skips the preamble/banner lines in the MTO report.
const deliveryHeaderRow = 3

// deliveryValueOffset is the positional shift between an output column and
// the raw field holding its value: data rows open with the record type and
// serial number, so the value for column i sits at raw position i+2.
// Emptiness is still judged at position i.
const deliveryValueOffset = 2

// deliveryColumns maps canonicalized MTO header names to output columns, in
// the order the header presents them. The name shift (quantity header feeding
// the TYPE column and so on) mirrors the offset in the file layout.
var deliveryColumns = map[string]Column{
	"NAMEOFSECURITY": {Name: "SCRIPNAME", Type: Text},
	"QUANTITYTRADED": {Name: "TYPE", Type: Text},
	"DELIVERABLEQUANTITY(GROSSACROSSCLIENTLEVEL)": {Name: "QUANTITYTRADED", Type: Number},
	"%OFDELIVERABLEQUANTITYTOTRADEDQUANTITY":      {Name: "DELIVERABLEQUANTITY", Type: Number},
}

// ParseDeliveryFile parses a daily MTO delivery report. The report date is
// not carried in the rows, so the caller supplies it and it is appended as
// the DATE column. A missing file yields an empty table: daily files for
// holidays legitimately do not exist.
func ParseDeliveryFile(path string, associatedDate time.Time) (*Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Table{}, nil
	}
	recs, err := readLines(path)
	if err != nil {
		return nil, err
	}
	if len(recs) <= deliveryHeaderRow {
		return &Table{}, nil
	}

	header := recs[deliveryHeaderRow]
	var cols []Column
	for _, raw := range header {
		if col, ok := deliveryColumns[canonicalName(raw)]; ok {
			cols = append(cols, col)
		}
	}
	cols = append(cols, Column{Name: "DATE", Type: Date})

	tbl := &Table{Columns: cols}
	for _, rec := range recs[deliveryHeaderRow+1:] {
		row := make(Row, len(cols))
		truncated := false
		for i := range cols[:len(cols)-1] {
			if i >= len(rec) || cleanText(rec[i]) == "" || i+deliveryValueOffset >= len(rec) {
				truncated = true
				break
			}
			cell, err := typedCell(cols[i].Type, rec[i+deliveryValueOffset])
			if err != nil {
				return nil, err
			}
			row[i] = cell
		}
		if !truncated {
			row[len(cols)-1] = DateCell(associatedDate)
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}
