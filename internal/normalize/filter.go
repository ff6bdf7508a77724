package normalize

import "time"

// Filter returns the rows whose DATE falls inside [from, to] inclusive and
// whose every cell is populated. Truncated rows and blank trailing lines
// never pass; the result is safe for direct bulk insert. If the table has no
// DATE column the result is empty.
func Filter(t *Table, from, to time.Time) *Table {
	out := &Table{Columns: t.Columns}
	dateIdx := t.ColumnIndex("DATE")
	if dateIdx < 0 {
		return out
	}
	for _, row := range t.Rows {
		if len(row) != len(t.Columns) || !row.Complete() {
			continue
		}
		d := row[dateIdx].Date
		if d.Before(from) || d.After(to) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
