package models

// RawTable is a loaded but untyped table: column names plus string cells.
// Empty strings stand for missing values.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of a column, or -1
func (t RawTable) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether a column is present
func (t RawTable) Has(column string) bool {
	return t.Index(column) >= 0
}

// Len returns the number of rows
func (t RawTable) Len() int {
	return len(t.Rows)
}

// Concat appends the rows of other tables, aligning them on column names.
// Columns missing from a table are filled with empty cells.
func (t RawTable) Concat(others ...RawTable) RawTable {
	cols := append([]string(nil), t.Columns...)
	for _, o := range others {
		for _, c := range o.Columns {
			found := false
			for _, have := range cols {
				if have == c {
					found = true
					break
				}
			}
			if !found {
				cols = append(cols, c)
			}
		}
	}

	out := RawTable{Columns: cols}
	for _, src := range append([]RawTable{t}, others...) {
		pos := make([]int, len(cols))
		for i, c := range cols {
			pos[i] = src.Index(c)
		}
		for _, row := range src.Rows {
			aligned := make([]string, len(cols))
			for i, p := range pos {
				if p >= 0 && p < len(row) {
					aligned[i] = row[p]
				}
			}
			out.Rows = append(out.Rows, aligned)
		}
	}
	return out
}
