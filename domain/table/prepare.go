package table

// PrepareScaled returns a deep copy with the named columns multiplied,
// row by row, by the total column. Partial-sum line types store per-record
// means; scaling them by total once up front lets downstream formulas treat
// every column as a plain sum. Rows where total or a named column is not
// numeric are left untouched.
func (t *Table) PrepareScaled(columns []string) *Table {
	out := t.CloneRows()
	ti := out.ColumnIndex("total")
	if ti < 0 {
		return out
	}
	seen := make(map[int]struct{}, len(columns))
	for _, name := range columns {
		ci := out.ColumnIndex(name)
		if ci < 0 {
			continue
		}
		if _, dup := seen[ci]; dup {
			continue
		}
		seen[ci] = struct{}{}
		for _, row := range out.rows {
			total, ok1 := row[ti].Float()
			v, ok2 := row[ci].Float()
			if !ok1 || !ok2 {
				continue
			}
			row[ci] = Num(v * total)
		}
	}
	return out
}
