package sheet

// Row is one worksheet row keyed by raw column key. Empty cells are absent,
// which is how merged cells show up below their first row.
type Row map[string]string

// Normalize returns a copy of row in which every raw key of the schema that
// is absent is filled from the nearest preceding row carrying it. The walk
// stops at header and footer rows, so data never inherits column labels.
// Keys that no predecessor carries stay absent.
func Normalize(row Row, rowIndex int, sheetRows []Row, schema *Schema) Row {
	filled := make(Row, len(schema.RawKeys))
	for k, v := range row {
		filled[k] = v
	}

	for _, key := range schema.RawKeys {
		if _, ok := filled[key]; ok {
			continue
		}
		if v, ok := inherit(key, rowIndex, sheetRows, schema); ok {
			filled[key] = v
		}
	}
	return filled
}

func inherit(key string, rowIndex int, sheetRows []Row, schema *Schema) (string, bool) {
	if rowIndex > len(sheetRows) {
		rowIndex = len(sheetRows)
	}
	for i := rowIndex - 1; i >= 0; i-- {
		if schema.Skips(i) {
			return "", false
		}
		if v, ok := sheetRows[i][key]; ok {
			return v, true
		}
	}
	return "", false
}
