package sheet

import (
	"testing"

	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func sampleValues() map[Field]string {
	return map[Field]string{
		FieldEducation:   "HBO-ICT",
		FieldOldCode:     "BM123",
		FieldOldName:     "Databases",
		FieldEcCourseOld: "5",
		FieldToetsOld:    "Tentamen",
		FieldWegingOld:   "100",
		FieldEcToetsOld:  "5",
		FieldBezemOrConv: "Conversie",
		FieldNewCode:     "BM223",
		FieldNewName:     "Data Engineering",
		FieldEcCourseNew: "5",
		FieldToetsNew:    "Project",
		FieldWegingNew:   "50",
		FieldEcToetsNew:  "2,5",
		FieldPeriode:     "A",
		FieldCoordinator: "J. de Vries",
		FieldOpmerking:   "undefined",
	}
}

func mustSchema(t *testing.T, id model.SheetID) *Schema {
	t.Helper()
	s, err := SchemaFor(id)
	require.NoError(t, err)
	return s
}

// rowFor places field values at the schema's positions. Empty values are
// left out, as the decoder does.
func rowFor(schema *Schema, values map[Field]string) Row {
	row := Row{}
	for idx, f := range schema.FieldMap {
		if v, ok := values[f]; ok && v != "" {
			row[schema.RawKeys[idx]] = v
		}
	}
	return row
}

// headerRowsFor returns one sub-header row per skipped leading index.
func headerRowsFor(schema *Schema) []Row {
	var rows []Row
	for _, i := range schema.SkipRowIndices() {
		if i != len(rows) {
			break
		}
		row := Row{}
		for idx, f := range schema.FieldMap {
			row[schema.RawKeys[idx]] = string(f)
		}
		rows = append(rows, row)
	}
	return rows
}

// sheetRows builds the header rows plus n complete data rows.
func sheetRows(schema *Schema, n int) []Row {
	rows := headerRowsFor(schema)
	for i := 0; i < n; i++ {
		rows = append(rows, rowFor(schema, sampleValues()))
	}
	return rows
}

func slotsFor(values map[Field]string) Slots {
	s := Slots{}
	for f, v := range values {
		s[f] = v
	}
	return s
}
