// Package sheettest builds .xlsx workbooks in the layout of the published
// bezem- en conversieregeling, for tests.
package sheettest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/sheet"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a test workbook.
type Sheet struct {
	Name string
	ID   model.SheetID
	Rows []map[sheet.Field]string
}

// SampleValues returns a complete row for the given old course code. The
// new code is the old code with an "N" suffix.
func SampleValues(code string) map[sheet.Field]string {
	return map[sheet.Field]string{
		sheet.FieldEducation: "HBO-ICT", sheet.FieldOldCode: code, sheet.FieldOldName: "Databases",
		sheet.FieldEcCourseOld: "5", sheet.FieldToetsOld: "Tentamen", sheet.FieldWegingOld: "100",
		sheet.FieldEcToetsOld: "5", sheet.FieldBezemOrConv: "Conversie", sheet.FieldNewCode: code + "N",
		sheet.FieldNewName: "Data Engineering", sheet.FieldEcCourseNew: "5", sheet.FieldToetsNew: "Project",
		sheet.FieldWegingNew: "50", sheet.FieldEcToetsNew: "2,5", sheet.FieldPeriode: "A",
		sheet.FieldCoordinator: "J. de Vries", sheet.FieldOpmerking: "undefined",
	}
}

// Workbook builds an .xlsx with a title row, a column sub-header, a legend
// row and the data rows of every sheet. A non-empty title replaces the first
// title cell of the first worksheet.
func Workbook(t testing.TB, title string, sheets ...Sheet) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, fs := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", fs.Name))
		} else {
			_, err := f.NewSheet(fs.Name)
			require.NoError(t, err)
		}

		s, err := sheet.SchemaFor(fs.ID)
		require.NoError(t, err)

		labels := sheet.KeyListOfConversions(s.Group, s.ColumnCount, s.DatedMarker)
		if i == 0 && title != "" {
			labels[0] = title
		}
		header := make([]interface{}, len(labels))
		for j, l := range labels {
			header[j] = l
		}
		sub := make([]interface{}, s.ColumnCount)
		legend := make([]interface{}, s.ColumnCount)
		for idx, field := range s.FieldMap {
			sub[idx] = string(field)
			legend[idx] = "-"
		}
		grid := [][]interface{}{header, sub, legend}
		for _, values := range fs.Rows {
			row := make([]interface{}, s.ColumnCount)
			for idx, field := range s.FieldMap {
				row[idx] = values[field]
			}
			grid = append(grid, row)
		}

		for r, cells := range grid {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(fs.Name, cell, &cells))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// Standard holds Propedeuse rows BM101 and BM102 and Toetsen row BM201.
func Standard(t testing.TB) []byte {
	return Workbook(t, "",
		Sheet{Name: "Propedeuse", ID: model.SheetPropedeuse, Rows: []map[sheet.Field]string{
			SampleValues("BM101"), SampleValues("BM102"),
		}},
		Sheet{Name: "Toetsen", ID: model.SheetToetsen, Rows: []map[sheet.Field]string{
			SampleValues("BM201"),
		}},
	)
}

// WriteFile stores raw in a temporary regeling.xlsx and returns its path.
func WriteFile(t testing.TB, raw []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regeling.xlsx")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}
