package sheet

import (
	"bytes"
	"context"
	"testing"

	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeSheet lays out a worksheet the way the source workbook does: title
// row, column sub-header, legend row, then data.
func writeSheet(t *testing.T, f *excelize.File, name string, s *Schema, data ...map[Field]string) {
	t.Helper()

	title := KeyListOfConversions(s.Group, s.ColumnCount, s.DatedMarker)
	sub := make([]interface{}, s.ColumnCount)
	legend := make([]interface{}, s.ColumnCount)
	for idx, field := range s.FieldMap {
		sub[idx] = string(field)
		legend[idx] = "-"
	}

	grid := [][]interface{}{toCells(title), sub, legend}
	for _, values := range data {
		row := make([]interface{}, s.ColumnCount)
		for idx, field := range s.FieldMap {
			row[idx] = values[field]
		}
		grid = append(grid, row)
	}

	for i, cells := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(name, cell, &cells))
	}
}

func toCells(labels []string) []interface{} {
	out := make([]interface{}, len(labels))
	for i, l := range labels {
		out[i] = l
	}
	return out
}

func buildWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	s := mustSchema(t, model.SheetPropedeuse)
	require.NoError(t, f.SetSheetName("Sheet1", string(model.SheetPropedeuse)))
	writeSheet(t, f, string(model.SheetPropedeuse), s,
		sampleValues(),
		map[Field]string{FieldNewCode: "BM224", FieldNewName: "Cloud Data"},
	)

	_, err := f.NewSheet(string(model.SheetToetsen))
	require.NoError(t, err)
	writeSheet(t, f, string(model.SheetToetsen), mustSchema(t, model.SheetToetsen), sampleValues())

	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	return buf
}

func TestDecodeWorkbook(t *testing.T) {
	wb, err := DecodeWorkbook(buildWorkbook(t))
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)

	ws := wb.Sheets[0]
	s := mustSchema(t, model.SheetPropedeuse)
	assert.Equal(t, string(model.SheetPropedeuse), ws.Name)
	assert.Equal(t, s.RawKeys, ws.Keys)
	require.Len(t, ws.Rows, 4)

	assert.Equal(t, "BM123", ws.Rows[2][s.RawKeys[1]])
	_, ok := ws.Rows[3][s.RawKeys[1]]
	assert.False(t, ok, "empty cells are absent")
	assert.Equal(t, "BM224", ws.Rows[3][s.HyperlinkKey()])

	assert.Equal(t, string(model.SheetToetsen), wb.Sheets[1].Name)
}

func TestDecodeWorkbook_NotAWorkbook(t *testing.T) {
	_, err := DecodeWorkbook(bytes.NewBufferString("code;naam\nBM123;Databases\n"))
	assert.Error(t, err)
}

func TestCheckTitle(t *testing.T) {
	wb, err := DecodeWorkbook(buildWorkbook(t))
	require.NoError(t, err)

	assert.NoError(t, wb.CheckTitle("Bezem- en conversieregeling"))
	assert.NoError(t, wb.CheckTitle("bezem- EN conversieregeling"))
	assert.ErrorIs(t, wb.CheckTitle("Roosterwijzigingen"), ErrImportFormatMismatch)

	assert.ErrorIs(t, (&Workbook{}).CheckTitle("Bezem"), ErrImportFormatMismatch)
}

func TestRowsFromGrid(t *testing.T) {
	keys, rows := RowsFromGrid([][]string{
		{"Titel", "", "Titel"},
		{"a", "", "c", "d"},
	})

	assert.Equal(t, []string{"Titel", "__EMPTY", "Titel_1", "__EMPTY_1"}, keys)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"Titel": "a", "Titel_1": "c", "__EMPTY_1": "d"}, rows[0])

	keys, rows = RowsFromGrid(nil)
	assert.Nil(t, keys)
	assert.Nil(t, rows)
}

func TestDecodedWorkbookThroughPipeline(t *testing.T) {
	wb, err := DecodeWorkbook(buildWorkbook(t))
	require.NoError(t, err)

	gw := &recordingGateway{}
	o := newTestOrchestrator(gw, nil)
	for _, ws := range wb.Sheets {
		id, err := DefaultRegistry().Resolve(ws.Name)
		require.NoError(t, err)
		_, err = o.ProcessSheet(context.Background(), id, ws.Rows, Options{Persist: true})
		require.NoError(t, err)
	}

	convs := gw.conversions()
	require.Len(t, convs, 3)
	assert.Equal(t, "BM123", convs[1].OldCourse.Code)
	assert.Equal(t, "BM224", convs[1].NewCourse.Code)
	assert.Equal(t, model.SheetToetsen, convs[2].Sheet)
	assert.Equal(t, 5.0, convs[2].NewCourse.EcCourse)
}

func TestDecodeWorkbook_DropsBlankRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	name := string(model.SheetPropedeuse)
	s := mustSchema(t, model.SheetPropedeuse)
	require.NoError(t, f.SetSheetName("Sheet1", name))
	second := sampleValues()
	second[FieldOldCode] = "BM124"
	second[FieldNewCode] = "BM224"
	writeSheet(t, f, name, s, sampleValues(), second)
	// Spacer between the two data rows, plus trailing blank-looking cells.
	require.NoError(t, f.InsertRows(name, 5, 1))
	require.NoError(t, f.SetCellValue(name, "A8", "   "))

	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))

	wb, err := DecodeWorkbook(buf)
	require.NoError(t, err)
	ws := wb.Sheets[0]
	require.Len(t, ws.Rows, 4, "sub-header, legend and two data rows")
	idx, ok := s.IndexOf(FieldOldCode)
	require.True(t, ok)
	assert.Equal(t, "BM124", ws.Rows[3][s.RawKeys[idx]])

	gw := &recordingGateway{}
	report, err := newTestOrchestrator(gw, nil).ProcessSheet(context.Background(), model.SheetPropedeuse, ws.Rows, Options{Persist: true})
	require.NoError(t, err)
	assert.Equal(t, len(ws.Rows)-len(s.SkipRowIndices()), report.Rendered)
	assert.Equal(t, 2, report.Persisted)
	require.Len(t, gw.conversions(), 2)
	assert.Equal(t, "BM124", gw.conversions()[1].OldCourse.Code)
}

func TestRowsFromGrid_DropsBlankRows(t *testing.T) {
	_, rows := RowsFromGrid([][]string{
		{"Titel", "Code"},
		{"a", "BM1"},
		{},
		{"", " "},
		{"b", "BM2"},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "BM2", rows[1]["Code"])
}
