package sheet

import (
	"fmt"
	"io"
	"strconv"

	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// ExportHeaders are the column titles of the re-export workbook.
var ExportHeaders = []string{
	"Opleiding", "Periode",
	"Code oud", "Naam oud", "EC oud", "Toets oud", "Weging oud", "EC toets oud",
	"Bezem/Conversie",
	"Code nieuw", "Naam nieuw", "EC nieuw", "Toets nieuw", "Weging nieuw", "EC toets nieuw",
	"Coördinator", "Opmerking",
}

// ExportRow is the flat, spreadsheet-shaped view of a conversion.
type ExportRow struct {
	Education    string  `json:"education"`
	Period       string  `json:"period"`
	OldCode      string  `json:"old_code"`
	OldName      string  `json:"old_name"`
	OldEC        float64 `json:"old_ec"`
	OldExamType  string  `json:"old_exam_type"`
	OldWeighting float64 `json:"old_weighting"`
	OldEcExam    float64 `json:"old_ec_exam"`
	Kind         string  `json:"bezem_or_conversion"`
	NewCode      string  `json:"new_code"`
	NewName      string  `json:"new_name"`
	NewEC        float64 `json:"new_ec"`
	NewExamType  string  `json:"new_exam_type"`
	NewWeighting float64 `json:"new_weighting"`
	NewEcExam    float64 `json:"new_ec_exam"`
	Coordinator  string  `json:"coordinator"`
	Comment      string  `json:"comment"`
}

// Cells returns the row in ExportHeaders order.
func (r ExportRow) Cells() []interface{} {
	return []interface{}{
		r.Education, r.Period,
		r.OldCode, r.OldName, r.OldEC, r.OldExamType, r.OldWeighting, r.OldEcExam,
		r.Kind,
		r.NewCode, r.NewName, r.NewEC, r.NewExamType, r.NewWeighting, r.NewEcExam,
		r.Coordinator, r.Comment,
	}
}

// Strings returns the row as text, for the search index.
func (r ExportRow) Strings() []string {
	cells := r.Cells()
	out := make([]string, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case string:
			out[i] = v
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// ProjectConversion flattens one conversion.
func ProjectConversion(c model.Conversion) ExportRow {
	return ExportRow{
		Education:    c.OldCourse.Education,
		Period:       c.OldCourse.Period,
		OldCode:      c.OldCourse.Code,
		OldName:      c.OldCourse.Name,
		OldEC:        c.OldCourse.EcCourse,
		OldExamType:  c.OldCourse.Exam.ExamType,
		OldWeighting: c.OldCourse.Exam.Weighting,
		OldEcExam:    c.OldCourse.Exam.EcExam,
		Kind:         string(c.BezemOrConversion),
		NewCode:      c.NewCourse.Code,
		NewName:      c.NewCourse.Name,
		NewEC:        c.NewCourse.EcCourse,
		NewExamType:  c.NewCourse.Exam.ExamType,
		NewWeighting: c.NewCourse.Exam.Weighting,
		NewEcExam:    c.NewCourse.Exam.EcExam,
		Coordinator:  c.OldCourse.Exam.Coordinator,
		Comment:      c.Comment,
	}
}

// Project filters conversions by sheet tag and flattens them, keeping
// collection order.
func Project(conversions []model.Conversion, sheetID model.SheetID) []ExportRow {
	var out []ExportRow
	for _, c := range conversions {
		if c.Sheet == sheetID {
			out = append(out, ProjectConversion(c))
		}
	}
	return out
}

// WriteWorkbook writes one worksheet per sheet tag, each holding the
// projection of that sheet's conversions.
func WriteWorkbook(w io.Writer, conversions []model.Conversion, sheets []model.SheetID) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, id := range sheets {
		name := string(id)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}

		header := make([]interface{}, len(ExportHeaders))
		for j, h := range ExportHeaders {
			header[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("write header %s: %w", name, err)
		}
		if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("style header %s: %w", name, err)
		}

		for j, row := range Project(conversions, id) {
			cell, _ := excelize.CoordinatesToCellName(1, j+2)
			values := row.Cells()
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("write %s row %d: %w", name, j+2, err)
			}
		}
	}

	return f.Write(w)
}
