package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Worksheet is a decoded worksheet: the raw keys taken from its title row
// and the rows below it.
type Worksheet struct {
	Name string
	Keys []string
	Rows []Row
}

// Workbook is the ordered list of decoded worksheets.
type Workbook struct {
	Filename string
	Sheets   []Worksheet
}

// DecodeWorkbook reads an .xlsx stream.
func DecodeWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return DecodeFile(f)
}

// OpenWorkbook reads an .xlsx file from disk.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	wb, err := DecodeFile(f)
	if err != nil {
		return nil, err
	}
	wb.Filename = path
	return wb, nil
}

// DecodeFile converts every worksheet of an opened file into rows.
func DecodeFile(f *excelize.File) (*Workbook, error) {
	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		grid, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		keys, rows := RowsFromGrid(grid)
		wb.Sheets = append(wb.Sheets, Worksheet{Name: name, Keys: keys, Rows: rows})
	}
	return wb, nil
}

// RowsFromGrid uses the first grid row as title row: its labels become the
// raw keys of all rows below it. Empty cells are left out of the row so
// they read as absent, and rows without any value are dropped.
func RowsFromGrid(grid [][]string) ([]string, []Row) {
	if len(grid) == 0 {
		return nil, nil
	}

	// GetRows trims trailing empty cells per row, so the title row may be
	// shorter than the data below it.
	width := 0
	for _, cells := range grid {
		if len(cells) > width {
			width = len(cells)
		}
	}
	labels := make([]string, width)
	copy(labels, grid[0])
	keys := HeaderKeys(labels)

	rows := make([]Row, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		row := make(Row, len(cells))
		for i, v := range cells {
			if strings.TrimSpace(v) == "" {
				continue
			}
			row[keys[i]] = v
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return keys, rows
}

// CheckTitle rejects a workbook whose first worksheet does not start with
// the expected title marker.
func (wb *Workbook) CheckTitle(marker string) error {
	if len(wb.Sheets) == 0 {
		return fmt.Errorf("%w: workbook has no worksheets", ErrImportFormatMismatch)
	}
	first := wb.Sheets[0]
	if len(first.Keys) == 0 {
		return fmt.Errorf("%w: worksheet %q is empty", ErrImportFormatMismatch, first.Name)
	}
	title := strings.ToLower(strings.TrimSpace(first.Keys[0]))
	if !strings.HasPrefix(title, strings.ToLower(strings.TrimSpace(marker))) {
		return fmt.Errorf("%w: worksheet %q starts with %q", ErrImportFormatMismatch, first.Name, first.Keys[0])
	}
	return nil
}
