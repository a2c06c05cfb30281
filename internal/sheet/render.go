package sheet

import (
	"sync"

	"github.com/stemsi/bezem-backend/internal/model"
)

// RenderedRow is the display-ready form of one worksheet row.
type RenderedRow struct {
	Sheet       model.SheetID `json:"sheet"`
	RowIndex    int           `json:"row_index"`
	Cells       []Cell        `json:"cells"`
	DisplayList []string      `json:"display_list"`
}

// RenderTarget receives rendered rows for the view layer.
type RenderTarget interface {
	Render(row RenderedRow)
}

// Table is the rendered form of one sheet.
type Table struct {
	Sheet model.SheetID `json:"sheet"`
	Rows  []RenderedRow `json:"rows"`
}

// TableTarget collects rendered rows per sheet in arrival order.
type TableTarget struct {
	mu     sync.Mutex
	tables []*Table
	index  map[model.SheetID]*Table
}

// NewTableTarget creates an empty TableTarget.
func NewTableTarget() *TableTarget {
	return &TableTarget{index: make(map[model.SheetID]*Table)}
}

// Render implements RenderTarget.
func (t *TableTarget) Render(row RenderedRow) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tbl, ok := t.index[row.Sheet]
	if !ok {
		tbl = &Table{Sheet: row.Sheet}
		t.index[row.Sheet] = tbl
		t.tables = append(t.tables, tbl)
	}
	tbl.Rows = append(tbl.Rows, row)
}

// Tables returns the collected tables.
func (t *TableTarget) Tables() []*Table {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Table, len(t.tables))
	copy(out, t.tables)
	return out
}

// Table returns the rows rendered for one sheet, or nil.
func (t *TableTarget) Table(id model.SheetID) *Table {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index[id]
}

// discardTarget drops rendered rows.
type discardTarget struct{}

func (discardTarget) Render(RenderedRow) {}
