package sheet

import (
	"strings"

	"github.com/stemsi/bezem-backend/internal/model"
)

// SearchEntry is one searchable row.
type SearchEntry struct {
	Sheet    model.SheetID `json:"sheet"`
	RowIndex int           `json:"row_index"`
	Values   []string      `json:"values"`
	text     string
}

// Index is a flat, case-insensitive full-text index over row values.
type Index struct {
	entries []SearchEntry
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{}
}

// IndexRendered indexes the display lists of rendered rows.
func IndexRendered(rows []RenderedRow) *Index {
	ix := NewIndex()
	for _, r := range rows {
		ix.Add(r.Sheet, r.RowIndex, r.DisplayList)
	}
	return ix
}

// Add indexes a row.
func (ix *Index) Add(sheetID model.SheetID, rowIndex int, values []string) {
	ix.entries = append(ix.entries, SearchEntry{
		Sheet:    sheetID,
		RowIndex: rowIndex,
		Values:   values,
		text:     strings.ToLower(strings.Join(values, " ")),
	})
}

// Len returns the number of indexed rows.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Search returns the rows containing every whitespace-separated term.
func (ix *Index) Search(query string) []SearchEntry {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	var out []SearchEntry
	for _, e := range ix.entries {
		match := true
		for _, t := range terms {
			if !strings.Contains(e.text, t) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	return out
}
