package sheet

import (
	"fmt"
	"html"
	"net/url"
	"strings"
)

// enrollPath is the course enrolment page, with :id replaced by the course code.
const enrollPath = "/inschrijven/cursus/:id"

// Slots holds the extracted values by semantic field.
type Slots map[Field]string

// Get returns the trimmed slot value and whether it is present and non-blank.
func (s Slots) Get(f Field) (string, bool) {
	v, ok := s[f]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Cell is one rendered table cell.
type Cell struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Field Field  `json:"field"`
	Value string `json:"value"`
	Raw   string `json:"raw"`
	Link  bool   `json:"link,omitempty"`
}

// Extraction is the result of walking a schema's field map over one row.
type Extraction struct {
	Slots Slots
	// Cells holds the columns selected for display, hyperlink column rendered.
	Cells []Cell
	// DisplayList holds the raw value of every column position, for search.
	DisplayList []string
}

// Extractor selects and labels the columns of a normalized row.
type Extractor struct {
	enrollBaseURL string
}

// NewExtractor creates an Extractor linking course codes to enrollBaseURL.
func NewExtractor(enrollBaseURL string) *Extractor {
	return &Extractor{enrollBaseURL: strings.TrimRight(enrollBaseURL, "/")}
}

// EnrollURL returns the enrolment URL for a course code.
func (e *Extractor) EnrollURL(code string) string {
	return e.enrollBaseURL + strings.Replace(enrollPath, ":id", url.PathEscape(code), 1)
}

// Anchor renders a code as a link to its enrolment page.
func (e *Extractor) Anchor(code string) string {
	return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener">%s</a>`,
		html.EscapeString(e.EnrollURL(code)), html.EscapeString(code))
}

// Extract walks the field map in index order. Every position fills its slot
// and the display list; a position becomes a rendered cell when displayMode
// is set or its raw key is always visible.
func (e *Extractor) Extract(filled Row, schema *Schema, displayMode bool) Extraction {
	out := Extraction{
		Slots:       make(Slots, len(schema.FieldMap)),
		DisplayList: make([]string, schema.ColumnCount),
	}
	linkKey := schema.HyperlinkKey()

	for _, idx := range schema.Indices() {
		field := schema.FieldMap[idx]
		key := schema.RawKeys[idx]

		raw, present := filled[key]
		raw = strings.TrimSpace(raw)
		out.DisplayList[idx] = raw
		if present {
			out.Slots[field] = raw
		}

		if !displayMode && !schema.IsAlwaysVisible(key) {
			continue
		}

		cell := Cell{Index: idx, Key: key, Field: field, Value: raw, Raw: raw}
		if linkKey != "" && key == linkKey && raw != "" {
			cell.Value = e.Anchor(raw)
			cell.Link = true
		}
		out.Cells = append(out.Cells, cell)
	}
	return out
}
