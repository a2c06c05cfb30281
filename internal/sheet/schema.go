package sheet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stemsi/bezem-backend/internal/model"
)

// Field is the semantic name of a slot extracted from a positional column.
type Field string

const (
	FieldEducation   Field = "education"
	FieldOldCode     Field = "oldCode"
	FieldOldName     Field = "oldName"
	FieldEcCourseOld Field = "ecCourseOld"
	FieldToetsOld    Field = "toetsOld"
	FieldWegingOld   Field = "wegingOld"
	FieldEcToetsOld  Field = "ecToetsOld"
	FieldBezemOrConv Field = "bezemOrConversie"
	FieldNewCode     Field = "newCode"
	FieldNewName     Field = "newName"
	FieldEcCourseNew Field = "ecCourseNew"
	FieldToetsNew    Field = "toetsNew"
	FieldWegingNew   Field = "wegingNew"
	FieldEcToetsNew  Field = "ecToetsNew"
	FieldPeriode     Field = "periode"
	FieldCoordinator Field = "coordinator"
	FieldOpmerking   Field = "opmerking"
)

// Schema describes one worksheet layout.
type Schema struct {
	ID          model.SheetID `json:"id"`
	Group       KeyGroup      `json:"group"`
	ColumnCount int           `json:"column_count"`
	RawKeys     []string      `json:"raw_keys"`
	FieldMap    map[int]Field `json:"field_map"`
	// HyperlinkIndex is -1 when the layout has no link column.
	HyperlinkIndex int `json:"hyperlink_index"`
	// DerivedCredits layouts have no course-credit column; ecCourse is
	// computed as ecToets*100/weging.
	DerivedCredits   bool   `json:"derived_credits"`
	DefaultEducation string `json:"default_education,omitempty"`
	DatedMarker      string `json:"dated_marker"`

	skipRows      map[int]struct{}
	alwaysVisible map[string]struct{}
}

// Skips reports whether the row index is a header or footer row.
func (s *Schema) Skips(rowIndex int) bool {
	_, ok := s.skipRows[rowIndex]
	return ok
}

// SkipRowIndices returns the skip set in ascending order.
func (s *Schema) SkipRowIndices() []int {
	out := make([]int, 0, len(s.skipRows))
	for i := range s.skipRows {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// HyperlinkKey returns the raw key of the link column, or "" if there is none.
func (s *Schema) HyperlinkKey() string {
	if s.HyperlinkIndex < 0 || s.HyperlinkIndex >= len(s.RawKeys) {
		return ""
	}
	return s.RawKeys[s.HyperlinkIndex]
}

// IsAlwaysVisible reports whether a column is shown in browse mode.
func (s *Schema) IsAlwaysVisible(rawKey string) bool {
	_, ok := s.alwaysVisible[rawKey]
	return ok
}

// Indices returns the mapped column indices in ascending order.
func (s *Schema) Indices() []int {
	out := make([]int, 0, len(s.FieldMap))
	for i := range s.FieldMap {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// IndexOf returns the column position of a field.
func (s *Schema) IndexOf(f Field) (int, bool) {
	for i, mapped := range s.FieldMap {
		if mapped == f {
			return i, true
		}
	}
	return -1, false
}

// Has reports whether the layout carries a column for the field.
func (s *Schema) Has(f Field) bool {
	_, ok := s.IndexOf(f)
	return ok
}

// RequiredFields lists the slots a row must resolve before it can be
// persisted. Education is required only when the layout has the column.
func (s *Schema) RequiredFields() []Field {
	req := []Field{
		FieldOldCode, FieldOldName, FieldToetsOld, FieldWegingOld, FieldEcToetsOld,
		FieldNewCode, FieldNewName, FieldToetsNew, FieldWegingNew, FieldEcToetsNew,
		FieldBezemOrConv, FieldCoordinator,
	}
	if s.Has(FieldEducation) {
		req = append([]Field{FieldEducation}, req...)
	}
	if !s.DerivedCredits {
		req = append(req, FieldEcCourseOld, FieldEcCourseNew)
	}
	return req
}

// Validate checks the internal consistency of the layout.
func (s *Schema) Validate() error {
	if len(s.RawKeys) != s.ColumnCount {
		return fmt.Errorf("%s: %d raw keys for %d columns", s.ID, len(s.RawKeys), s.ColumnCount)
	}
	if len(s.FieldMap) != s.ColumnCount {
		return fmt.Errorf("%s: field map covers %d of %d columns", s.ID, len(s.FieldMap), s.ColumnCount)
	}
	seen := make(map[Field]int, len(s.FieldMap))
	for i, f := range s.FieldMap {
		if i < 0 || i >= s.ColumnCount {
			return fmt.Errorf("%s: field %s at index %d out of range", s.ID, f, i)
		}
		if prev, dup := seen[f]; dup {
			return fmt.Errorf("%s: field %s mapped at %d and %d", s.ID, f, prev, i)
		}
		seen[f] = i
	}
	if s.HyperlinkIndex >= s.ColumnCount {
		return fmt.Errorf("%s: hyperlink index %d out of range", s.ID, s.HyperlinkIndex)
	}
	if s.DerivedCredits && (s.Has(FieldEcCourseOld) || s.Has(FieldEcCourseNew)) {
		return fmt.Errorf("%s: derived-credit layout must not map a course-credit column", s.ID)
	}
	if !s.Has(FieldEducation) && s.DefaultEducation == "" {
		return fmt.Errorf("%s: no education column and no default", s.ID)
	}
	return nil
}

// variant is the declarative form of a layout.
type variant struct {
	id        model.SheetID
	group     KeyGroup
	layout    []Field
	hyperlink Field
	skip      []int
	derived   bool
	education string
	dated     string
	// legacy fields sit under unlabeled title cells and stay visible in browse mode.
	legacy []Field
}

func newSchema(v variant) *Schema {
	n := len(v.layout)
	s := &Schema{
		ID:               v.id,
		Group:            v.group,
		ColumnCount:      n,
		RawKeys:          HeaderKeys(KeyListOfConversions(v.group, n, v.dated)),
		FieldMap:         make(map[int]Field, n),
		HyperlinkIndex:   -1,
		DerivedCredits:   v.derived,
		DefaultEducation: v.education,
		DatedMarker:      v.dated,
		skipRows:         make(map[int]struct{}, len(v.skip)),
		alwaysVisible:    make(map[string]struct{}),
	}
	for i, f := range v.layout {
		s.FieldMap[i] = f
		if v.hyperlink != "" && f == v.hyperlink {
			s.HyperlinkIndex = i
		}
	}
	for _, i := range v.skip {
		s.skipRows[i] = struct{}{}
	}

	s.alwaysVisible[VersionUpdateKey] = struct{}{}
	if v.dated != "" {
		s.alwaysVisible[v.dated] = struct{}{}
	}
	for _, f := range v.legacy {
		if i, ok := s.IndexOf(f); ok && strings.HasPrefix(s.RawKeys[i], EmptyKey) {
			s.alwaysVisible[s.RawKeys[i]] = struct{}{}
		}
	}
	return s
}

var (
	layoutRegulier17 = []Field{
		FieldEducation, FieldOldCode, FieldOldName, FieldEcCourseOld, FieldToetsOld,
		FieldWegingOld, FieldEcToetsOld, FieldBezemOrConv, FieldNewCode, FieldNewName,
		FieldEcCourseNew, FieldToetsNew, FieldWegingNew, FieldEcToetsNew, FieldPeriode,
		FieldCoordinator, FieldOpmerking,
	}
	layoutDeeltijd17 = []Field{
		FieldEducation, FieldPeriode, FieldOldCode, FieldOldName, FieldEcCourseOld,
		FieldBezemOrConv, FieldToetsOld, FieldWegingOld, FieldEcToetsOld, FieldNewCode,
		FieldNewName, FieldEcCourseNew, FieldToetsNew, FieldWegingNew, FieldEcToetsNew,
		FieldCoordinator, FieldOpmerking,
	}
	layoutRegulier16 = []Field{
		FieldOldCode, FieldOldName, FieldEcCourseOld, FieldToetsOld, FieldWegingOld,
		FieldEcToetsOld, FieldPeriode, FieldBezemOrConv, FieldNewCode, FieldNewName,
		FieldEcCourseNew, FieldToetsNew, FieldWegingNew, FieldEcToetsNew, FieldCoordinator,
		FieldOpmerking,
	}
	layoutDeeltijd16 = []Field{
		FieldPeriode, FieldOldCode, FieldOldName, FieldEcCourseOld, FieldToetsOld,
		FieldBezemOrConv, FieldWegingOld, FieldEcToetsOld, FieldNewCode, FieldNewName,
		FieldEcCourseNew, FieldToetsNew, FieldWegingNew, FieldEcToetsNew, FieldCoordinator,
		FieldOpmerking,
	}
	layoutDerived14 = []Field{
		FieldOldCode, FieldOldName, FieldToetsOld, FieldWegingOld, FieldEcToetsOld,
		FieldPeriode, FieldCoordinator, FieldBezemOrConv, FieldNewCode, FieldNewName,
		FieldToetsNew, FieldWegingNew, FieldEcToetsNew, FieldOpmerking,
	}

	codeColumns = []Field{FieldOldCode, FieldNewCode}
	nameColumns = []Field{FieldOldCode, FieldOldName, FieldNewCode, FieldNewName}
)

// Dated markers are shared by the two sheets of a pair.
const (
	markerPropedeuse = "Gewijzigd per 01-09-2024"
	markerDeeltijd   = "Gewijzigd per 01-02-2025"
	markerKeuze      = "Gewijzigd per 15-11-2024"
	markerAfstuderen = "Gewijzigd per 01-03-2025"
	markerToetsing   = "Gewijzigd per 01-12-2024"
)

var variants = []variant{
	{id: model.SheetPropedeuse, group: GroupRegulier, layout: layoutRegulier17, hyperlink: FieldNewCode,
		skip: []int{0, 1}, dated: markerPropedeuse, legacy: nameColumns},
	{id: model.SheetHoofdfase, group: GroupRegulier, layout: layoutRegulier17, hyperlink: FieldNewCode,
		skip: []int{0, 1}, dated: markerPropedeuse, legacy: nameColumns},
	{id: model.SheetDeeltijd, group: GroupDeeltijd, layout: layoutDeeltijd17, hyperlink: FieldNewCode,
		skip: []int{0, 1}, dated: markerDeeltijd, legacy: nameColumns},
	{id: model.SheetMinoren, group: GroupRegulier, layout: layoutRegulier16,
		skip: []int{0, 1}, education: "Minor", dated: markerKeuze, legacy: codeColumns},
	{id: model.SheetKeuzeonderwijs, group: GroupRegulier, layout: layoutRegulier16, hyperlink: FieldNewCode,
		skip: []int{0, 1}, education: "Keuzeonderwijs", dated: markerKeuze, legacy: codeColumns},
	{id: model.SheetAfstuderen, group: GroupRegulier, layout: layoutRegulier16, hyperlink: FieldNewCode,
		skip: []int{0, 1, 2}, education: "Afstudeerfase", dated: markerAfstuderen, legacy: nameColumns},
	{id: model.SheetAssociate, group: GroupDeeltijd, layout: layoutDeeltijd16, hyperlink: FieldNewCode,
		skip: []int{0, 1}, education: "Associate degree", dated: markerDeeltijd, legacy: nameColumns},
	{id: model.SheetToetsen, group: GroupRegulier, layout: layoutDerived14, hyperlink: FieldNewCode,
		skip: []int{0, 1}, derived: true, education: "Toetsing", dated: markerToetsing, legacy: codeColumns},
	{id: model.SheetHerkansingen, group: GroupRegulier, layout: layoutDerived14,
		skip: []int{0, 1}, derived: true, education: "Toetsing", dated: markerToetsing, legacy: codeColumns},
}

// Registry maps sheet tags to their layouts.
type Registry struct {
	schemas map[model.SheetID]*Schema
	order   []model.SheetID
}

// NewRegistry validates and indexes the given schemas.
func NewRegistry(schemas ...*Schema) (*Registry, error) {
	r := &Registry{schemas: make(map[model.SheetID]*Schema, len(schemas))}
	for _, s := range schemas {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.schemas[s.ID]; dup {
			return nil, fmt.Errorf("duplicate schema %q", s.ID)
		}
		r.schemas[s.ID] = s
		r.order = append(r.order, s.ID)
	}
	return r, nil
}

var defaultRegistry = mustDefaultRegistry()

func mustDefaultRegistry() *Registry {
	schemas := make([]*Schema, len(variants))
	for i, v := range variants {
		schemas[i] = newSchema(v)
	}
	r, err := NewRegistry(schemas...)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRegistry returns the registry of the nine workbook layouts.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// SchemaFor looks up a layout in the default registry.
func SchemaFor(id model.SheetID) (*Schema, error) {
	return defaultRegistry.SchemaFor(id)
}

// SchemaFor returns the layout registered for the sheet tag.
func (r *Registry) SchemaFor(id model.SheetID) (*Schema, error) {
	s, ok := r.schemas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSheetVariant, id)
	}
	return s, nil
}

// Resolve maps a worksheet name to a sheet tag, ignoring case and
// surrounding whitespace.
func (r *Registry) Resolve(worksheet string) (model.SheetID, error) {
	name := strings.TrimSpace(worksheet)
	for _, id := range r.order {
		if strings.EqualFold(string(id), name) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSheetVariant, worksheet)
}

// All returns the registered layouts in registration order.
func (r *Registry) All() []*Schema {
	out := make([]*Schema, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.schemas[id])
	}
	return out
}
