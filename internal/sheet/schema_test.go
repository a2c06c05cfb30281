package sheet

import (
	"testing"

	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_AllSheetsRegistered(t *testing.T) {
	for _, id := range model.AllSheets {
		s, err := SchemaFor(id)
		require.NoError(t, err, id)
		assert.NoError(t, s.Validate(), id)
		assert.Contains(t, []int{14, 16, 17}, s.ColumnCount, id)
		assert.Len(t, s.RawKeys, s.ColumnCount, id)
		assert.True(t, s.Skips(0), "%s: row 0 is a header row", id)
	}
	assert.Len(t, DefaultRegistry().All(), 9)
}

func TestSchemaFor_UnknownVariant(t *testing.T) {
	_, err := SchemaFor("Blad1")
	assert.ErrorIs(t, err, ErrUnknownSheetVariant)

	_, err = DefaultRegistry().Resolve("Blad1")
	assert.ErrorIs(t, err, ErrUnknownSheetVariant)
}

func TestRegistry_ResolveIgnoresCase(t *testing.T) {
	id, err := DefaultRegistry().Resolve("  propedeuse ")
	require.NoError(t, err)
	assert.Equal(t, model.SheetPropedeuse, id)

	id, err = DefaultRegistry().Resolve("ASSOCIATE DEGREE")
	require.NoError(t, err)
	assert.Equal(t, model.SheetAssociate, id)
}

func TestColumnCounts(t *testing.T) {
	cases := map[model.SheetID]int{
		model.SheetPropedeuse:   17,
		model.SheetDeeltijd:     17,
		model.SheetMinoren:      16,
		model.SheetAssociate:    16,
		model.SheetToetsen:      14,
		model.SheetHerkansingen: 14,
	}
	for id, want := range cases {
		assert.Equal(t, want, mustSchema(t, id).ColumnCount, id)
	}
}

func TestHeaderKeys(t *testing.T) {
	got := HeaderKeys([]string{"Titel", "", " ", "Titel", "", "Versie-update"})
	assert.Equal(t, []string{"Titel", "__EMPTY", "__EMPTY_1", "Titel_1", "__EMPTY_2", "Versie-update"}, got)
}

func TestPropedeuseRawKeys(t *testing.T) {
	s := mustSchema(t, model.SheetPropedeuse)

	assert.Equal(t, "Bezem- en conversieregeling", s.RawKeys[0])
	assert.Equal(t, "__EMPTY", s.RawKeys[1])
	assert.Equal(t, VersionUpdateKey, s.RawKeys[7])
	assert.Equal(t, "__EMPTY_6", s.RawKeys[8])
	assert.Equal(t, s.DatedMarker, s.RawKeys[16])
	assert.Equal(t, "__EMPTY_6", s.HyperlinkKey())
	assert.Equal(t, FieldNewCode, s.FieldMap[s.HyperlinkIndex])
}

func TestHyperlinkColumn(t *testing.T) {
	for _, s := range DefaultRegistry().All() {
		if s.HyperlinkIndex < 0 {
			assert.Empty(t, s.HyperlinkKey(), s.ID)
			continue
		}
		assert.Equal(t, FieldNewCode, s.FieldMap[s.HyperlinkIndex], s.ID)
	}
	assert.Equal(t, -1, mustSchema(t, model.SheetMinoren).HyperlinkIndex)
	assert.Equal(t, -1, mustSchema(t, model.SheetHerkansingen).HyperlinkIndex)
}

func TestAlwaysVisibleKeys(t *testing.T) {
	s := mustSchema(t, model.SheetPropedeuse)

	assert.True(t, s.IsAlwaysVisible(VersionUpdateKey))
	assert.True(t, s.IsAlwaysVisible(s.DatedMarker))
	assert.True(t, s.IsAlwaysVisible("__EMPTY"))   // oldCode
	assert.True(t, s.IsAlwaysVisible("__EMPTY_6")) // newCode
	assert.False(t, s.IsAlwaysVisible(s.RawKeys[0]))
	assert.False(t, s.IsAlwaysVisible("__EMPTY_12"))
}

func TestDatedMarkerSharedPerPair(t *testing.T) {
	assert.Equal(t,
		mustSchema(t, model.SheetPropedeuse).DatedMarker,
		mustSchema(t, model.SheetHoofdfase).DatedMarker)
	assert.Equal(t,
		mustSchema(t, model.SheetToetsen).DatedMarker,
		mustSchema(t, model.SheetHerkansingen).DatedMarker)
	assert.NotEqual(t,
		mustSchema(t, model.SheetPropedeuse).DatedMarker,
		mustSchema(t, model.SheetToetsen).DatedMarker)
}

func TestRequiredFields(t *testing.T) {
	full := mustSchema(t, model.SheetPropedeuse).RequiredFields()
	assert.Contains(t, full, FieldEducation)
	assert.Contains(t, full, FieldEcCourseOld)

	derived := mustSchema(t, model.SheetToetsen).RequiredFields()
	assert.NotContains(t, derived, FieldEducation)
	assert.NotContains(t, derived, FieldEcCourseNew)
	assert.Contains(t, derived, FieldWegingNew)
}

func TestNewRegistry_RejectsInvalidSchema(t *testing.T) {
	s := newSchema(variant{id: "Kapot", group: GroupRegulier, layout: []Field{FieldOldCode, FieldOldCode}})
	_, err := NewRegistry(s)
	assert.Error(t, err)

	ok := newSchema(variants[0])
	_, err = NewRegistry(ok, ok)
	assert.Error(t, err)
}
