package sheet

import (
	"testing"

	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCoursePair(t *testing.T) *CoursePair {
	t.Helper()
	pair, err := NewRecordBuilder(DefaultRegistry()).
		BuildCoursePair(slotsFromSheet(t, model.SheetPropedeuse, sampleValues()), model.SheetPropedeuse)
	require.NoError(t, err)
	return pair
}

func TestAssemble(t *testing.T) {
	pair := testCoursePair(t)
	a := NewConversionAssembler()

	conv, err := a.Assemble("conversie", pair.Old, pair.New, "undefined", model.SheetPropedeuse)
	require.NoError(t, err)

	assert.Equal(t, model.KindConversie, conv.BezemOrConversion)
	assert.Equal(t, "", conv.Comment)
	assert.Equal(t, model.SheetPropedeuse, conv.Sheet)
	assert.Equal(t, pair.Old, conv.OldCourse)
	assert.Equal(t, pair.New, conv.NewCourse)
	assert.NotEqual(t, conv.OldCourse.ID, conv.ID)
	assert.False(t, conv.CreatedAt.IsZero())
}

func TestAssemble_KeepsComment(t *testing.T) {
	pair := testCoursePair(t)

	conv, err := NewConversionAssembler().Assemble("Bezem", pair.Old, pair.New, " Laatste kans in blok 4 ", model.SheetHoofdfase)
	require.NoError(t, err)
	assert.Equal(t, model.KindBezem, conv.BezemOrConversion)
	assert.Equal(t, "Laatste kans in blok 4", conv.Comment)
}

func TestAssemble_UnknownTag(t *testing.T) {
	pair := testCoursePair(t)

	_, err := NewConversionAssembler().Assemble("vervalt", pair.Old, pair.New, "", model.SheetPropedeuse)
	assert.ErrorIs(t, err, ErrIncompleteRow)
}

func TestNormalizeComment(t *testing.T) {
	assert.Equal(t, "", NormalizeComment("undefined"))
	assert.Equal(t, "", NormalizeComment(" undefined "))
	assert.Equal(t, "Undefined", NormalizeComment("Undefined"))
	assert.Equal(t, "zie toelichting", NormalizeComment("zie toelichting"))
}
