package sheet

import (
	"testing"

	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Search(t *testing.T) {
	ix := NewIndex()
	ix.Add(model.SheetPropedeuse, 2, []string{"BM123", "Databases", "Conversie"})
	ix.Add(model.SheetToetsen, 2, []string{"BM900", "Databases Advanced", "Bezem"})

	got := ix.Search("databases")
	assert.Len(t, got, 2)

	got = ix.Search("bm123 DATABASES")
	require.Len(t, got, 1)
	assert.Equal(t, model.SheetPropedeuse, got[0].Sheet)

	assert.Empty(t, ix.Search("bm123 bezem"))
	assert.Nil(t, ix.Search("   "))
	assert.Equal(t, 2, ix.Len())
}

func TestIndexRendered(t *testing.T) {
	s := mustSchema(t, model.SheetPropedeuse)
	target := NewTableTarget()

	_, err := newTestOrchestrator(nil, target).ProcessSheet(t.Context(), s.ID, sheetRows(s, 2), Options{})
	require.NoError(t, err)

	ix := IndexRendered(target.Table(s.ID).Rows)
	assert.Equal(t, 2, ix.Len())

	// The display list keeps the raw code, not the rendered anchor.
	hits := ix.Search("BM223")
	require.Len(t, hits, 2)
	assert.Empty(t, ix.Search("inschrijven"))
}
