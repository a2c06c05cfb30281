package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/repository"
	"github.com/stemsi/bezem-backend/internal/sheet"
	"github.com/stemsi/bezem-backend/internal/sheet/sheettest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seededConversionService(t *testing.T) (*ConversionService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	conversions := NewConversionService(store, nil, 0, zerolog.Nop())
	imports := newImportService(t, store, nil, conversions)

	_, err := imports.Run(context.Background(), decode(t, sheettest.Standard(t)), RunOptions{Persist: true})
	require.NoError(t, err)
	return conversions, store
}

func TestConversionService_List(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededConversionService(t)

	all, err := svc.ListConversions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	toetsen, err := svc.ListConversions(ctx, "toetsen")
	require.NoError(t, err)
	require.Len(t, toetsen, 1)
	assert.Equal(t, model.SheetToetsen, toetsen[0].Sheet)

	_, err = svc.ListConversions(ctx, "Blad1")
	assert.ErrorIs(t, err, sheet.ErrUnknownSheetVariant)

	courses, err := svc.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 6)

	exams, err := svc.ListExams(ctx)
	require.NoError(t, err)
	assert.Len(t, exams, 6)
}

func TestConversionService_Search(t *testing.T) {
	svc, _ := seededConversionService(t)

	hits, err := svc.Search(context.Background(), "bm102 conversie")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "BM102", hits[0].Row.OldCode)
	assert.Equal(t, model.SheetPropedeuse, hits[0].Sheet)

	hits, err = svc.Search(context.Background(), "vries")
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestConversionService_Export(t *testing.T) {
	svc, _ := seededConversionService(t)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Len(t, f.GetSheetList(), len(model.AllSheets))
	rows, err := f.GetRows("Propedeuse")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "BM101", rows[1][2])
}

func TestConversionService_Clear(t *testing.T) {
	ctx := context.Background()
	svc, store := seededConversionService(t)

	require.NoError(t, svc.Clear(ctx))
	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.Counts{}, counts)
}

func TestConversionService_Schemas(t *testing.T) {
	svc := NewConversionService(repository.NewMemoryStore(), nil, 0, zerolog.Nop())

	assert.Len(t, svc.Schemas(), 9)
	assert.Equal(t, model.SheetPropedeuse, svc.SheetIDs()[0])
}
