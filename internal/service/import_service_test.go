package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/repository"
	"github.com/stemsi/bezem-backend/internal/sheet"
	"github.com/stemsi/bezem-backend/internal/sheet/sheettest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func newImportService(t *testing.T, store repository.ConversionStore, jobs ImportJobStore, cache CacheInvalidator) *ImportService {
	cfg := testConfig(t)
	return NewImportService(cfg, store, NewUploadService(cfg), jobs, cache, zerolog.Nop())
}

func TestImportService_Run(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	cache := &countingInvalidator{}
	svc := newImportService(t, store, nil, cache)

	report, err := svc.Run(ctx, decode(t, sheettest.Standard(t)), RunOptions{Persist: true})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, report.ImportID)
	require.Len(t, report.Sheets, 2)
	assert.Equal(t, model.SheetStatusImported, report.Sheets[0].Status)
	assert.Equal(t, 3, report.Persisted)
	assert.Equal(t, 3, report.Rendered)
	assert.Equal(t, 1, cache.calls)

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.Counts{Exams: 6, Courses: 6, Conversions: 3}, counts)

	convs, err := store.ListConversions(ctx, model.SheetToetsen)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, report.ImportID, convs[0].ImportID)
	assert.Equal(t, "Toetsing", convs[0].NewCourse.Education)
}

func TestImportService_RejectsForeignWorkbook(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newImportService(t, store, nil, nil)

	raw := sheettest.Workbook(t, "Roosterwijzigingen 2025",
		sheettest.Sheet{Name: "Propedeuse", ID: model.SheetPropedeuse, Rows: []map[sheet.Field]string{sheettest.SampleValues("BM101")}},
	)

	report, err := svc.Run(ctx, decode(t, raw), RunOptions{Persist: true})
	assert.ErrorIs(t, err, sheet.ErrImportFormatMismatch)
	assert.Nil(t, report)

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.Counts{}, counts)
}

func TestImportService_UnknownWorksheetDoesNotStopSiblings(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newImportService(t, store, nil, nil)

	raw := sheettest.Workbook(t, "",
		sheettest.Sheet{Name: "Propedeuse", ID: model.SheetPropedeuse, Rows: []map[sheet.Field]string{sheettest.SampleValues("BM101")}},
		sheettest.Sheet{Name: "Werkblad oud", ID: model.SheetPropedeuse, Rows: []map[sheet.Field]string{sheettest.SampleValues("BM102")}},
		sheettest.Sheet{Name: "Hoofdfase", ID: model.SheetHoofdfase, Rows: []map[sheet.Field]string{sheettest.SampleValues("BM103")}},
	)

	report, err := svc.Run(ctx, decode(t, raw), RunOptions{Persist: true})
	require.NoError(t, err)
	require.Len(t, report.Sheets, 3)
	assert.Equal(t, model.SheetStatusUnknown, report.Sheets[1].Status)
	assert.Equal(t, model.SheetStatusImported, report.Sheets[2].Status)
	assert.Equal(t, 2, report.Persisted)
}

func TestImportService_ReimportDoubles(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newImportService(t, store, nil, nil)
	raw := sheettest.Standard(t)

	for i := 0; i < 2; i++ {
		_, err := svc.Run(ctx, decode(t, raw), RunOptions{Persist: true})
		require.NoError(t, err)
	}

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, counts.Conversions)
	assert.Equal(t, 12, counts.Courses)
	assert.Equal(t, 12, counts.Exams)
}

func TestImportService_Preview(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	cache := &countingInvalidator{}
	svc := newImportService(t, store, nil, cache)

	preview, err := svc.Preview(ctx, decode(t, sheettest.Standard(t)), false)
	require.NoError(t, err)

	require.Len(t, preview.Tables, 2)
	assert.Len(t, preview.Tables[0].Rows, 2)
	assert.Zero(t, preview.Report.Persisted)
	assert.Zero(t, cache.calls)

	hits := preview.Search("bm102")
	require.Len(t, hits, 1)
	assert.Equal(t, model.SheetPropedeuse, hits[0].Sheet)

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.Counts{}, counts)
}

func TestImportService_ProgressEvents(t *testing.T) {
	svc := newImportService(t, repository.NewMemoryStore(), nil, nil)

	var types []string
	_, err := svc.Run(context.Background(), decode(t, sheettest.Standard(t)), RunOptions{
		Persist:  true,
		Progress: func(ev model.ProgressEvent) { types = append(types, ev.Type) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{EventStart, EventSheetStart, EventSheetDone, EventSheetStart, EventSheetDone}, types)
}

func TestImportService_ProcessJob(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	jobs := newMemoryJobs()
	svc := newImportService(t, store, jobs, nil)

	job := &model.ImportJob{ID: uuid.New(), Filename: "regeling.xlsx", Path: sheettest.WriteFile(t, sheettest.Standard(t)), Status: model.ImportStatusQueued}
	require.NoError(t, jobs.Save(ctx, job))

	require.NoError(t, svc.ProcessJob(ctx, job.ID))

	got, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ImportStatusDone, got.Status)
	require.NotNil(t, got.Report)
	assert.Equal(t, 3, got.Report.Persisted)
	assert.Equal(t, "regeling.xlsx", got.Report.Filename)
	assert.NoFileExists(t, job.Path, "upload is removed after the import")

	types := jobs.eventTypes()
	assert.Equal(t, EventStart, types[0])
	assert.Equal(t, EventDone, types[len(types)-1])
	for _, ev := range jobs.events {
		assert.Equal(t, job.ID, ev.ImportID)
	}
}

func TestImportService_ProcessJobRejected(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	jobs := newMemoryJobs()
	svc := newImportService(t, store, jobs, nil)

	raw := sheettest.Workbook(t, "Iets anders",
		sheettest.Sheet{Name: "Propedeuse", ID: model.SheetPropedeuse, Rows: []map[sheet.Field]string{sheettest.SampleValues("BM101")}},
	)
	job := &model.ImportJob{ID: uuid.New(), Path: sheettest.WriteFile(t, raw), Status: model.ImportStatusQueued}
	require.NoError(t, jobs.Save(ctx, job))

	err := svc.ProcessJob(ctx, job.ID)
	assert.ErrorIs(t, err, sheet.ErrImportFormatMismatch)

	got, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ImportStatusRejected, got.Status)
	assert.Equal(t, []string{EventRejected}, jobs.eventTypes())
	assert.NoFileExists(t, job.Path)
}

func TestImportService_ProcessJobUnreadableFile(t *testing.T) {
	ctx := context.Background()
	jobs := newMemoryJobs()
	svc := newImportService(t, repository.NewMemoryStore(), jobs, nil)

	job := &model.ImportJob{ID: uuid.New(), Path: sheettest.WriteFile(t, []byte("not a zip")), Status: model.ImportStatusQueued}
	require.NoError(t, jobs.Save(ctx, job))

	assert.Error(t, svc.ProcessJob(ctx, job.ID))
	got, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ImportStatusFailed, got.Status)
	assert.NotEmpty(t, got.Error)
}

type memFile struct{ *bytes.Reader }

func (memFile) Close() error { return nil }

func fileHeader(name, contentType string, size int) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	return &multipart.FileHeader{Filename: name, Header: h, Size: int64(size)}
}

func TestImportService_Enqueue(t *testing.T) {
	ctx := context.Background()
	jobs := newMemoryJobs()
	svc := newImportService(t, repository.NewMemoryStore(), jobs, nil)
	raw := sheettest.Standard(t)

	job, err := svc.Enqueue(ctx, memFile{bytes.NewReader(raw)},
		fileHeader("Regeling.XLSX", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", len(raw)), 7)
	require.NoError(t, err)

	assert.Equal(t, model.ImportStatusQueued, job.Status)
	assert.Equal(t, 7, job.CreatedBy)
	assert.Equal(t, []uuid.UUID{job.ID}, jobs.queue)

	saved, err := os.ReadFile(job.Path)
	require.NoError(t, err)
	assert.Equal(t, raw, saved)
}

func TestImportService_EnqueueWithoutQueue(t *testing.T) {
	svc := newImportService(t, repository.NewMemoryStore(), nil, nil)

	_, err := svc.Enqueue(context.Background(), memFile{bytes.NewReader(nil)}, fileHeader("a.xlsx", "", 0), 1)
	assert.ErrorIs(t, err, ErrImportQueueUnavailable)
}

func TestUploadService_Validate(t *testing.T) {
	svc := NewUploadService(testConfig(t))

	assert.NoError(t, svc.Validate(fileHeader("regeling.xlsx", "application/octet-stream", 10)))
	assert.ErrorIs(t, svc.Validate(fileHeader("regeling.csv", "text/csv", 10)), ErrUnsupportedFileType)
	assert.ErrorIs(t, svc.Validate(fileHeader("regeling.xlsx", "image/png", 10)), ErrUnsupportedFileType)
	assert.ErrorIs(t, svc.Validate(fileHeader("regeling.xlsx", "", 2<<20)), ErrFileTooLarge)
}

func TestUploadService_RejectsOversizedBody(t *testing.T) {
	svc := NewUploadService(testConfig(t))
	body := bytes.Repeat([]byte{'x'}, (1<<20)+10)

	_, err := svc.SaveWorkbook(memFile{bytes.NewReader(body)}, fileHeader("a.xlsx", "", 10))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
