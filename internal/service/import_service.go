package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/config"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/repository"
	"github.com/stemsi/bezem-backend/internal/sheet"
)

var ErrImportQueueUnavailable = errors.New("import queue unavailable")

// Progress event types.
const (
	EventStart      = "start"
	EventSheetStart = "sheet_start"
	EventSheetDone  = "sheet_done"
	EventDone       = "done"
	EventRejected   = "rejected"
	EventError      = "error"
)

// ImportJobStore keeps queued import jobs and fans out their progress.
type ImportJobStore interface {
	Save(ctx context.Context, job *model.ImportJob) error
	Get(ctx context.Context, id uuid.UUID) (*model.ImportJob, error)
	Enqueue(ctx context.Context, id uuid.UUID) error
	Publish(ctx context.Context, event model.ProgressEvent) error
}

// CacheInvalidator drops cached read models after the store changed.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// RunOptions controls one pass over a workbook.
type RunOptions struct {
	ImportID    uuid.UUID
	Persist     bool
	FullDisplay bool
	// Target receives rendered rows; nil discards them.
	Target sheet.RenderTarget
	// Progress is called as sheets start and finish.
	Progress func(model.ProgressEvent)
}

// Preview is the display-only rendition of a workbook.
type Preview struct {
	Report *model.ImportReport `json:"report"`
	Tables []*sheet.Table      `json:"tables"`
	index  *sheet.Index
}

// Search runs a full-text query over the previewed rows.
func (p *Preview) Search(query string) []sheet.SearchEntry {
	return p.index.Search(query)
}

// ImportService runs workbooks through the sheet pipeline.
type ImportService struct {
	cfg       *config.Config
	store     repository.ConversionStore
	registry  *sheet.Registry
	extractor *sheet.Extractor
	uploads   *UploadService
	jobs      ImportJobStore
	cache     CacheInvalidator
	log       zerolog.Logger
}

// NewImportService creates a new ImportService. jobs and cache may be nil
// when the service only runs imports synchronously.
func NewImportService(
	cfg *config.Config,
	store repository.ConversionStore,
	uploads *UploadService,
	jobs ImportJobStore,
	cache CacheInvalidator,
	log zerolog.Logger,
) *ImportService {
	return &ImportService{
		cfg:       cfg,
		store:     store,
		registry:  sheet.DefaultRegistry(),
		extractor: sheet.NewExtractor(cfg.EnrollBaseURL),
		uploads:   uploads,
		jobs:      jobs,
		cache:     cache,
		log:       log.With().Str("component", "import_service").Logger(),
	}
}

// Run checks the workbook title and then processes every worksheet in
// workbook order. Worksheets with an unknown name are reported and skipped.
// A store failure stops the run; rows persisted before it stay.
func (s *ImportService) Run(ctx context.Context, wb *sheet.Workbook, opts RunOptions) (*model.ImportReport, error) {
	if err := wb.CheckTitle(s.cfg.ImportTitleMarker); err != nil {
		return nil, err
	}
	if opts.ImportID == uuid.Nil {
		opts.ImportID = uuid.New()
	}
	emit := opts.Progress
	if emit == nil {
		emit = func(model.ProgressEvent) {}
	}

	var gateway sheet.Gateway
	if opts.Persist {
		gateway = s.store
	}
	orch := sheet.NewOrchestrator(s.registry, s.extractor, gateway, opts.Target, s.log)

	start := time.Now()
	report := &model.ImportReport{ImportID: opts.ImportID, Filename: wb.Filename, Persist: opts.Persist}
	defer func() {
		report.Duration = time.Since(start)
		if report.Persisted > 0 && s.cache != nil {
			if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn().Err(err).Msg("Failed to invalidate read cache")
			}
		}
	}()

	emit(model.ProgressEvent{Type: EventStart, Message: fmt.Sprintf("%d worksheets", len(wb.Sheets))})

	for _, ws := range wb.Sheets {
		id, err := s.registry.Resolve(ws.Name)
		if err != nil {
			sr := model.SheetReport{Sheet: ws.Name, Status: model.SheetStatusUnknown, Error: err.Error()}
			addSheet(report, sr)
			s.log.Warn().Str("sheet", ws.Name).Msg("Unknown worksheet skipped")
			emit(model.ProgressEvent{Type: EventSheetDone, Sheet: ws.Name, Message: err.Error(), Data: sr})
			continue
		}

		emit(model.ProgressEvent{Type: EventSheetStart, Sheet: ws.Name, Message: fmt.Sprintf("%d rows", len(ws.Rows))})

		sr, err := orch.ProcessSheet(ctx, id, ws.Rows, sheet.Options{
			Persist:     opts.Persist,
			FullDisplay: opts.FullDisplay,
			ImportID:    opts.ImportID,
		})
		if err != nil {
			if sr == nil {
				sr = &model.SheetReport{Sheet: ws.Name}
			}
			sr.Status = model.SheetStatusError
			sr.Error = err.Error()
			addSheet(report, *sr)
			return report, fmt.Errorf("sheet %s: %w", ws.Name, err)
		}

		addSheet(report, *sr)
		emit(model.ProgressEvent{Type: EventSheetDone, Sheet: ws.Name, Message: "ok", Data: sr})
	}

	s.log.Info().
		Str("import_id", report.ImportID.String()).
		Bool("persist", report.Persist).
		Int("rendered", report.Rendered).
		Int("persisted", report.Persisted).
		Int("skipped", report.SkippedRows).
		Msg("Workbook processed")

	return report, nil
}

func addSheet(report *model.ImportReport, sr model.SheetReport) {
	report.Sheets = append(report.Sheets, sr)
	report.Rendered += sr.Rendered
	report.Persisted += sr.Persisted
	report.SkippedRows += sr.SkippedRows
}

// Preview renders a workbook without touching the store.
func (s *ImportService) Preview(ctx context.Context, wb *sheet.Workbook, fullDisplay bool) (*Preview, error) {
	target := sheet.NewTableTarget()
	report, err := s.Run(ctx, wb, RunOptions{FullDisplay: fullDisplay, Target: target})
	if err != nil {
		return nil, err
	}

	tables := target.Tables()
	var rows []sheet.RenderedRow
	for _, t := range tables {
		rows = append(rows, t.Rows...)
	}
	return &Preview{Report: report, Tables: tables, index: sheet.IndexRendered(rows)}, nil
}

// Enqueue saves an uploaded workbook and queues it for the import worker.
func (s *ImportService) Enqueue(ctx context.Context, file multipart.File, header *multipart.FileHeader, adminID int) (*model.ImportJob, error) {
	if s.jobs == nil {
		return nil, ErrImportQueueUnavailable
	}

	path, err := s.uploads.SaveWorkbook(file, header)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &model.ImportJob{
		ID:        uuid.New(),
		Filename:  header.Filename,
		Path:      path,
		Status:    model.ImportStatusQueued,
		CreatedBy: adminID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}
	if err := s.jobs.Enqueue(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportQueueUnavailable, err)
	}

	s.log.Info().
		Str("import_id", job.ID.String()).
		Str("filename", job.Filename).
		Int("admin_id", adminID).
		Msg("Import queued")
	return job, nil
}

// GetJob returns the state of a queued import.
func (s *ImportService) GetJob(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	if s.jobs == nil {
		return nil, ErrImportQueueUnavailable
	}
	return s.jobs.Get(ctx, id)
}

// ProcessJob runs a queued import, publishing progress on the way. A
// rejected workbook ends the job as REJECTED without touching the store.
// The uploaded file is removed once the job reaches a terminal status.
func (s *ImportService) ProcessJob(ctx context.Context, id uuid.UUID) error {
	if s.jobs == nil {
		return ErrImportQueueUnavailable
	}
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return err
	}

	publish := func(ev model.ProgressEvent) {
		ev.ImportID = job.ID
		ev.Timestamp = time.Now()
		if err := s.jobs.Publish(ctx, ev); err != nil {
			s.log.Warn().Err(err).Str("import_id", job.ID.String()).Msg("Failed to publish progress")
		}
	}

	job.Status = model.ImportStatusRunning
	job.UpdatedAt = time.Now()
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}

	report, runErr := s.runFile(ctx, job, publish)
	job.Report = report
	job.UpdatedAt = time.Now()

	switch {
	case runErr == nil:
		job.Status = model.ImportStatusDone
		publish(model.ProgressEvent{Type: EventDone, Message: "import finished", Data: report})
	case errors.Is(runErr, sheet.ErrImportFormatMismatch):
		job.Status = model.ImportStatusRejected
		job.Error = runErr.Error()
		publish(model.ProgressEvent{Type: EventRejected, Message: runErr.Error()})
	default:
		job.Status = model.ImportStatusFailed
		job.Error = runErr.Error()
		publish(model.ProgressEvent{Type: EventError, Message: runErr.Error(), Data: report})
	}
	s.removeUpload(job)

	if err := s.jobs.Save(context.WithoutCancel(ctx), job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return runErr
}

func (s *ImportService) removeUpload(job *model.ImportJob) {
	if job.Path == "" {
		return
	}
	if err := os.Remove(job.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn().Err(err).Str("import_id", job.ID.String()).Str("path", job.Path).Msg("Failed to remove upload")
	}
}

func (s *ImportService) runFile(ctx context.Context, job *model.ImportJob, publish func(model.ProgressEvent)) (*model.ImportReport, error) {
	wb, err := sheet.OpenWorkbook(job.Path)
	if err != nil {
		return nil, err
	}
	wb.Filename = job.Filename

	return s.Run(ctx, wb, RunOptions{ImportID: job.ID, Persist: true, Progress: publish})
}
