package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/middleware"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/repository"
	"github.com/stemsi/bezem-backend/internal/response"
	"github.com/stemsi/bezem-backend/internal/service"
	"github.com/stemsi/bezem-backend/internal/sheet"
	"github.com/stemsi/bezem-backend/internal/validator"
	ws "github.com/stemsi/bezem-backend/internal/websocket"
)

const keepAliveInterval = 30 * time.Second

// ProgressSubscriber opens a Pub/Sub subscription on an import's progress channel.
type ProgressSubscriber interface {
	Subscribe(ctx context.Context, id uuid.UUID) *redis.PubSub
}

// ImportHandler handles workbook uploads and import jobs.
type ImportHandler struct {
	importService *service.ImportService
	uploadService *service.UploadService
	progress      ProgressSubscriber
	log           zerolog.Logger
}

// NewImportHandler creates a new ImportHandler. progress may be nil, in
// which case the SSE endpoint only reports the current job state.
func NewImportHandler(
	importService *service.ImportService,
	uploadService *service.UploadService,
	progress ProgressSubscriber,
	log zerolog.Logger,
) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		uploadService: uploadService,
		progress:      progress,
		log:           log.With().Str("component", "import_handler").Logger(),
	}
}

// Upload godoc
// POST /api/v1/admin/imports
// Stores the workbook and queues it for the import worker.
func (h *ImportHandler) Upload(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	if err := h.uploadService.Validate(header); err != nil {
		h.failImport(c, err)
		return
	}

	job, err := h.importService.Enqueue(c.Request.Context(), file, header, claims.UserID)
	if err != nil {
		h.failImport(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"job": job})
}

// Preview godoc
// POST /api/v1/admin/imports/preview?full=&q=
// Renders the uploaded workbook without storing anything.
func (h *ImportHandler) Preview(c *gin.Context) {
	var req model.PreviewRequest
	if fields := validator.BindQuery(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	if err := h.uploadService.Validate(header); err != nil {
		h.failImport(c, err)
		return
	}

	wb, err := sheet.DecodeWorkbook(file)
	if err != nil {
		h.log.Debug().Err(err).Str("filename", header.Filename).Msg("Unreadable workbook")
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidWorkbook)
		return
	}
	wb.Filename = header.Filename

	preview, err := h.importService.Preview(c.Request.Context(), wb, req.Full)
	if err != nil {
		h.failImport(c, err)
		return
	}

	data := gin.H{"report": preview.Report, "tables": preview.Tables}
	if req.Query != "" {
		results := preview.Search(req.Query)
		if results == nil {
			results = []sheet.SearchEntry{}
		}
		data["results"] = results
	}
	response.Success(c, http.StatusOK, data)
}

// GetJob godoc
// GET /api/v1/admin/imports/:id
func (h *ImportHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	job, err := h.importService.GetJob(c.Request.Context(), id)
	if err != nil {
		h.failImport(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"job": job})
}

// ProgressSSE godoc
// GET /api/v1/admin/imports/:id/events
// Sends the job state, then relays progress events until the job ends.
func (h *ImportHandler) ProgressSSE(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	reqCtx := c.Request.Context()

	// Subscribe before reading the job so no terminal event falls in between.
	var pubsub *redis.PubSub
	if h.progress != nil {
		pubsub = h.progress.Subscribe(reqCtx, id)
		defer pubsub.Close()
		if _, err := pubsub.Receive(reqCtx); err != nil {
			h.log.Error().Err(err).Str("import_id", id.String()).Msg("Progress subscription failed")
			response.Fail(c, http.StatusServiceUnavailable, response.ErrImportQueueDown)
			return
		}
	}

	job, err := h.importService.GetJob(reqCtx, id)
	if err != nil {
		h.failImport(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("snapshot", job)
	c.Writer.Flush()
	if job.Finished() || pubsub == nil {
		return
	}

	ch := pubsub.Channel()
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	h.log.Info().Str("import_id", id.String()).Msg("Admin attached to import progress SSE")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("import_id", id.String()).Msg("Admin disconnected from import progress SSE")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Forward raw JSON directly
			c.Writer.Write([]byte("event: progress\ndata: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

			var ev struct {
				Type string `json:"type"`
			}
			if json.Unmarshal([]byte(msg.Payload), &ev) == nil && ws.IsTerminal(ev.Type) {
				return
			}

		case <-keepAlive.C:
			c.Writer.Write([]byte(": ping\n\n"))
			c.Writer.Flush()
		}
	}
}

// failImport maps import and upload errors onto API error codes.
func (h *ImportHandler) failImport(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sheet.ErrImportFormatMismatch):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrImportFormatMismatch)
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, service.ErrImportQueueUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrImportQueueDown)
	case errors.Is(err, repository.ErrImportJobNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		h.log.Error().Err(err).Msg("Import request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
