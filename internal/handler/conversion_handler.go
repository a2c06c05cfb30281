package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/response"
	"github.com/stemsi/bezem-backend/internal/service"
	"github.com/stemsi/bezem-backend/internal/sheet"
	"github.com/stemsi/bezem-backend/internal/validator"
)

const (
	defaultPerPage = 100
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ConversionHandler serves the imported collections.
type ConversionHandler struct {
	conversionService *service.ConversionService
	log               zerolog.Logger
}

// NewConversionHandler creates a new ConversionHandler.
func NewConversionHandler(conversionService *service.ConversionService, log zerolog.Logger) *ConversionHandler {
	return &ConversionHandler{
		conversionService: conversionService,
		log:               log.With().Str("component", "conversion_handler").Logger(),
	}
}

// ListConversions godoc
// GET /api/v1/conversions?sheet=&page=&per_page=
func (h *ConversionHandler) ListConversions(c *gin.Context) {
	var req model.ListConversionsRequest
	if fields := validator.BindQuery(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	conversions, err := h.conversionService.ListConversions(c.Request.Context(), req.Sheet)
	if err != nil {
		if errors.Is(err, sheet.ErrUnknownSheetVariant) {
			response.Fail(c, http.StatusNotFound, response.ErrUnknownSheetVariant)
			return
		}
		h.log.Error().Err(err).Msg("List conversions failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if conversions == nil {
		conversions = []model.Conversion{}
	}

	if req.Page == 0 {
		response.Success(c, http.StatusOK, gin.H{"conversions": conversions})
		return
	}

	perPage := req.PerPage
	if perPage == 0 {
		perPage = defaultPerPage
	}
	page, start, end := response.Paginate(req.Page, perPage, len(conversions))
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"conversions": conversions[start:end]}, &page)
}

// ListCourses godoc
// GET /api/v1/courses
func (h *ConversionHandler) ListCourses(c *gin.Context) {
	courses, err := h.conversionService.ListCourses(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("List courses failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// ListExams godoc
// GET /api/v1/exams
func (h *ConversionHandler) ListExams(c *gin.Context) {
	exams, err := h.conversionService.ListExams(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("List exams failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// Search godoc
// GET /api/v1/conversions/search?q=
func (h *ConversionHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if fields := validator.BindQuery(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	hits, err := h.conversionService.Search(c.Request.Context(), req.Query)
	if err != nil {
		h.log.Error().Err(err).Msg("Search failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if hits == nil {
		hits = []service.SearchHit{}
	}
	response.Success(c, http.StatusOK, gin.H{"query": req.Query, "results": hits})
}

// Sheets godoc
// GET /api/v1/public/sheets
// Lists the registered worksheet layouts.
func (h *ConversionHandler) Sheets(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"sheets": h.conversionService.Schemas()})
}

// Stats godoc
// GET /api/v1/admin/store
func (h *ConversionHandler) Stats(c *gin.Context) {
	counts, err := h.conversionService.Counts(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"counts": counts})
}

// Export godoc
// GET /api/v1/admin/conversions/export
// Downloads the re-export workbook.
func (h *ConversionHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.conversionService.Export(c.Request.Context(), &buf); err != nil {
		h.log.Error().Err(err).Msg("Export failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	filename := fmt.Sprintf("bezem-conversie-%s.xlsx", time.Now().Format("20060102-1504"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

// ClearStore godoc
// DELETE /api/v1/admin/store
func (h *ConversionHandler) ClearStore(c *gin.Context) {
	if err := h.conversionService.Clear(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("Clear store failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "store cleared"})
}
