package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConversionKind tells whether an old course is phased out (bezem) or
// replaced by a successor course (conversie).
type ConversionKind string

const (
	KindBezem     ConversionKind = "Bezem"
	KindConversie ConversionKind = "Conversie"
)

// ParseConversionKind accepts the spellings found in the source sheets.
func ParseConversionKind(s string) (ConversionKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bezem":
		return KindBezem, true
	case "conversie", "conversion":
		return KindConversie, true
	}
	return "", false
}

// Conversion links an old course to its new counterpart.
type Conversion struct {
	ID                uuid.UUID      `json:"id"`
	BezemOrConversion ConversionKind `json:"bezem_or_conversion"`
	OldCourse         Course         `json:"old_course"`
	NewCourse         Course         `json:"new_course"`
	Comment           string         `json:"comment"`
	Sheet             SheetID        `json:"sheet"`
	ImportID          uuid.UUID      `json:"import_id"`
	CreatedAt         time.Time      `json:"created_at"`
}

// ListConversionsRequest filters the conversions collection.
type ListConversionsRequest struct {
	Sheet   string `form:"sheet" binding:"omitempty,max=64,sheet_variant"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=500"`
}

// PreviewRequest tunes a display-only import.
type PreviewRequest struct {
	Full  bool   `form:"full"`
	Query string `form:"q" binding:"omitempty,min=2,max=100"`
}

// SearchRequest is the query for the flat conversion search.
type SearchRequest struct {
	Query string `form:"q" binding:"required,min=2,max=100"`
}
