package repository

import (
	"context"

	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/sheet"
)

// Counts holds the size of each collection.
type Counts struct {
	Exams       int `json:"exams"`
	Courses     int `json:"courses"`
	Conversions int `json:"conversions"`
}

// ConversionStore is the append-only store behind an import, plus its
// read side. Records are returned in insertion order.
type ConversionStore interface {
	sheet.Gateway
	// ListConversions returns every conversion, or those of one sheet when
	// sheetID is non-empty.
	ListConversions(ctx context.Context, sheetID model.SheetID) ([]model.Conversion, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	ListExams(ctx context.Context) ([]model.Exam, error)
	Counts(ctx context.Context) (Counts, error)
	// Clear removes every record from the three collections.
	Clear(ctx context.Context) error
}
