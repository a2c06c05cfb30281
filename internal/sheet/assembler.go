package sheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/bezem-backend/internal/model"
)

// missingMarker is what older exports wrote into empty comment cells.
const missingMarker = "undefined"

// ConversionAssembler links a course pair into a Conversion record.
type ConversionAssembler struct {
	newID func() uuid.UUID
	now   func() time.Time
}

// NewConversionAssembler creates a ConversionAssembler.
func NewConversionAssembler() *ConversionAssembler {
	return &ConversionAssembler{newID: uuid.New, now: time.Now}
}

// Assemble builds the Conversion for a row. An unrecognised bezem/conversie
// tag leaves the row incomplete.
func (a *ConversionAssembler) Assemble(bezemOrConversion string, oldCourse, newCourse model.Course, comment string, sheetID model.SheetID) (*model.Conversion, error) {
	kind, ok := model.ParseConversionKind(bezemOrConversion)
	if !ok {
		return nil, fmt.Errorf("%w: unknown bezem/conversie tag %q", ErrIncompleteRow, bezemOrConversion)
	}

	return &model.Conversion{
		ID:                a.newID(),
		BezemOrConversion: kind,
		OldCourse:         oldCourse,
		NewCourse:         newCourse,
		Comment:           NormalizeComment(comment),
		Sheet:             sheetID,
		CreatedAt:         a.now(),
	}, nil
}

// NormalizeComment maps the literal missing marker to an empty comment.
func NormalizeComment(comment string) string {
	comment = strings.TrimSpace(comment)
	if comment == missingMarker {
		return ""
	}
	return comment
}
