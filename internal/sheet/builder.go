package sheet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/bezem-backend/internal/model"
)

// CoursePair is the old and new course built from one row.
type CoursePair struct {
	Old model.Course
	New model.Course
}

// RecordBuilder turns extracted slots into courses with their exams.
type RecordBuilder struct {
	registry *Registry
	newID    func() uuid.UUID
	now      func() time.Time
}

// NewRecordBuilder creates a RecordBuilder resolving layouts in registry.
func NewRecordBuilder(registry *Registry) *RecordBuilder {
	return &RecordBuilder{
		registry: registry,
		newID:    uuid.New,
		now:      time.Now,
	}
}

// BuildCoursePair builds the old and new course of a row. The coordinator
// is copied to both exams. Layouts without a course-credit column derive it
// from the exam credits and weighting.
func (b *RecordBuilder) BuildCoursePair(slots Slots, sheetID model.SheetID) (*CoursePair, error) {
	schema, err := b.registry.SchemaFor(sheetID)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, f := range schema.RequiredFields() {
		if _, ok := slots.Get(f); !ok {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteRow, strings.Join(missing, ", "))
	}

	education := schema.DefaultEducation
	if v, ok := slots.Get(FieldEducation); ok {
		education = v
	}
	coordinator, _ := slots.Get(FieldCoordinator)
	period, _ := slots.Get(FieldPeriode)

	oldExam, err := b.buildExam(schema, slots, FieldToetsOld, FieldWegingOld, FieldEcToetsOld, coordinator)
	if err != nil {
		return nil, err
	}
	newExam, err := b.buildExam(schema, slots, FieldToetsNew, FieldWegingNew, FieldEcToetsNew, coordinator)
	if err != nil {
		return nil, err
	}

	oldEC, err := b.courseCredits(schema, slots, FieldEcCourseOld, oldExam)
	if err != nil {
		return nil, err
	}
	newEC, err := b.courseCredits(schema, slots, FieldEcCourseNew, newExam)
	if err != nil {
		return nil, err
	}

	oldCode, _ := slots.Get(FieldOldCode)
	oldName, _ := slots.Get(FieldOldName)
	newCode, _ := slots.Get(FieldNewCode)
	newName, _ := slots.Get(FieldNewName)

	return &CoursePair{
		Old: b.buildCourse(education, oldCode, oldName, period, oldEC, oldExam),
		New: b.buildCourse(education, newCode, newName, period, newEC, newExam),
	}, nil
}

func (b *RecordBuilder) buildExam(schema *Schema, slots Slots, typeField, weightField, ecField Field, coordinator string) (model.Exam, error) {
	examType, _ := slots.Get(typeField)

	// In derived layouts the weighting is the divisor of the credit formula.
	weighting, err := slotNumber(slots, weightField, schema.DerivedCredits)
	if err != nil {
		return model.Exam{}, err
	}
	ec, err := slotNumber(slots, ecField, false)
	if err != nil {
		return model.Exam{}, err
	}

	return model.Exam{
		ID:          b.newID(),
		ExamType:    examType,
		Weighting:   weighting,
		EcExam:      ec,
		Coordinator: coordinator,
		CreatedAt:   b.now(),
	}, nil
}

func (b *RecordBuilder) courseCredits(schema *Schema, slots Slots, field Field, exam model.Exam) (float64, error) {
	if !schema.DerivedCredits {
		return slotNumber(slots, field, false)
	}
	return DeriveCourseCredits(exam.EcExam, exam.Weighting)
}

func (b *RecordBuilder) buildCourse(education, code, name, period string, ec float64, exam model.Exam) model.Course {
	return model.Course{
		ID:        b.newID(),
		Education: education,
		Code:      code,
		Name:      name,
		Period:    period,
		EcCourse:  ec,
		Exam:      exam,
		CreatedAt: b.now(),
	}
}

// DeriveCourseCredits computes course credits from an exam's share:
// ecToets*100/weging. A zero or non-finite weighting cannot be resolved.
func DeriveCourseCredits(ecExam, weighting float64) (float64, error) {
	if weighting == 0 {
		return 0, fmt.Errorf("%w: weighting is zero", ErrInvalidDerivedValue)
	}
	if !finite(ecExam) || !finite(weighting) {
		return 0, fmt.Errorf("%w: %v*100/%v is not finite", ErrInvalidDerivedValue, ecExam, weighting)
	}
	ec := ecExam * 100 / weighting
	if !finite(ec) {
		return 0, fmt.Errorf("%w: %v*100/%v is not finite", ErrInvalidDerivedValue, ecExam, weighting)
	}
	return ec, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func slotNumber(slots Slots, f Field, divisor bool) (float64, error) {
	v, ok := slots.Get(f)
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrIncompleteRow, f)
	}
	n, err := ParseNumber(v)
	if err != nil {
		if divisor {
			return 0, fmt.Errorf("%w: %s %q is not numeric", ErrInvalidDerivedValue, f, v)
		}
		return 0, fmt.Errorf("%w: %s %q is not numeric", ErrIncompleteRow, f, v)
	}
	return n, nil
}

// errNotFinite rejects the NaN and Inf spellings strconv accepts.
var errNotFinite = errors.New("not a finite number")

// ParseNumber reads a sheet number, accepting a decimal comma, a trailing
// percent sign and surrounding whitespace. NaN and infinities are refused.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !finite(n) {
		return 0, fmt.Errorf("parse %q: %w", s, errNotFinite)
	}
	return n, nil
}
