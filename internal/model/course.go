package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam is the assessment attached to a course in a conversion rule.
// An exam is owned by exactly one Course.
type Exam struct {
	ID          uuid.UUID `json:"id"`
	ExamType    string    `json:"exam_type"`
	Weighting   float64   `json:"weighting"`
	EcExam      float64   `json:"ec_exam"`
	Coordinator string    `json:"coordinator"`
	CreatedAt   time.Time `json:"created_at"`
}

// Course is an old or new course taken from a conversion sheet row.
// Courses are never updated in place; corrections are appended as new records.
type Course struct {
	ID        uuid.UUID `json:"id"`
	Education string    `json:"education"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Period    string    `json:"period"`
	EcCourse  float64   `json:"ec_course"`
	Exam      Exam      `json:"exam"`
	CreatedAt time.Time `json:"created_at"`
}
