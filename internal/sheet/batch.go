package sheet

import (
	"context"

	"github.com/stemsi/bezem-backend/internal/model"
)

// Collection names of the append-only store.
const (
	CollectionExams       = "exams"
	CollectionCourses     = "courses"
	CollectionConversions = "conversions"
)

// Batch buffers the entities built from one row so the three collections
// are written as one unit.
type Batch struct {
	Exams       []model.Exam
	Courses     []model.Course
	Conversions []model.Conversion
}

// AddConversion queues a conversion together with both courses and their exams.
func (b *Batch) AddConversion(c *model.Conversion) {
	b.Exams = append(b.Exams, c.OldCourse.Exam, c.NewCourse.Exam)
	b.Courses = append(b.Courses, c.OldCourse, c.NewCourse)
	b.Conversions = append(b.Conversions, *c)
}

// Len returns the number of buffered entities.
func (b *Batch) Len() int {
	return len(b.Exams) + len(b.Courses) + len(b.Conversions)
}

// Gateway is the append side of the store.
type Gateway interface {
	Append(ctx context.Context, batch *Batch) error
}
