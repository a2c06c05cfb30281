package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/sheet"
)

// ConversionRepository handles exam, course and conversion data access.
type ConversionRepository struct {
	pool *pgxpool.Pool
}

// NewConversionRepository creates a new ConversionRepository.
func NewConversionRepository(pool *pgxpool.Pool) *ConversionRepository {
	return &ConversionRepository{pool: pool}
}

var _ ConversionStore = (*ConversionRepository)(nil)

// Append writes one batch in a single transaction. Exams go first since
// courses reference them, and courses before the conversions linking them.
func (r *ConversionRepository) Append(ctx context.Context, b *sheet.Batch) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range b.Exams {
			batch.Queue(
				`INSERT INTO exams (id, exam_type, weighting, ec_exam, coordinator, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				e.ID, e.ExamType, e.Weighting, e.EcExam, e.Coordinator, e.CreatedAt)
		}
		for _, c := range b.Courses {
			batch.Queue(
				`INSERT INTO courses (id, education, code, name, period, ec_course, exam_id, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				c.ID, c.Education, c.Code, c.Name, c.Period, c.EcCourse, c.Exam.ID, c.CreatedAt)
		}
		for _, c := range b.Conversions {
			batch.Queue(
				`INSERT INTO conversions (id, bezem_or_conversion, old_course_id, new_course_id, comment, sheet, import_id, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				c.ID, string(c.BezemOrConversion), c.OldCourse.ID, c.NewCourse.ID, c.Comment, string(c.Sheet), c.ImportID, c.CreatedAt)
		}

		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert %d of %d: %w", i+1, batch.Len(), err)
			}
		}
		return br.Close()
	})
}

const courseColumns = `%[1]s.id, %[1]s.education, %[1]s.code, %[1]s.name, %[1]s.period, %[1]s.ec_course, %[1]s.created_at,
	%[2]s.id, %[2]s.exam_type, %[2]s.weighting, %[2]s.ec_exam, %[2]s.coordinator, %[2]s.created_at`

func courseTargets(c *model.Course) []interface{} {
	return []interface{}{
		&c.ID, &c.Education, &c.Code, &c.Name, &c.Period, &c.EcCourse, &c.CreatedAt,
		&c.Exam.ID, &c.Exam.ExamType, &c.Exam.Weighting, &c.Exam.EcExam, &c.Exam.Coordinator, &c.Exam.CreatedAt,
	}
}

// ListConversions retrieves conversions with both courses and their exams.
func (r *ConversionRepository) ListConversions(ctx context.Context, sheetID model.SheetID) ([]model.Conversion, error) {
	query := `SELECT cv.id, cv.bezem_or_conversion, cv.comment, cv.sheet, cv.import_id, cv.created_at, ` +
		fmt.Sprintf(courseColumns, "oc", "oe") + `, ` + fmt.Sprintf(courseColumns, "nc", "ne") + `
		FROM conversions cv
		JOIN courses oc ON oc.id = cv.old_course_id
		JOIN exams oe ON oe.id = oc.exam_id
		JOIN courses nc ON nc.id = cv.new_course_id
		JOIN exams ne ON ne.id = nc.exam_id`
	var args []interface{}
	if sheetID != "" {
		query += ` WHERE cv.sheet = $1`
		args = append(args, string(sheetID))
	}
	query += ` ORDER BY cv.seq`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversions []model.Conversion
	for rows.Next() {
		var c model.Conversion
		var kind, sheetTag string
		targets := []interface{}{&c.ID, &kind, &c.Comment, &sheetTag, &c.ImportID, &c.CreatedAt}
		targets = append(targets, courseTargets(&c.OldCourse)...)
		targets = append(targets, courseTargets(&c.NewCourse)...)
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		c.BezemOrConversion = model.ConversionKind(kind)
		c.Sheet = model.SheetID(sheetTag)
		conversions = append(conversions, c)
	}
	return conversions, rows.Err()
}

// ListCourses retrieves every course with its exam.
func (r *ConversionRepository) ListCourses(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fmt.Sprintf(courseColumns, "c", "e")+`
		 FROM courses c JOIN exams e ON e.id = c.exam_id
		 ORDER BY c.seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(courseTargets(&c)...); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// ListExams retrieves every exam.
func (r *ConversionRepository) ListExams(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_type, weighting, ec_exam, coordinator, created_at
		 FROM exams ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.ExamType, &e.Weighting, &e.EcExam, &e.Coordinator, &e.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Counts returns the size of each collection.
func (r *ConversionRepository) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM exams), (SELECT COUNT(*) FROM courses), (SELECT COUNT(*) FROM conversions)`,
	).Scan(&c.Exams, &c.Courses, &c.Conversions)
	return c, err
}

// Clear truncates the three collections.
func (r *ConversionRepository) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `TRUNCATE conversions, courses, exams`)
	return err
}
