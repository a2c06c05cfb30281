package repository

import (
	"context"
	"sync"

	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/sheet"
)

type collection[T any] struct {
	mu    sync.RWMutex
	items []T
}

func (c *collection[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// MemoryStore keeps the collections in process memory. It backs the
// command line tool and tests.
type MemoryStore struct {
	exams       collection[model.Exam]
	courses     collection[model.Course]
	conversions collection[model.Conversion]
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ ConversionStore = (*MemoryStore)(nil)

// Append writes a batch. The three collection locks are taken in a fixed
// order and held together so a batch is visible all at once.
func (s *MemoryStore) Append(ctx context.Context, b *sheet.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.exams.mu.Lock()
	defer s.exams.mu.Unlock()
	s.courses.mu.Lock()
	defer s.courses.mu.Unlock()
	s.conversions.mu.Lock()
	defer s.conversions.mu.Unlock()

	s.exams.items = append(s.exams.items, b.Exams...)
	s.courses.items = append(s.courses.items, b.Courses...)
	s.conversions.items = append(s.conversions.items, b.Conversions...)
	return nil
}

func (s *MemoryStore) ListConversions(_ context.Context, sheetID model.SheetID) ([]model.Conversion, error) {
	all := s.conversions.snapshot()
	if sheetID == "" {
		return all, nil
	}
	out := make([]model.Conversion, 0, len(all))
	for _, c := range all {
		if c.Sheet == sheetID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListCourses(_ context.Context) ([]model.Course, error) {
	return s.courses.snapshot(), nil
}

func (s *MemoryStore) ListExams(_ context.Context) ([]model.Exam, error) {
	return s.exams.snapshot(), nil
}

func (s *MemoryStore) Counts(_ context.Context) (Counts, error) {
	return Counts{
		Exams:       s.exams.len(),
		Courses:     s.courses.len(),
		Conversions: s.conversions.len(),
	}, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.exams.mu.Lock()
	defer s.exams.mu.Unlock()
	s.courses.mu.Lock()
	defer s.courses.mu.Unlock()
	s.conversions.mu.Lock()
	defer s.conversions.mu.Unlock()

	s.exams.items = nil
	s.courses.items = nil
	s.conversions.items = nil
	return nil
}
