package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/config"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/repository"
	"github.com/stemsi/bezem-backend/internal/sheet"
)

// SearchHit is one conversion matching a search query.
type SearchHit struct {
	Sheet model.SheetID   `json:"sheet"`
	Row   sheet.ExportRow `json:"row"`
}

// ConversionService serves the read side of the store: collections, search
// and the re-export workbook. Collections are cached in Redis when a client
// is configured.
type ConversionService struct {
	store    repository.ConversionStore
	rdb      *redis.Client
	registry *sheet.Registry
	ttl      time.Duration
	log      zerolog.Logger
}

// NewConversionService creates a new ConversionService. rdb may be nil.
func NewConversionService(store repository.ConversionStore, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *ConversionService {
	return &ConversionService{
		store:    store,
		rdb:      rdb,
		registry: sheet.DefaultRegistry(),
		ttl:      ttl,
		log:      log.With().Str("component", "conversion_service").Logger(),
	}
}

// ListConversions returns all conversions, or those of one sheet.
func (s *ConversionService) ListConversions(ctx context.Context, sheetName string) ([]model.Conversion, error) {
	var id model.SheetID
	if sheetName != "" {
		resolved, err := s.registry.Resolve(sheetName)
		if err != nil {
			return nil, err
		}
		id = resolved
	}
	return cached(ctx, s, config.CacheKey.ConversionsKey(string(id)), func() ([]model.Conversion, error) {
		return s.store.ListConversions(ctx, id)
	})
}

// ListCourses returns the courses collection.
func (s *ConversionService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return cached(ctx, s, config.CacheKey.CoursesKey(), func() ([]model.Course, error) {
		return s.store.ListCourses(ctx)
	})
}

// ListExams returns the exams collection.
func (s *ConversionService) ListExams(ctx context.Context) ([]model.Exam, error) {
	return cached(ctx, s, config.CacheKey.ExamsKey(), func() ([]model.Exam, error) {
		return s.store.ListExams(ctx)
	})
}

// Counts returns the size of each collection.
func (s *ConversionService) Counts(ctx context.Context) (repository.Counts, error) {
	return s.store.Counts(ctx)
}

// Search matches every query term against the flattened conversions.
func (s *ConversionService) Search(ctx context.Context, query string) ([]SearchHit, error) {
	conversions, err := s.ListConversions(ctx, "")
	if err != nil {
		return nil, err
	}

	rows := make([]sheet.ExportRow, len(conversions))
	ix := sheet.NewIndex()
	for i, c := range conversions {
		rows[i] = sheet.ProjectConversion(c)
		ix.Add(c.Sheet, i, rows[i].Strings())
	}

	entries := ix.Search(query)
	hits := make([]SearchHit, 0, len(entries))
	for _, e := range entries {
		hits = append(hits, SearchHit{Sheet: e.Sheet, Row: rows[e.RowIndex]})
	}
	return hits, nil
}

// Export writes the re-export workbook with one worksheet per sheet tag.
func (s *ConversionService) Export(ctx context.Context, w io.Writer) error {
	conversions, err := s.store.ListConversions(ctx, "")
	if err != nil {
		return fmt.Errorf("list conversions: %w", err)
	}
	return sheet.WriteWorkbook(w, conversions, s.SheetIDs())
}

// SheetIDs returns the registered sheet tags in workbook order.
func (s *ConversionService) SheetIDs() []model.SheetID {
	schemas := s.registry.All()
	ids := make([]model.SheetID, len(schemas))
	for i, sc := range schemas {
		ids[i] = sc.ID
	}
	return ids
}

// Schemas returns the registered layouts.
func (s *ConversionService) Schemas() []*sheet.Schema {
	return s.registry.All()
}

// Clear empties the three collections.
func (s *ConversionService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	s.log.Warn().Msg("Store cleared")
	return s.Invalidate(ctx)
}

// Invalidate removes every cached collection.
func (s *ConversionService) Invalidate(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	pipe := s.rdb.Pipeline()
	for _, pattern := range config.CacheKey.ReadModelPattern() {
		iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			pipe.Del(ctx, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("scan %s: %w", pattern, err)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	return nil
}

// cached serves key from Redis, falling back to load and filling the cache.
// Cache failures are logged and never fail the read.
func cached[T any](ctx context.Context, s *ConversionService, key string, load func() (T, error)) (T, error) {
	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var out T
			if err := json.Unmarshal(data, &out); err == nil {
				return out, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
	}

	out, err := load()
	if err != nil {
		return out, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
			}
		}
	}
	return out, nil
}
