package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/bezem-backend/internal/config"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/repository"
	"github.com/stemsi/bezem-backend/internal/sheet"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		EnrollBaseURL:     "https://osiris.example.nl",
		ImportTitleMarker: "Bezem- en conversieregeling",
		UploadDir:         t.TempDir(),
		MaxUploadBytes:    1 << 20,
		JWTSecret:         "test-secret",
		JWTExpiry:         time.Hour,
		BcryptCost:        4,
	}
}

func decode(t *testing.T, raw []byte) *sheet.Workbook {
	t.Helper()
	wb, err := sheet.DecodeWorkbook(bytes.NewReader(raw))
	require.NoError(t, err)
	return wb
}

// memoryJobs is an in-process ImportJobStore.
type memoryJobs struct {
	mu     sync.Mutex
	jobs   map[uuid.UUID]model.ImportJob
	queue  []uuid.UUID
	events []model.ProgressEvent
}

func newMemoryJobs() *memoryJobs {
	return &memoryJobs{jobs: make(map[uuid.UUID]model.ImportJob)}
}

func (m *memoryJobs) Save(_ context.Context, job *model.ImportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *memoryJobs) Get(_ context.Context, id uuid.UUID) (*model.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, repository.ErrImportJobNotFound
	}
	return &job, nil
}

func (m *memoryJobs) Enqueue(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, id)
	return nil
}

func (m *memoryJobs) Publish(_ context.Context, ev model.ProgressEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memoryJobs) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}
