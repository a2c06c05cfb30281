package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/bezem-backend/internal/config"
	"github.com/stemsi/bezem-backend/internal/model"
)

var ErrImportJobNotFound = errors.New("import job not found")

// jobTTL is how long finished job state stays readable.
const jobTTL = 7 * 24 * time.Hour

// ImportJobRepository keeps import jobs, their queue and progress stream in
// Redis.
type ImportJobRepository struct {
	rdb *redis.Client
}

// NewImportJobRepository creates a new ImportJobRepository.
func NewImportJobRepository(rdb *redis.Client) *ImportJobRepository {
	return &ImportJobRepository{rdb: rdb}
}

// Save writes the job state. The status field is kept next to the JSON
// document so it can be read without decoding.
func (r *ImportJobRepository) Save(ctx context.Context, job *model.ImportJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	key := config.CacheKey.ImportJobKey(job.ID.String())

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, "status", string(job.Status), "job", raw)
	pipe.Expire(ctx, key, jobTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// Get reads the job state.
func (r *ImportJobRepository) Get(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	raw, err := r.rdb.HGet(ctx, config.CacheKey.ImportJobKey(id.String()), "job").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrImportJobNotFound
		}
		return nil, err
	}

	var job model.ImportJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Enqueue pushes a job onto the import queue.
func (r *ImportJobRepository) Enqueue(ctx context.Context, id uuid.UUID) error {
	return r.rdb.RPush(ctx, config.WorkerKey.ImportJobsQueue, id.String()).Err()
}

// Dequeue blocks up to timeout for the next job. It returns redis.Nil when
// the queue stayed empty.
func (r *ImportJobRepository) Dequeue(ctx context.Context, timeout time.Duration) (uuid.UUID, error) {
	item, err := r.rdb.BLPop(ctx, timeout, config.WorkerKey.ImportJobsQueue).Result()
	if err != nil {
		return uuid.Nil, err
	}
	if len(item) < 2 {
		return uuid.Nil, redis.Nil
	}
	return uuid.Parse(item[1])
}

// Publish sends a progress event to the job's channel.
func (r *ImportJobRepository) Publish(ctx context.Context, event model.ProgressEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, config.CacheKey.ImportProgressChannel(event.ImportID.String()), raw).Err()
}

// Subscribe opens the progress channel of a job. The caller closes it.
func (r *ImportJobRepository) Subscribe(ctx context.Context, id uuid.UUID) *redis.PubSub {
	return r.rdb.Subscribe(ctx, config.CacheKey.ImportProgressChannel(id.String()))
}
