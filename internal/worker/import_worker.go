package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
	RetryBackoff = 3 * time.Second
)

// JobQueue hands out queued import ids.
type JobQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (uuid.UUID, error)
}

// JobProcessor runs one import job to completion.
type JobProcessor interface {
	ProcessJob(ctx context.Context, id uuid.UUID) error
}

// ImportWorker consumes the import queue, one job at a time.
type ImportWorker struct {
	queue     JobQueue
	processor JobProcessor
	log       zerolog.Logger
	done      chan struct{}
}

func NewImportWorker(queue JobQueue, processor JobProcessor, log zerolog.Logger) *ImportWorker {
	return &ImportWorker{
		queue:     queue,
		processor: processor,
		log:       log.With().Str("component", "import_worker").Logger(),
		done:      make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled. A job that is running when shutdown
// is requested runs to completion first.
func (w *ImportWorker) Start(ctx context.Context) {
	defer close(w.done)
	w.log.Info().Msg("ImportWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ImportWorker stopped")
			return
		default:
		}

		id, err := w.queue.Dequeue(ctx, PollTimeout)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("Dequeue failed, backing off")
			select {
			case <-ctx.Done():
			case <-time.After(RetryBackoff):
			}
			continue
		}

		w.process(context.WithoutCancel(ctx), id)
	}
}

// Done is closed once Start has returned.
func (w *ImportWorker) Done() <-chan struct{} {
	return w.done
}

func (w *ImportWorker) process(ctx context.Context, id uuid.UUID) {
	start := time.Now()
	log := w.log.With().Str("import_id", id.String()).Logger()
	log.Info().Msg("Import job started")

	if err := w.processor.ProcessJob(ctx, id); err != nil {
		log.Error().Err(err).Dur("took", time.Since(start)).Msg("Import job failed")
		return
	}
	log.Info().Dur("took", time.Since(start)).Msg("Import job finished")
}
