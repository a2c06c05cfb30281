package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/config"
	"github.com/stemsi/bezem-backend/internal/response"
)

const statusProbeTimeout = 2 * time.Second

const (
	componentUp       = "up"
	componentDown     = "down"
	componentDisabled = "disabled"
)

// SystemHandler reports the state of the backing stores, the import queue
// and the Go runtime.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a SystemHandler. Either client may be nil when
// the process runs without it.
func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		pool:      pool,
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type systemStatus struct {
	Postgres    string `json:"postgres"`
	Redis       string `json:"redis"`
	QueueLength int64  `json:"queue_length"`
	Uptime      string `json:"uptime"`
	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc"`
	NumGC       uint32 `json:"num_gc"`
	GoVersion   string `json:"go_version"`
}

// Status godoc
// GET /api/v1/admin/system
// Answers 503 when a configured store does not respond.
func (h *SystemHandler) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statusProbeTimeout)
	defer cancel()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	st := systemStatus{
		Postgres:   h.probePostgres(ctx),
		Redis:      h.probeRedis(ctx),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		NumGC:      mem.NumGC,
		GoVersion:  runtime.Version(),
	}
	if st.Redis == componentUp {
		n, err := h.rdb.LLen(ctx, config.WorkerKey.ImportJobsQueue).Result()
		if err != nil {
			h.log.Warn().Err(err).Msg("Queue length probe failed")
		}
		st.QueueLength = n
	}

	code := http.StatusOK
	if st.Postgres == componentDown || st.Redis == componentDown {
		code = http.StatusServiceUnavailable
	}
	response.Success(c, code, st)
}

func (h *SystemHandler) probePostgres(ctx context.Context) string {
	if h.pool == nil {
		return componentDisabled
	}
	if err := h.pool.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("PostgreSQL probe failed")
		return componentDown
	}
	return componentUp
}

func (h *SystemHandler) probeRedis(ctx context.Context) string {
	if h.rdb == nil {
		return componentDisabled
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		h.log.Warn().Err(err).Msg("Redis probe failed")
		return componentDown
	}
	return componentUp
}
