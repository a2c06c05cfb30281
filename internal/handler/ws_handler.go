package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/response"
	"github.com/stemsi/bezem-backend/internal/service"
	ws "github.com/stemsi/bezem-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams import progress over WebSocket.
type WSHandler struct {
	importService *service.ImportService
	progress      ProgressSubscriber
	log           zerolog.Logger
	upgrader      websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(importService *service.ImportService, progress ProgressSubscriber, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		importService: importService,
		progress:      progress,
		log:           log.With().Str("component", "ws_handler").Logger(),
		upgrader:      buildUpgrader(allowedOrigins),
	}
}

// ImportProgressStream godoc
// WS /ws/v1/imports/:id/progress
// Sends a job snapshot, then every progress event until the job ends.
func (h *WSHandler) ImportProgressStream(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("import_id", id.String()).Logger()

	// gorilla connections allow one concurrent writer.
	var writeMu sync.Mutex
	write := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return ws.WriteTyped(conn, v)
	}
	closeNormal := func(reason string) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = ws.CloseNormal(conn, reason)
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.progress.Subscribe(ctx, id)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Progress subscription failed")
		_ = ws.WriteError(conn, "progress unavailable")
		return
	}

	job, err := h.importService.GetJob(ctx, id)
	if err != nil {
		_ = ws.WriteError(conn, "import not found")
		return
	}
	if err := write(ws.SnapshotResponse{Event: ws.EventSnapshot, Job: job}); err != nil {
		return
	}
	if job.Finished() {
		closeNormal(string(job.Status))
		return
	}

	wsLog.Info().Msg("Admin connected to import progress")

	go h.readLoop(conn, wsLog, write, cancel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Connection closed")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev model.ProgressEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				wsLog.Warn().Err(err).Msg("Malformed progress event")
				continue
			}
			if err := write(ws.ProgressResponse{Event: ws.EventProgress, Progress: ev}); err != nil {
				return
			}
			if ws.IsTerminal(ev.Type) {
				closeNormal(ev.Type)
				return
			}
		}
	}
}

// readLoop answers pings and cancels the stream once the client goes away.
func (h *WSHandler) readLoop(conn *websocket.Conn, wsLog zerolog.Logger, write func(interface{}) error, cancel context.CancelFunc) {
	defer cancel()
	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			_ = write(ws.PongResponse{Event: ws.EventPong})
		default:
			_ = write(ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)})
		}
	}
}
