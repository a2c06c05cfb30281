package websocket

import "github.com/stemsi/bezem-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventProgress Event = "progress"
	EventSnapshot Event = "snapshot"
	EventPong     Event = "pong"
)

// SnapshotResponse carries the job state at the moment the client connected.
type SnapshotResponse struct {
	Event Event            `json:"event"`
	Job   *model.ImportJob `json:"job"`
}

// ProgressResponse relays one import progress event.
type ProgressResponse struct {
	Event    Event               `json:"event"`
	Progress model.ProgressEvent `json:"progress"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// IsTerminal reports whether a progress event ends the import stream.
func IsTerminal(eventType string) bool {
	switch eventType {
	case "done", "rejected", "error":
		return true
	}
	return false
}
