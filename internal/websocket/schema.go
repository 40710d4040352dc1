package websocket

import (
	"github.com/evpower/recruit-backend/internal/assessment"
	"github.com/evpower/recruit-backend/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect Action = "select"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// SelectRequest is sent by the client to choose an option for a question.
type SelectRequest struct {
	Action Action `json:"action"`
	QID    string `json:"q_id"`
	Option *int   `json:"option"`
}

// SubmitRequest is sent by the client to finish and grade the test.
type SubmitRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventState  Event = "state"
	EventSaved  Event = "saved"
	EventTick   Event = "tick"
	EventGraded Event = "graded"
	EventPong   Event = "pong"
)

// StateResponse is sent on connect with the full session snapshot.
type StateResponse struct {
	Event   Event               `json:"event"`
	Session assessment.Snapshot `json:"session"`
}

type SavedResponse struct {
	Event  Event  `json:"event"`
	QID    string `json:"q_id"`
	Option int    `json:"option"`
}

type TickResponse struct {
	Event     Event `json:"event"`
	Remaining int   `json:"remaining_seconds"`
}

// GradedResponse reports the finalized attempt. Saved is false when the
// result could not be written to the attempt log.
type GradedResponse struct {
	Event      Event                `json:"event"`
	Status     model.AttemptOutcome `json:"status"`
	Score      int                  `json:"score"`
	Total      int                  `json:"total"`
	Percentage int                  `json:"percentage"`
	TimeSpent  int                  `json:"time_spent"`
	Saved      bool                 `json:"saved"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// Graded builds the graded event for a finalization result.
func Graded(res assessment.Result) GradedResponse {
	return GradedResponse{
		Event:      EventGraded,
		Status:     res.Record.Outcome,
		Score:      res.Record.Score,
		Total:      res.Record.TotalQuestions,
		Percentage: res.Record.Percentage,
		TimeSpent:  res.Record.TimeSpent,
		Saved:      res.Persisted(),
	}
}
