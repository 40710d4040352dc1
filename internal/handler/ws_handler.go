package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/assessment"
	"github.com/evpower/recruit-backend/internal/middleware"
	ws "github.com/evpower/recruit-backend/internal/websocket"
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

// WSHandler streams a candidate's aptitude test over WebSocket.
type WSHandler struct {
	manager  *assessment.Manager
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(manager *assessment.Manager, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		manager:  manager,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AssessmentStream godoc
// WS /ws/v1/candidate/assessment/stream?token=
// Pushes countdown ticks and the graded result; accepts selections and submit.
func (h *WSHandler) AssessmentStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	email := claims.Email

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	w := ws.NewWriter(conn)
	wsLog := h.log.With().Str("email", email).Logger()

	sess, err := h.manager.Get(email)
	if err != nil {
		w.Error("no aptitude test in progress")
		return
	}

	// Subscribe before the snapshot so no tick falls between the two.
	events, cancel := h.manager.Subscribe(email)
	defer cancel()

	if err := w.Write(ws.StateResponse{Event: ws.EventState, Session: sess.Snapshot()}); err != nil {
		return
	}

	wsLog.Info().Msg("Candidate connected")

	go h.forward(w, events, wsLog)

	for {
		var raw json.RawMessage
		if err := ws.ReadJSON(conn, &raw); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		var env ws.RequestEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			w.Error("malformed message")
			continue
		}

		switch env.Action {
		case ws.ActionSelect:
			h.handleSelect(w, email, raw)
		case ws.ActionSubmit:
			h.handleSubmit(w, wsLog, email)
		case ws.ActionPing:
			w.Write(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
			w.Error("unknown action: " + string(env.Action))
		}
	}
}

// forward relays manager events until the subscription is cancelled.
func (h *WSHandler) forward(w *ws.Writer, events <-chan assessment.Event, wsLog zerolog.Logger) {
	for ev := range events {
		var err error
		switch ev.Type {
		case assessment.EventTick:
			err = w.Write(ws.TickResponse{Event: ws.EventTick, Remaining: ev.Remaining})
		case assessment.EventFinalized:
			if ev.Result != nil {
				err = w.Write(ws.Graded(*ev.Result))
			}
		}
		if err != nil {
			wsLog.Debug().Err(err).Msg("Event write failed")
		}
	}
}

func (h *WSHandler) handleSelect(w *ws.Writer, email string, raw json.RawMessage) {
	var req ws.SelectRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.QID == "" || req.Option == nil {
		w.Error("q_id and option are required")
		return
	}

	if err := h.manager.Select(email, req.QID, *req.Option); err != nil {
		_, code := assessmentErrCode(err)
		w.Error(string(code))
		return
	}

	w.Write(ws.SavedResponse{Event: ws.EventSaved, QID: req.QID, Option: *req.Option})
}

// handleSubmit grades the test. The graded event reaches the client through
// the subscription, so only failures are written here.
func (h *WSHandler) handleSubmit(w *ws.Writer, wsLog zerolog.Logger, email string) {
	res, err := h.manager.Submit(context.Background(), email)
	if err != nil {
		_, code := assessmentErrCode(err)
		w.Error(string(code))
		return
	}

	wsLog.Info().
		Int("score", res.Record.Score).
		Int("total", res.Record.TotalQuestions).
		Bool("saved", res.Persisted()).
		Msg("Assessment submitted over stream")
}
