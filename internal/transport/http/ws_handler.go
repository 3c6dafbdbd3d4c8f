package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"physquiz-service/internal/app"
	"physquiz-service/internal/domain"
	"physquiz-service/internal/quiz"
)

// WSHandler drives one quiz session per websocket connection. The client
// sends select/advance/previous/finish messages and receives a state snapshot
// after each one; the session is abandoned if the socket drops before the
// quiz completes.
type WSHandler struct {
	service  *app.StudyService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.StudyService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type selectPayload struct {
	Option string `json:"option"`
}

type outboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ServeWS upgrades the connection, starts a session for the requested
// category and processes client commands until the session ends.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	categoryID := r.URL.Query().Get("category_id")
	if categoryID == "" {
		http.Error(w, "missing category_id", http.StatusBadRequest)
		return
	}
	var questionIDs []string
	if raw := r.URL.Query().Get("question_ids"); raw != "" {
		questionIDs = strings.Split(raw, ",")
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	state, err := h.service.StartSession(r.Context(), categoryID, questionIDs)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	sessionID := state.SessionID
	completed := false
	defer func() {
		// A dropped connection mid-quiz leaves no half-open session behind.
		if !completed {
			_ = h.service.Abandon(sessionID)
		}
	}()

	if err := conn.WriteJSON(outboundMessage{Type: "state", Payload: state}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		var state app.SessionState
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, "invalid select payload")
				continue
			}
			state, err = h.service.SelectOption(r.Context(), sessionID, payload.Option)
		case "advance":
			state, err = h.service.Advance(r.Context(), sessionID)
		case "previous":
			state, err = h.service.Previous(r.Context(), sessionID)
		case "finish":
			state, err = h.service.FinishEarly(r.Context(), sessionID)
			if errors.Is(err, domain.ErrNothingAnswered) {
				// The client is expected to confirm and send abandon.
				h.sendError(conn, err.Error())
				continue
			}
		case "abandon":
			_ = h.service.Abandon(sessionID)
			completed = true
			_ = conn.WriteJSON(outboundMessage{Type: "abandoned", Payload: nil})
			return
		default:
			h.sendError(conn, "unsupported message type")
			continue
		}

		if err != nil {
			h.sendError(conn, err.Error())
			continue
		}
		if err := conn.WriteJSON(outboundMessage{Type: "state", Payload: state}); err != nil {
			return
		}
		if state.Phase == quiz.PhaseCompleted {
			completed = true
			_ = conn.WriteJSON(outboundMessage{Type: "result", Payload: state.Result})
			return
		}
	}
}

func (h *WSHandler) sendError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: message}}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}
