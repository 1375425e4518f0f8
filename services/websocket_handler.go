package services

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	ws "github.com/hireready/backend/websocket"
)

const liveMessageTimeout = 90 * time.Second

// LiveRoom drives a live interview over a websocket. Each inbound message
// maps onto one LiveInterviewService operation and the result is broadcast
// to every client attached to the session.
type LiveRoom struct {
	live       *LiveInterviewService
	interviews *InterviewService
	hub        *ws.Hub
	upgrader   websocket.Upgrader
}

func NewLiveRoom(live *LiveInterviewService, interviews *InterviewService, hub *ws.Hub, allowedOrigins string) *LiveRoom {
	return &LiveRoom{
		live:       live,
		interviews: interviews,
		hub:        hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, allowedOrigins)
			},
		},
	}
}

// HandleMessage processes one inbound message for the client's session.
func (h *LiveRoom) HandleMessage(client *ws.Client, msg ws.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), liveMessageTimeout)
	defer cancel()

	switch msg.Type {
	case "answer":
		if strings.TrimSpace(msg.Content) == "" {
			h.sendError(client, "answer must not be empty")
			return
		}
		answer := msg.Content
		h.nextQuestion(ctx, client, &answer)
	case "next":
		h.nextQuestion(ctx, client, nil)
	case "end":
		evaluation, err := h.live.EndLiveSession(ctx, client.SessionID)
		if err != nil {
			h.fail(client, err)
			return
		}
		h.hub.Broadcast(client.SessionID, ws.Message{
			Type:      "evaluation",
			SessionID: client.SessionID,
			Data:      evaluation,
		})
		h.hub.CloseSession(client.SessionID)
	default:
		slog.Warn("Unknown message type", "type", msg.Type, "session_id", client.SessionID)
		h.sendError(client, "unknown message type: "+msg.Type)
	}
}

func (h *LiveRoom) nextQuestion(ctx context.Context, client *ws.Client, answer *string) {
	question, err := h.live.GetNextQuestion(ctx, client.SessionID, answer)
	if err != nil {
		h.fail(client, err)
		return
	}
	out := ws.Message{Type: "question", Content: question, SessionID: client.SessionID}
	if session, err := h.interviews.GetSession(ctx, client.SessionID); err == nil {
		out.QuestionNumber = len(session.QuestionAnswers)
	}
	h.hub.Broadcast(client.SessionID, out)
}

func (h *LiveRoom) fail(client *ws.Client, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Live message failed", "error", err, "session_id", client.SessionID)
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	h.sendError(client, msg)
}

func (h *LiveRoom) sendError(client *ws.Client, msg string) {
	client.SendJSON(ws.Message{Type: "error", Content: msg, SessionID: client.SessionID})
}

// WebSocketHandler upgrades an authorized request and attaches it to the session room.
func (e *LiveEndpoints) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	session, err := ownedSession(r.Context(), e.interviews, userID, sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !session.IsActive() {
		writeServiceError(w, r, ErrSessionNotActive)
		return
	}

	conn, err := e.room.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}
	slog.Info("WebSocket connection established", "user_id", userID, "session_id", sessionID)

	client := e.room.hub.RegisterClient(conn, userID, sessionID)
	client.MessageHandler = e.room.HandleMessage

	go client.WritePump()
	client.ReadPump()
}
