package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hireready/backend/models"
	ws "github.com/hireready/backend/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://app.hireready.test"

func startLiveOverHTTP(t *testing.T, f *apiFixture, token string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/schedules", token, map[string]any{
		"company": "Globex", "position": "Systems Engineer", "round_type": "HR", "difficulty": "HARD",
		"scheduled_time": time.Now().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var schedule models.InterviewSchedule
	decode(t, rec, &schedule)

	rec = f.do(t, http.MethodPost, "/api/v1/live/start", token, map[string]string{"schedule_id": schedule.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var session models.InterviewSession
	decode(t, rec, &session)
	return session.ID
}

func dialLive(t *testing.T, srv *httptest.Server, sessionID, token, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/live/" + sessionID + "/ws"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Origin", origin)
	return websocket.DefaultDialer.Dial(url, header)
}

func readMessage(t *testing.T, conn *websocket.Conn) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestLiveRoomOverWebSocket(t *testing.T) {
	g := newFakeGateway()
	liveQuestions(g)
	liveScores(g)
	g.reply(finalReportPrompt, `{"overallScore": 88, "decision": "SELECTED", "detailedFeedback": "Strong."}`)
	f := newAPIFixture(t, g, func(c *Config) { c.WebSocket.AllowedOrigins = testOrigin })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.server.hub.Run(ctx)

	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	token := f.signup(t, "socket@example.com")
	sessionID := startLiveOverHTTP(t, f, token)

	conn, _, err := dialLive(t, srv, sessionID, token, testOrigin)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ws.Message{Type: "next"}))
	msg := readMessage(t, conn)
	assert.Equal(t, "question", msg.Type)
	assert.Equal(t, 1, msg.QuestionNumber)
	assert.Contains(t, msg.Content, "Globex")

	require.NoError(t, conn.WriteJSON(ws.Message{Type: "answer", Content: "  "}))
	msg = readMessage(t, conn)
	assert.Equal(t, "error", msg.Type)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: "answer", Content: "I keep calm under pressure"}))
	msg = readMessage(t, conn)
	assert.Equal(t, "question", msg.Type)
	assert.Equal(t, "Live question 2?", msg.Content)
	assert.Equal(t, 2, msg.QuestionNumber)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: "dance"}))
	msg = readMessage(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Content, "dance")

	f.server.tasks.Wait()

	require.NoError(t, conn.WriteJSON(ws.Message{Type: "end"}))
	msg = readMessage(t, conn)
	assert.Equal(t, "evaluation", msg.Type)
	data, ok := msg.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "SELECTED", data["decision"])
	assert.EqualValues(t, 88, data["overall_score"])

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "room closes after the evaluation: %v", err)

	rec := f.do(t, http.MethodPost, "/api/v1/live/"+sessionID+"/next", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLiveWebSocketRejections(t *testing.T) {
	f := newAPIFixture(t, newFakeGateway(), func(c *Config) { c.WebSocket.AllowedOrigins = testOrigin })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.server.hub.Run(ctx)

	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	token := f.signup(t, "owner@example.com")
	sessionID := startLiveOverHTTP(t, f, token)

	_, resp, err := dialLive(t, srv, sessionID, token, "http://evil.test")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	other := f.signup(t, "stranger@example.com")
	_, resp, err = dialLive(t, srv, sessionID, other, testOrigin)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = dialLive(t, srv, sessionID, "", testOrigin)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
