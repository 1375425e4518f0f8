package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func waitForClients(t *testing.T, h *Hub, sessionID string, n int) {
	t.Helper()
	assert.Eventually(t, func() bool { return h.ClientCount(sessionID) == n }, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case payload, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(payload, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func TestBroadcastReachesSessionClientsOnly(t *testing.T) {
	h := runHub(t)
	a := h.RegisterClient(nil, "u1", "s1")
	b := h.RegisterClient(nil, "u1", "s1")
	other := h.RegisterClient(nil, "u2", "s2")
	waitForClients(t, h, "s1", 2)
	waitForClients(t, h, "s2", 1)

	h.Broadcast("s1", Message{Type: "question", Content: "Why Go?", QuestionNumber: 2})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, "question", msg.Type)
		assert.Equal(t, "Why Go?", msg.Content)
		assert.Equal(t, 2, msg.QuestionNumber)
	}
	assert.Empty(t, other.Send)
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	h := runHub(t)
	slow := h.RegisterClient(nil, "u1", "s1")
	waitForClients(t, h, "s1", 1)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, slow.SendJSON(Message{Type: "filler"}))
	}
	assert.False(t, slow.SendJSON(Message{Type: "overflow"}))

	h.Broadcast("s1", Message{Type: "question"})
	assert.Equal(t, 0, h.ClientCount("s1"))

	for range slow.Send {
	}
	assert.False(t, slow.SendJSON(Message{Type: "after close"}))
}

func TestUnregisterClosesSend(t *testing.T) {
	h := runHub(t)
	c := h.RegisterClient(nil, "u1", "s1")
	waitForClients(t, h, "s1", 1)

	h.unregister <- c
	waitForClients(t, h, "s1", 0)
	_, ok := <-c.Send
	assert.False(t, ok)

	h.unregister <- c
}

func TestRunClosesClientsOnShutdown(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	c := h.RegisterClient(nil, "u1", "s1")
	waitForClients(t, h, "s1", 1)
	cancel()
	<-done

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.Equal(t, 0, h.ClientCount("s1"))
}

func TestCloseSessionKeepsQueuedMessages(t *testing.T) {
	h := runHub(t)
	c := h.RegisterClient(nil, "u1", "s1")
	waitForClients(t, h, "s1", 1)

	h.Broadcast("s1", Message{Type: "evaluation"})
	h.CloseSession("s1")
	assert.Equal(t, 0, h.ClientCount("s1"))

	assert.Equal(t, "evaluation", receive(t, c).Type)
	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestSlowHandlerKeepsConnectionAlive(t *testing.T) {
	h := NewHub(WithKeepalive(150*time.Millisecond, 50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := h.RegisterClient(conn, "u1", "s1")
		client.MessageHandler = func(c *Client, msg Message) {
			time.Sleep(400 * time.Millisecond)
			c.SendJSON(Message{Type: "question", Content: "re: " + msg.Content})
		}
		go client.WritePump()
		client.ReadPump()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Message{Type: "answer", Content: "first"}))
	require.NoError(t, conn.WriteJSON(Message{Type: "answer", Content: "second"}))

	// Reading also answers the server's pings.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for _, want := range []string{"re: first", "re: second"} {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, want, msg.Content)
	}
	assert.Equal(t, 1, h.ClientCount("s1"))
}
