package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
	inboxBuffer    = 16
)

// Hub tracks live interview clients by session ID.
type Hub struct {
	sessions   map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	pongWait   time.Duration
	pingPeriod time.Duration
}

type Option func(*Hub)

// WithKeepalive sets how long a connection may go without a pong and how
// often it is pinged. ping must be shorter than pong.
func WithKeepalive(pong, ping time.Duration) Option {
	return func(h *Hub) {
		h.pongWait = pong
		h.pingPeriod = ping
	}
}

type Client struct {
	Hub            *Hub
	Conn           *websocket.Conn
	Send           chan []byte
	UserID         string
	SessionID      string
	MessageHandler func(*Client, Message) // called in read order, one at a time
	closeOnce      sync.Once
}

// Message is the envelope for both directions.
// Inbound types: "answer", "next", "end". Outbound: "question", "evaluation", "error".
type Message struct {
	Type           string `json:"type"`
	Content        string `json:"content,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	QuestionNumber int    `json:"question_number,omitempty"`
	Data           any    `json:"data,omitempty"`
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		sessions:   make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		pongWait:   pongWait,
		pingPeriod: pingPeriod,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.sessions[client.SessionID] == nil {
				h.sessions[client.SessionID] = make(map[*Client]bool)
			}
			h.sessions[client.SessionID][client] = true
			h.mu.Unlock()
			slog.Info("Client registered", "user_id", client.UserID, "session_id", client.SessionID)

		case client := <-h.unregister:
			h.remove(client)
			slog.Info("Client unregistered", "user_id", client.UserID, "session_id", client.SessionID)

		case <-ctx.Done():
			h.mu.Lock()
			for _, clients := range h.sessions {
				for client := range clients {
					client.closeSend()
				}
			}
			h.sessions = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.sessions[client.SessionID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.sessions, client.SessionID)
	}
	client.closeSend()
}

func (h *Hub) RegisterClient(conn *websocket.Conn, userID, sessionID string) *Client {
	client := &Client{
		Hub:       h,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		UserID:    userID,
		SessionID: sessionID,
	}
	h.register <- client
	return client
}

// ClientCount returns the number of clients attached to a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Broadcast sends msg to every client of the session. Slow clients are dropped.
func (h *Hub) Broadcast(sessionID string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal broadcast", "error", err, "session_id", sessionID)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.sessions[sessionID] {
		select {
		case client.Send <- payload:
		default:
			delete(h.sessions[sessionID], client)
			client.closeSend()
		}
	}
}

// CloseSession detaches every client of the session. Messages already queued
// are still written before the connection closes.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.sessions[sessionID] {
		client.closeSend()
	}
	delete(h.sessions, sessionID)
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// SendJSON queues msg for this client only. It reports false when the
// buffer is full or the client is gone.
func (c *Client) SendJSON(msg Message) (sent bool) {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal message", "error", err, "session_id", c.SessionID)
		return false
	}
	defer func() {
		if recover() != nil {
			sent = false
		}
	}()
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// ReadPump reads until the connection fails. Messages are handed to a
// dispatch goroutine so pongs keep extending the read deadline while a slow
// handler runs. Messages still queued at disconnect are handled before
// ReadPump returns.
func (c *Client) ReadPump() {
	inbox := make(chan Message, inboxBuffer)
	done := make(chan struct{})
	go c.dispatch(inbox, done)

	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
		close(inbox)
		<-done
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Hub.pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Hub.pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			slog.Error("Failed to unmarshal message", "error", err)
			c.SendJSON(Message{Type: "error", Content: "invalid message", SessionID: c.SessionID})
			continue
		}

		slog.Info("Message received", "type", msg.Type, "session_id", c.SessionID, "content_length", len(msg.Content))
		select {
		case inbox <- msg:
		default:
			slog.Warn("Inbox full, message dropped", "type", msg.Type, "session_id", c.SessionID)
			c.SendJSON(Message{Type: "error", Content: "too many pending messages", SessionID: c.SessionID})
		}
	}
}

func (c *Client) dispatch(inbox <-chan Message, done chan<- struct{}) {
	defer close(done)
	for msg := range inbox {
		if c.MessageHandler != nil {
			c.MessageHandler(c, msg)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.Hub.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
