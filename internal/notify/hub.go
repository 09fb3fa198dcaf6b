package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	clientSendBuffer = 64
	writeWait        = 10 * time.Second
)

type message struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans notifications out to connected websocket clients by topic. A
// client with a full send buffer is skipped, never waited on.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Publish delivers payload to every client subscribed to topic. Marshal or
// delivery problems are logged and swallowed.
func (h *Hub) Publish(topic string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("notification marshal failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}
	data, err := json.Marshal(message{Topic: topic, Payload: raw})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.isSubscribed(topic) {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Slow client; drop the message rather than block settlement.
		}
	}
}

// Register attaches a websocket connection and starts its write pump. The
// returned client unsubscribes itself when the connection dies.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	client := &Client{
		id:     uuid.NewString(),
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, clientSendBuffer),
		topics: make(map[string]struct{}),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("notification client connected",
		zap.String("client_id", client.id),
		zap.Int("total", total),
	)

	go client.writePump()
	go client.readPump()
	return client
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("notification client disconnected",
		zap.String("client_id", client.id),
		zap.Int("total", total),
	)
}

// Client is one websocket subscriber with its own topic set.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	topicsMu sync.RWMutex
	topics   map[string]struct{}
}

func (c *Client) Subscribe(topic string) {
	c.topicsMu.Lock()
	defer c.topicsMu.Unlock()

	c.topics[topic] = struct{}{}
}

func (c *Client) Unsubscribe(topic string) {
	c.topicsMu.Lock()
	defer c.topicsMu.Unlock()

	delete(c.topics, topic)
}

func (c *Client) isSubscribed(topic string) bool {
	c.topicsMu.RLock()
	defer c.topicsMu.RUnlock()

	_, ok := c.topics[topic]
	return ok
}

type subscribeRequest struct {
	Action string `json:"action"` // subscribe | unsubscribe
	Topic  string `json:"topic"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var req subscribeRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			continue
		}
		switch req.Action {
		case "subscribe":
			c.Subscribe(req.Topic)
		case "unsubscribe":
			c.Unsubscribe(req.Topic)
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
