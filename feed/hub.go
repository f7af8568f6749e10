package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Dosada05/fidel-league/models"
)

const (
	// StandingsRoom is the room every standings subscriber joins.
	StandingsRoom = "standings"

	MessageStandingsUpdated = "STANDINGS_UPDATED"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

func StandingsMessage(teams []models.Team) Message {
	if teams == nil {
		teams = []models.Team{}
	}
	return Message{Type: MessageStandingsUpdated, Payload: teams, RoomID: StandingsRoom}
}

// Hub tracks websocket clients by room and fans messages out to them.
// Register and Unregister are handled by Run; broadcasts go straight to the
// client buffers and skip clients that cannot keep up.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run serves registrations until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			n := len(h.rooms[client.Room])
			h.mu.Unlock()
			h.logger.Debug("feed client registered", slog.String("client_id", client.ID), slog.String("room", client.Room), slog.Int("clients", n))

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			h.mu.Lock()
			for room, clients := range h.rooms {
				for client := range clients {
					client.close()
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			h.logger.Info("feed hub stopped")
			return nil
		}
	}
}

func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[client.Room]
	if !ok || !clients[client] {
		return
	}
	client.close()
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.rooms, client.Room)
	}
	h.logger.Debug("feed client unregistered", slog.String("client_id", client.ID), slog.String("room", client.Room), slog.Int("clients", len(clients)))
}

// ClientCount reports how many clients are registered in room.
func (h *Hub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastToRoom sends message to every client in roomID.
func (h *Hub) BroadcastToRoom(roomID string, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal feed message", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		if !client.enqueue(data) {
			h.logger.Warn("feed client too slow, message dropped", slog.String("client_id", client.ID), slog.String("room", roomID))
		}
	}
}

// PublishStandings broadcasts the current standings to the standings room.
func (h *Hub) PublishStandings(teams []models.Team) {
	h.BroadcastToRoom(StandingsRoom, StandingsMessage(teams))
}

type Client struct {
	ID   string
	Room string

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	closed bool
	mu     sync.Mutex
}

func NewClient(hub *Hub, conn *websocket.Conn, room string) *Client {
	return &Client{
		ID:   uuid.NewString(),
		Room: room,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Send queues a message for this client only.
func (c *Client) Send(message Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	c.enqueue(data)
	return nil
}

func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

// ReadPump drains the connection so pongs and close frames are processed.
// Subscribers have nothing to say; anything they send is discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("feed client read failed", slog.String("client_id", c.ID), slog.Any("error", err))
			}
			return
		}
	}
}

// WritePump writes queued messages, one frame each, and pings the peer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Warn("feed client write failed", slog.String("client_id", c.ID), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
