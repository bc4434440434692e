package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"agroinnova-backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	broadcastQueue = 64
	clientQueue    = 32
)

// ClientMessage is what subscribers may send over the socket
type ClientMessage struct {
	Type   string `json:"type"`
	ZoneID int64  `json:"zoneId,omitempty"`
}

// HubMessage is what the hub writes to subscribers
type HubMessage struct {
	Type      string            `json:"type"`
	Indicator *models.Indicator `json:"indicator,omitempty"`
	ZoneID    int64             `json:"zoneId,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// IndicatorBroadcaster publishes indicator changes
type IndicatorBroadcaster interface {
	Broadcast(event models.IndicatorEvent)
}

type hubClient struct {
	id     string
	userID int64
	conn   *websocket.Conn
	send   chan HubMessage
	hub    *IndicatorHub

	mu    sync.Mutex
	zones map[int64]bool
}

// wants reports whether the client follows zoneID; no subscription means every zone
func (c *hubClient) wants(zoneID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.zones) == 0 || c.zones[zoneID]
}

// IndicatorHub fans indicator events out to websocket subscribers
type IndicatorHub struct {
	clients    map[*hubClient]bool
	register   chan *hubClient
	unregister chan *hubClient
	broadcast  chan models.IndicatorEvent
	done       chan struct{}

	mutex    sync.RWMutex
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewIndicatorHub creates a hub; call Run to start it
func NewIndicatorHub(allowedOrigins []string, log *zap.Logger) *IndicatorHub {
	if log == nil {
		log = zap.NewNop()
	}
	return &IndicatorHub{
		clients:    make(map[*hubClient]bool),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		broadcast:  make(chan models.IndicatorEvent, broadcastQueue),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
		log: log,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// Run serves register, unregister and broadcast requests until ctx is cancelled
func (h *IndicatorHub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mutex.Lock()
		for client := range h.clients {
			close(client.send)
			delete(h.clients, client)
		}
		h.mutex.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

			select {
			case client.send <- HubMessage{Type: "connected", Message: "Conectado a indicadores"}:
			default:
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()

		case event := <-h.broadcast:
			msg := HubMessage{Type: event.Type, Indicator: event.Indicator}
			h.mutex.Lock()
			for client := range h.clients {
				if event.Indicator != nil && !client.wants(event.Indicator.ZoneID) {
					continue
				}
				select {
				case client.send <- msg:
				default:
					// slow consumer
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Broadcast queues event for every subscriber; it never blocks the caller
func (h *IndicatorHub) Broadcast(event models.IndicatorEvent) {
	select {
	case h.broadcast <- event:
	case <-h.done:
	default:
		h.log.Warn("indicator broadcast dropped, queue full", zap.String("type", event.Type))
	}
}

// ClientCount returns the number of connected subscribers
func (h *IndicatorHub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and attaches the connection to the hub
func (h *IndicatorHub) ServeWS(w http.ResponseWriter, r *http.Request, userID int64) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &hubClient{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		send:   make(chan HubMessage, clientQueue),
		hub:    h,
		zones:  make(map[int64]bool),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	h.log.Debug("indicator subscriber connected", zap.String("client_id", client.id), zap.Int64("user_id", userID))
	go client.writePump()
	go client.readPump()
	return nil
}

func (c *hubClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("indicator subscriber read error", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "subscribe":
			if msg.ZoneID > 0 {
				c.mu.Lock()
				c.zones[msg.ZoneID] = true
				c.mu.Unlock()
			}
		case "unsubscribe":
			c.mu.Lock()
			delete(c.zones, msg.ZoneID)
			c.mu.Unlock()
		case "ping":
			c.hub.mutex.RLock()
			_, alive := c.hub.clients[c]
			if alive {
				select {
				case c.send <- HubMessage{Type: "pong"}:
				default:
				}
			}
			c.hub.mutex.RUnlock()
		}
	}
}

func (c *hubClient) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(message); err != nil {
			c.hub.log.Debug("indicator subscriber write error", zap.String("client_id", c.id), zap.Error(err))
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
