package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/melon-smash/internal/core"
)

const (
	// MaxFeedClients caps concurrent feed connections.
	MaxFeedClients = 500
	// MaxFeedClientsPerIP caps feed connections from one address.
	MaxFeedClientsPerIP = 10

	clientBuffer = 64
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

// Envelope is the JSON shape of every feed message.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// FeedEvent is the data of a gameplay event on the feed.
type FeedEvent struct {
	Mode    string    `json:"mode"`
	Player  string    `json:"player,omitempty"`
	Count   int       `json:"count"`
	Tier    *int      `json:"tier,omitempty"`
	Message string    `json:"message,omitempty"`
	Point   []float64 `json:"point,omitempty"`
	At      time.Time `json:"at"`
}

type feedClient struct {
	conn *websocket.Conn
	ip   string
	send chan []byte
}

// Hub fans gameplay events out to websocket spectators.
type Hub struct {
	clients    map[*feedClient]struct{}
	register   chan *feedClient
	unregister chan *feedClient
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.RWMutex

	conns    *connLimiter
	origins  []string
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewHub creates a hub. Call Run before clients connect.
func NewHub(logger *log.Logger, origins []string) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	h := &Hub{
		clients:    make(map[*feedClient]struct{}),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		conns:      newConnLimiter(MaxFeedClientsPerIP),
		origins:    origins,
		logger:     logger.WithPrefix("feed"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Run serves registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			feedClients.Set(float64(n))
			h.logger.Debug("client connected", "remote", c.ip, "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
			n := len(h.clients)
			h.mu.Unlock()
			feedClients.Set(float64(n))
			h.logger.Debug("client disconnected", "remote", c.ip, "clients", n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow reader; cut it loose.
					feedDropped.Inc()
					h.drop(c)
				}
			}
			h.mu.Unlock()
			feedMessages.Inc()
		}
	}
}

// drop removes a client. h.mu must be held.
func (h *Hub) drop(c *feedClient) {
	delete(h.clients, c)
	close(c.send)
	h.conns.release(c.ip)
}

// Broadcast queues one envelope for every client. A full queue drops it.
func (h *Hub) Broadcast(event string, data any) {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.logger.Warn("cannot encode feed message", "event", event, "error", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		feedDropped.Inc()
	}
}

// Publish forwards a gameplay event to the feed.
func (h *Hub) Publish(gameID, player string, ev core.Event) {
	if ev.Kind == core.EventNone {
		return
	}
	data := FeedEvent{
		Mode:    gameID,
		Player:  player,
		Count:   ev.Count,
		Message: ev.Message,
		At:      time.Now().UTC(),
	}
	switch ev.Kind {
	case core.EventSmash:
		data.Point = []float64{ev.X, ev.Y, ev.Z}
	case core.EventRoundEnded:
		tier := ev.Tier
		data.Tier = &tier
	}
	h.Broadcast(ev.Kind.String(), data)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || originAllowed(origin, h.origins) {
		return true
	}
	h.logger.Warn("feed connection rejected", "origin", origin)
	RecordConnectionRejected("origin")
	return false
}

// originAllowed matches exact origins and patterns ending in "*".
func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
		if prefix, ok := strings.CutSuffix(a, "*"); ok && strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

// HandleWebSocket upgrades a spectator connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := ClientIP(r)

	if h.ClientCount() >= MaxFeedClients {
		RecordConnectionRejected("feed_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.conns.acquire(ip) {
		RecordConnectionRejected("feed_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", "remote", ip, "error", err)
		h.conns.release(ip)
		return
	}

	c := &feedClient{conn: conn, ip: ip, send: make(chan []byte, clientBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		h.conns.release(ip)
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

// readPump discards client messages and notices disconnects.
func (h *Hub) readPump(c *feedClient) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	c.conn.SetReadLimit(512)
	//nolint:errcheck // Deadline errors surface on the next read
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump sends queued messages and keepalive pings.
func (h *Hub) writePump(c *feedClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			//nolint:errcheck // Deadline errors surface on the write
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				//nolint:errcheck // Best-effort close frame
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			//nolint:errcheck // Deadline errors surface on the write
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
