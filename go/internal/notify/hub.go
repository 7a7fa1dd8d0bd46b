package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/friendlies/go/internal/models"
)

// HubConfig holds configuration for notification websocket connections
type HubConfig struct {
	WriteTimeout    time.Duration            `yaml:"write_timeout"`
	ReadTimeout     time.Duration            `yaml:"read_timeout"`
	PingInterval    time.Duration            `yaml:"ping_interval"`
	MaxMessageSize  int64                    `yaml:"max_message_size"`
	ReadBufferSize  int                      `yaml:"read_buffer_size"`
	WriteBufferSize int                      `yaml:"write_buffer_size"`
	SendBuffer      int                      `yaml:"send_buffer"`
	CheckOrigin     func(*http.Request) bool `yaml:"-"`
}

func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      64,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// Hub pushes events over websockets to the connected recipient teams.
// A team may hold several connections; each receives every event addressed to the team.
type Hub struct {
	mu    sync.RWMutex
	teams map[uuid.UUID]map[*connection]struct{}

	upgrader websocket.Upgrader
	config   HubConfig
}

// connection is one websocket held open by a team
type connection struct {
	id          string
	teamID      uuid.UUID
	conn        *websocket.Conn
	send        chan []byte
	hub         *Hub
	connectedAt time.Time

	mu     sync.Mutex
	closed bool
}

// enqueue hands data to the write pump without blocking. It reports false when the
// buffer is full; a closed connection silently drops data.
func (c *connection) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close stops the write pump; it reports whether this call did the closing
func (c *connection) close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.closed = true
	close(c.send)
	return true
}

func NewHub(config HubConfig) *Hub {
	if config.CheckOrigin == nil {
		config.CheckOrigin = DefaultHubConfig().CheckOrigin
	}
	return &Hub{
		teams: make(map[uuid.UUID]map[*connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
}

// Notify queues the event on every connection of every recipient. A connection whose
// buffer is full is dropped rather than blocking the caller.
func (h *Hub) Notify(ctx context.Context, event models.MatchEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var targets []*connection
	h.mu.RLock()
	for _, teamID := range event.Recipients {
		for c := range h.teams[teamID] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(data) {
			log.Warn().
				Str("connection_id", c.id).
				Str("team_id", c.teamID.String()).
				Msg("connection send buffer full, closing connection")
			h.unregister(c)
		}
	}

	log.Debug().
		Str("event_kind", string(event.Kind)).
		Str("request_id", event.Request.ID.String()).
		Int("connections", len(targets)).
		Msg("event pushed to websockets")
	return nil
}

// ConnectionCount returns the number of open connections for teamID
func (h *Hub) ConnectionCount(teamID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.teams[teamID])
}

// ServeHTTP upgrades a request carrying a team_id query parameter to a notification stream
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	teamIDStr := r.URL.Query().Get("team_id")
	if teamIDStr == "" {
		http.Error(w, "team_id is required", http.StatusBadRequest)
		return
	}
	teamID, err := uuid.Parse(teamIDStr)
	if err != nil {
		http.Error(w, "invalid team_id format", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Error().Err(err).Str("team_id", teamID.String()).Msg("failed to upgrade websocket connection")
		return
	}

	c := &connection{
		id:          uuid.New().String(),
		teamID:      teamID,
		conn:        conn,
		send:        make(chan []byte, h.config.SendBuffer),
		hub:         h,
		connectedAt: time.Now(),
	}
	h.register(c)

	go c.writePump()
	go c.readPump()

	log.Info().
		Str("connection_id", c.id).
		Str("team_id", teamID.String()).
		Msg("websocket connection established")
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.teams[c.teamID] == nil {
		h.teams[c.teamID] = make(map[*connection]struct{})
	}
	h.teams[c.teamID][c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	if conns, ok := h.teams[c.teamID]; ok {
		if _, ok := conns[c]; ok {
			delete(conns, c)
			if len(conns) == 0 {
				delete(h.teams, c.teamID)
			}
		}
	}
	h.mu.Unlock()

	if c.close() {
		log.Info().
			Str("connection_id", c.id).
			Str("team_id", c.teamID.String()).
			Dur("connected_for", time.Since(c.connectedAt)).
			Msg("websocket connection closed")
	}
}

// writePump handles sending messages to the websocket connection
func (c *connection) writePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.hub.unregister(c)
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", c.id).Msg("failed to write message to websocket")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so pongs and close frames are processed
func (c *connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.id).Msg("unexpected websocket close error")
			}
			return
		}
	}
}
