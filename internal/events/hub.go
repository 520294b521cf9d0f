package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 32
)

type client struct {
	agentID int64
	conn    *websocket.Conn
	send    chan []byte
}

// Hub keeps the open websocket connections per agent and pushes task events to them.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{logger: logger, clients: map[int64]map[*client]struct{}{}}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.agentID]
	if !ok {
		set = map[*client]struct{}{}
		h.clients[c.agentID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.agentID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.agentID)
	}
}

// Connected reports how many sockets an agent has open.
func (h *Hub) Connected(agentID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[agentID])
}

// Publish delivers events that name an agent to that agent's sockets. Slow
// clients whose buffer is full miss the event.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	if ev.AgentID == 0 {
		return nil
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[ev.AgentID] {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("ws send buffer full", zap.Int64("agent_id", ev.AgentID))
		}
	}
	return nil
}

// Serve runs an upgraded connection for an agent until it closes.
func (h *Hub) Serve(conn *websocket.Conn, agentID int64) {
	c := &client{agentID: agentID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	h.logger.Info("agent ws connected", zap.Int64("agent_id", agentID))

	go h.writePump(c)
	h.readPump(c)
}

// readPump only consumes control frames; agents do not send data on this feed.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		h.logger.Info("agent ws closed", zap.Int64("agent_id", c.agentID))
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// Close sends a close frame to every open socket and forgets them.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, id)
	}
}
