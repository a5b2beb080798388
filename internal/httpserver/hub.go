// internal/httpserver/hub.go
//
// Live leaderboard over WebSocket (/ws/leaderboard).
//
// Each subscriber gets the current top list on connect and a fresh one after
// every score change. Subscribers whose send buffer is full are dropped.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsSendBuffer = 8
)

// LeaderboardMessage is pushed to every subscriber after scores change.
type LeaderboardMessage struct {
	Type        string `json:"type"`
	Leaderboard any    `json:"leaderboard"`
}

// Hub fans leaderboard snapshots out to WebSocket subscribers.
type Hub struct {
	snapshot func(context.Context) (any, error)
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*hubClient]struct{}
	closed  bool
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub that renders snapshots with fn.
func NewHub(fn func(context.Context) (any, error)) *Hub {
	return &Hub{
		snapshot: fn,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// Len is the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams leaderboard updates until the peer leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	c := &hubClient{conn: conn, send: make(chan []byte, wsSendBuffer)}

	if msg, err := h.render(r.Context()); err == nil {
		c.send <- msg
	} else {
		log.Warn().Err(err).Msg("initial leaderboard snapshot")
	}

	if !h.add(c) {
		_ = conn.Close()
		return
	}
	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) add(c *hubClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump discards inbound frames; it exists to notice disconnects and pongs.
func (h *Hub) readPump(c *hubClient) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *hubClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) render(ctx context.Context) ([]byte, error) {
	lb, err := h.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(LeaderboardMessage{Type: "leaderboard", Leaderboard: lb})
}

// Refresh renders a fresh snapshot and broadcasts it. Failures are logged only.
func (h *Hub) Refresh(ctx context.Context) {
	if h.Len() == 0 {
		return
	}
	msg, err := h.render(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("leaderboard snapshot")
		return
	}
	h.Broadcast(msg)
}

// Broadcast queues msg for every subscriber; slow subscribers are dropped.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
