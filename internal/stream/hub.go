// Package stream pushes body moves to remote observers over websockets.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/simulation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	DefaultQueueSize = 256
)

// Source is what the hub needs from a world.
type Source interface {
	Subscribe() *simulation.Subscription
	AllBodies() []*simulation.Body
	Width() int
	Height() int
}

// Envelope is the frame sent to clients. Type is "snapshot" or "move".
type Envelope struct {
	Type    string `json:"t"`
	Payload any    `json:"p,omitempty"`
}

type Move struct {
	ID  int     `json:"id"`
	Seq uint64  `json:"seq,omitempty"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	VX  float64 `json:"vx"`
	VY  float64 `json:"vy"`
	R   float64 `json:"r,omitempty"`
}

type Snapshot struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bodies []Move `json:"bodies"`
}

// Hub fans world events out to every connected client. A client that cannot
// keep up is disconnected; the hub never waits on one.
type Hub struct {
	source    Source
	logger    golog.Logger
	upgrader  websocket.Upgrader
	queueSize int

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func NewHub(source Source, logger golog.Logger, queueSize int) *Hub {
	if logger == nil {
		logger = golog.DefaultLogger
	}
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		source:    source,
		logger:    logger,
		queueSize: queueSize,
		clients:   make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler serves the websocket endpoint.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(h.serveWS)
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("websocket upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	snapshot, err := json.Marshal(Envelope{Type: "snapshot", Payload: h.snapshot()})
	if err != nil {
		h.logger.Errorf("failed to marshal snapshot: %v", err)
		conn.Close()
		return
	}

	c := newClient(conn, h.queueSize)
	c.send <- snapshot
	if !h.register(c) {
		message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
		conn.Close()
		return
	}
	h.logger.Infof("observer %s connected (%d total)", r.RemoteAddr, h.Clients())

	go c.writePump()
	c.readPump()

	h.unregister(c)
	h.logger.Infof("observer %s disconnected", r.RemoteAddr)
}

func (h *Hub) snapshot() Snapshot {
	bodies := h.source.AllBodies()
	s := Snapshot{
		Width:  h.source.Width(),
		Height: h.source.Height(),
		Bodies: make([]Move, 0, len(bodies)),
	}
	for _, b := range bodies {
		pos, vel := b.Position(), b.Velocity()
		s.Bodies = append(s.Bodies, Move{ID: b.ID(), X: pos.X, Y: pos.Y, VX: vel.X, VY: vel.Y, R: b.Radius()})
	}
	return s
}

// Run forwards world events until ctx is done or the world feed closes.
func (h *Hub) Run(ctx context.Context) error {
	sub := h.source.Subscribe()
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.C():
			if !ok {
				return nil
			}
			data, err := json.Marshal(Envelope{Type: "move", Payload: Move{
				ID:  ev.BodyID,
				Seq: ev.Seq,
				X:   ev.Position.X,
				Y:   ev.Position.Y,
				VX:  ev.Velocity.X,
				VY:  ev.Velocity.Y,
			}})
			if err != nil {
				h.logger.Errorf("failed to marshal move for body %d: %v", ev.BodyID, err)
				continue
			}
			h.broadcast(data)
		}
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			c.close()
			h.logger.Warnf("dropping slow observer, send queue of %d full", cap(c.send))
		}
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// Clients returns the number of connected observers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every observer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.close()
	}
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, queueSize int) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, queueSize),
		done: make(chan struct{}),
	}
}

// close is safe from any goroutine; the write pump sends the close frame.
func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
			return
		}
	}
}

// readPump discards client frames; it only keeps the pong deadline alive and
// notices when the peer goes away.
func (c *client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		select {
		case <-c.done:
			return
		default:
		}
	}
}
