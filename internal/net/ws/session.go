// Package ws implements the websocket transport for the Session Gateway:
// upgrade, per-connection read loop, and the write-mutex-guarded Conn
// adapter the gateway pushes events through.
//
// Grounded on the teacher's internal/net/ws session loop (upgrade once per
// connection, one read goroutine per connection, a single writer mutex
// guarding the underlying *websocket.Conn) generalized here from a
// continuous movement-command stream to a turn-based intent/event
// exchange.
package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"duelserver/internal/gateway"
	"duelserver/internal/net/proto"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Conn adapts a *websocket.Conn to gateway.Conn, serializing writes behind
// a mutex since gorilla/websocket connections are not safe for concurrent
// writers.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

var _ gateway.Conn = (*Conn)(nil)

// Send writes one frame. Safe for concurrent use.
func (c *Conn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close closes the underlying connection. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.Close()
}

// Config bundles the inputs needed to serve one websocket session.
type Config struct {
	Gateway *gateway.Gateway
	Logger  *log.Logger
}

// Handler upgrades HTTP connections to websockets and drives each
// session's read loop against a Gateway.
type Handler struct {
	cfg Config
}

// NewHandler constructs the /ws HTTP handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Handler{cfg: cfg}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Printf("ws upgrade failed: %v", err)
		return
	}
	conn := &Conn{ws: wsConn}
	presented := r.URL.Query().Get("userId")
	h.serve(conn, presented)
}

func (h *Handler) serve(conn *Conn, presentedUser string) {
	session := h.cfg.Gateway.Connect(conn, presentedUser)
	defer h.cfg.Gateway.Disconnect(session, conn)

	data, err := proto.Encode("identity", struct {
		UserID string `json:"userId"`
	}{UserID: string(session.User)})
	if err != nil {
		h.cfg.Logger.Printf("ws: failed to encode identity frame: %v", err)
		conn.Close()
		return
	}
	if err := conn.Send(data); err != nil {
		return
	}

	conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		conn.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	stop := make(chan struct{})
	go h.pingLoop(conn, stop)
	defer close(stop)

	for {
		_, payload, err := conn.ws.ReadMessage()
		if err != nil {
			return
		}
		h.cfg.Gateway.Dispatch(session, conn, payload)
	}
}

func (h *Handler) pingLoop(conn *Conn, stop chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			conn.mu.Lock()
			conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.ws.WriteMessage(websocket.PingMessage, nil)
			conn.mu.Unlock()
			if err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}
