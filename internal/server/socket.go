package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ministry-site/internal/view"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = pingPeriod + writeWait
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub pushes player snapshots to every connected browser and applies the
// commands they send.
type Hub struct {
	player  *view.Player
	handler *Handler
	log     *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	lastSeq uint64
	closed  bool
	wg      sync.WaitGroup

	unsubscribe func()
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// NewHub subscribes a hub to player.
func NewHub(player *view.Player, handler *Handler, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	h := &Hub{
		player:  player,
		handler: handler,
		log:     log.With("component", "socket"),
		clients: make(map[*client]struct{}),
	}
	h.unsubscribe = player.Subscribe(h.publish)
	return h
}

// ServeWS handles GET /ws/player.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	cl := &client{conn: conn, send: make(chan Event, sendBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[cl] = struct{}{}
	m := h.player.Render()
	h.lastSeq = max(h.lastSeq, m.Seq)
	cl.send <- NewSnapshotEvent(m)
	h.wg.Add(2)
	h.mu.Unlock()

	h.log.Info("client connected", "remote", conn.RemoteAddr().String())

	go func() {
		defer h.wg.Done()
		h.writeLoop(cl)
	}()
	go func() {
		defer h.wg.Done()
		h.readLoop(cl)
		h.remove(cl)
		h.log.Info("client disconnected", "remote", conn.RemoteAddr().String())
	}()
}

// readLoop applies commands until the connection fails.
func (h *Hub) readLoop(cl *client) {
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd Command
		if err := cl.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read failed", "error", err)
			}
			return
		}
		// Snapshots reach every client through the player subscription, so
		// only failures are answered directly.
		if _, err := h.handler.Handle(cmd); err != nil {
			h.deliver(cl, NewErrorEvent(err.Error()))
		}
	}
}

// writeLoop drains cl.send. It owns every write to the connection.
func (h *Hub) writeLoop(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := cl.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// publish broadcasts m unless a newer model already went out. Player
// subscribers run outside the player lock, so concurrent changes can arrive
// out of order.
func (h *Hub) publish(m view.Model) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m.Seq < h.lastSeq {
		return
	}
	h.lastSeq = m.Seq
	ev := NewSnapshotEvent(m)
	for cl := range h.clients {
		h.deliverLocked(cl, ev)
	}
}

func (h *Hub) deliver(cl *client, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deliverLocked(cl, ev)
}

// deliverLocked queues ev for cl. A client that cannot keep up is dropped.
func (h *Hub) deliverLocked(cl *client, ev Event) {
	if _, ok := h.clients[cl]; !ok {
		return
	}
	select {
	case cl.send <- ev:
	default:
		h.log.Warn("dropping slow websocket client", "remote", cl.conn.RemoteAddr().String())
		h.removeLocked(cl)
	}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(cl)
}

func (h *Hub) removeLocked(cl *client) {
	if _, ok := h.clients[cl]; !ok {
		return
	}
	delete(h.clients, cl)
	close(cl.send)
}

// Clients returns the number of connected browsers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their goroutines.
func (h *Hub) Close() {
	h.unsubscribe()

	h.mu.Lock()
	h.closed = true
	for cl := range h.clients {
		h.removeLocked(cl)
	}
	h.mu.Unlock()

	h.wg.Wait()
}
