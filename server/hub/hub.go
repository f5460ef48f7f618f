package hub

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/store"
	"github.com/Carmen-Shannon/oxy-viewer/ui"
	"github.com/gorilla/websocket"
)

// Message types sent to clients.
const (
	TypeSnapshot = "snapshot"
	TypeError    = "error"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
	readLimit  = 64 << 20
)

// Message is the envelope of every frame sent to a client.
type Message struct {
	Type     string           `json:"type"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
	View     *ui.View         `json:"view,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// client is one websocket connection. Only writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// hub implements the Hub interface.
type hub struct {
	mu      *sync.Mutex
	clients map[*client]bool

	engine   engine.Engine
	controls ui.Controls
	upgrader websocket.Upgrader
	origins  map[string]bool

	tickDivisor   uint64
	ticks         atomic.Uint64
	actionTimeout time.Duration
	unsubscribe   func()
	closed        atomic.Bool
	connections   *sync.WaitGroup
}

// Hub is the live channel between the engine and browser clients.
//
// A client receives a snapshot when it connects, after every store change and every Nth engine
// tick while an animation plays. Clients send {"action": name, "value": json} frames which are
// dispatched through the ui controls; a failed action is answered with {"type":"error"} to the
// sender only.
type Hub interface {
	http.Handler

	// Start subscribes the hub to store changes.
	Start()

	// OnTick is the engine tick callback; it broadcasts every Nth tick while playing.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	OnTick(dt float32)

	// Broadcast sends the current snapshot to every client.
	Broadcast()

	// Clients returns the number of connected clients.
	Clients() int

	// Close unsubscribes from the store and disconnects every client.
	Close()
}

var _ Hub = &hub{}

// NewHub creates a Hub for an engine.
//
// Parameters:
//   - e: the engine whose snapshots are broadcast
//   - controls: dispatches incoming actions and renders the control surfaces
//   - options: a variadic list of HubBuilderOption functions to configure the Hub
//
// Returns:
//   - Hub: the hub; call Start before serving
func NewHub(e engine.Engine, controls ui.Controls, options ...HubBuilderOption) Hub {
	h := &hub{
		mu:            &sync.Mutex{},
		clients:       make(map[*client]bool),
		engine:        e,
		controls:      controls,
		origins:       map[string]bool{},
		tickDivisor:   6,
		actionTimeout: 60 * time.Second,
		connections:   &sync.WaitGroup{},
	}
	for _, opt := range options {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts same-host requests, requests without an Origin header and the configured
// origins.
func (h *hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.origins[origin] {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

func (h *hub) Start() {
	h.unsubscribe = h.engine.Store().Subscribe(func(_, _ store.State) {
		h.Broadcast()
	})
}

func (h *hub) OnTick(float32) {
	n := h.ticks.Add(1)
	if n%h.tickDivisor != 0 {
		return
	}
	if h.Clients() > 0 && h.engine.Store().State().Playing {
		h.Broadcast()
	}
}

func (h *hub) snapshot() []byte {
	snap := h.engine.Snapshot()
	view := h.controls.Render(snap.Loading)
	data, err := json.Marshal(Message{Type: TypeSnapshot, Snapshot: &snap, View: &view})
	if err != nil {
		log.Printf("[Hub] failed to encode snapshot: %v", err)
		return nil
	}
	return data
}

func (h *hub) Broadcast() {
	if h.Clients() == 0 {
		return
	}
	data := h.snapshot()
	if data == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// send buffer full
			log.Printf("[Hub] dropping slow client %s", c.conn.RemoteAddr())
			delete(h.clients, c)
			c.close()
		}
	}
}

func (h *hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.closed.Load() {
		http.Error(w, "hub closed", http.StatusServiceUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub] websocket upgrade error: %v", err)
		return
	}
	conn.SetReadLimit(readLimit)

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if data := h.snapshot(); data != nil {
		c.send <- data
	}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	log.Printf("[Hub] client %s connected", conn.RemoteAddr())

	h.connections.Add(2)
	go h.writePump(c)
	go h.readPump(c)
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// readPump dispatches incoming actions until the connection fails.
func (h *hub) readPump(c *client) {
	defer h.connections.Done()
	defer func() {
		h.unregister(c)
		c.conn.Close()
		log.Printf("[Hub] client %s disconnected", c.conn.RemoteAddr())
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Hub] read error: %v", err)
			}
			return
		}

		var a ui.Action
		if err := json.Unmarshal(data, &a); err != nil {
			h.sendError(c, "malformed message: "+err.Error())
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), h.actionTimeout)
		err = h.controls.Dispatch(ctx, a)
		cancel()
		if err != nil {
			h.sendError(c, err.Error())
		}
	}
}

func (h *hub) sendError(c *client, msg string) {
	data, err := json.Marshal(Message{Type: TypeError, Error: msg})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump is the only writer of the connection.
func (h *hub) writePump(c *client) {
	defer h.connections.Done()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("[Hub] websocket write error: %v", err)
				h.unregister(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

func (h *hub) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	if h.unsubscribe != nil {
		h.unsubscribe()
	}

	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
	h.connections.Wait()
}
