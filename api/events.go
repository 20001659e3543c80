package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"MediaVault/db"

	"github.com/gorilla/websocket"
)

// Feed pushes newly captured messages to connected dashboard sockets.
type Feed struct {
	upgrader  websocket.Upgrader
	mu        sync.RWMutex
	clients   map[*websocket.Conn]bool
	broadcast chan feedEvent
}

// NewFeed accepts sockets whose Origin is in allowedOrigins. Requests
// without an Origin header come from non-browser clients and are allowed.
func NewFeed(allowedOrigins []string) *Feed {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Feed{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan feedEvent, feedBufferSize),
	}
}

// Publish queues a capture notification. When the queue is full the event
// is dropped rather than blocking the capture path.
func (f *Feed) Publish(message db.CapturedMessage) {
	select {
	case f.broadcast <- feedEvent{Type: feedEventCapture, Message: message}:
	default:
		logger.Warn("Live feed queue full, dropping event", "message", message.ExternalMessageID)
	}
}

// Run delivers queued events until ctx is done, then closes every socket.
func (f *Feed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			f.closeAll()
			return
		case event := <-f.broadcast:
			f.send(event)
		}
	}
}

func (f *Feed) send(event feedEvent) {
	f.mu.RLock()
	snapshot := make([]*websocket.Conn, 0, len(f.clients))
	for c := range f.clients {
		snapshot = append(snapshot, c)
	}
	f.mu.RUnlock()

	for _, c := range snapshot {
		c.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := c.WriteJSON(event); err != nil {
			f.remove(c)
		}
	}
}

func (f *Feed) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "err", err)
		return
	}

	f.mu.Lock()
	f.clients[conn] = true
	total := len(f.clients)
	f.mu.Unlock()
	logger.Debug("Live feed client connected", "clients", total)

	// Reads only detect the close; clients send nothing meaningful.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.remove(conn)
			return
		}
	}
}

// Clients reports the number of connected sockets.
func (f *Feed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

func (f *Feed) remove(c *websocket.Conn) {
	f.mu.Lock()
	_, ok := f.clients[c]
	delete(f.clients, c)
	remaining := len(f.clients)
	f.mu.Unlock()

	if ok {
		c.Close()
		logger.Debug("Live feed client disconnected", "clients", remaining)
	}
}

func (f *Feed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		c.Close()
		delete(f.clients, c)
	}
}
