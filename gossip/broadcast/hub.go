package broadcast

import (
	"sync"
	"time"

	"gossipserver/gossip"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingPeriod   = 10 * time.Second
	readDeadline = 60 * time.Second
	writeWait    = 5 * time.Second
	sendBuffer   = 8
)

// Message is the frame pushed to watchers.
type Message struct {
	Type      string               `json:"type"`
	SessionID string               `json:"sessionId"`
	Snapshot  gossip.RoundSnapshot `json:"snapshot"`
}

// Watcher is one websocket connection following a session.
type Watcher struct {
	sessionID string
	conn      *websocket.Conn
	send      chan Message
}

// Hub fans snapshots out to the websocket connections watching a session.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]map[*Watcher]bool
	logger   *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		watchers: make(map[string]map[*Watcher]bool),
		logger:   logger,
	}
}

// Publish queues the snapshot for every watcher of the session. Slow
// watchers miss frames rather than block the game.
func (h *Hub) Publish(sessionID string, snap gossip.RoundSnapshot) {
	msg := Message{Type: "gameState", SessionID: sessionID, Snapshot: snap}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for w := range h.watchers[sessionID] {
		select {
		case w.send <- msg:
		default:
			h.logger.Warn("Dropping snapshot for slow watcher", zap.String("sessionID", sessionID))
		}
	}
}

// WatcherCount returns the number of connections watching a session.
func (h *Hub) WatcherCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[sessionID])
}

// Attach registers conn as a watcher of the session and queues initial as
// its first frame. Snapshots published after Attach returns follow it.
func (h *Hub) Attach(conn *websocket.Conn, sessionID string, initial gossip.RoundSnapshot) *Watcher {
	w := &Watcher{sessionID: sessionID, conn: conn, send: make(chan Message, sendBuffer)}
	w.send <- Message{Type: "gameState", SessionID: sessionID, Snapshot: initial}
	h.register(sessionID, w)
	return w
}

// Serve writes queued frames to the watcher until the connection goes away,
// then unregisters and closes it.
func (h *Hub) Serve(w *Watcher) {
	conn, sessionID := w.conn, w.sessionID
	defer func() {
		h.unregister(sessionID, w)
		conn.Close()
		h.logger.Info("Watcher removed", zap.String("sessionID", sessionID))
	}()

	// The reader only exists to process pongs and notice disconnects.
	done := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg := <-w.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Error("Failed to broadcast game state", zap.String("sessionID", sessionID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.logger.Error("Error sending ping", zap.Error(err))
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Hub) register(sessionID string, w *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[sessionID] == nil {
		h.watchers[sessionID] = make(map[*Watcher]bool)
	}
	h.watchers[sessionID][w] = true
}

func (h *Hub) unregister(sessionID string, w *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.watchers[sessionID], w)
	if len(h.watchers[sessionID]) == 0 {
		delete(h.watchers, sessionID)
	}
}
