package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/robocomp/gesturecomp/internal/types"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// resultMessage is one entry of the live results feed.
type resultMessage struct {
	ID           string  `json:"id"`
	GestureIndex int     `json:"gestureIndex"`
	GestureProb  float64 `json:"gestureProb"`
	NumFrames    int     `json:"numFrames"`
	Timestamp    int64   `json:"timestamp"`
}

// ResultsHandler broadcasts served recognitions via WebSocket.
type ResultsHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	logger  *logrus.Entry
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(logger *logrus.Entry) *ResultsHandler {
	return &ResultsHandler{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish sends rec to every connected client. Clients that cannot keep up
// are dropped.
func (h *ResultsHandler) Publish(rec types.Recognition) {
	msg, err := json.Marshal(resultMessage{
		ID:           rec.ID,
		GestureIndex: rec.GestureIndex,
		GestureProb:  rec.GestureProb,
		NumFrames:    rec.NumFrames,
		Timestamp:    rec.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return
	}

	// Writers are serialized; gorilla connections allow one writer at a time
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.WithError(err).Debug("dropping results client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Clients returns the number of connected clients.
func (h *ResultsHandler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *ResultsHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		delete(h.clients, conn)
	}
}
