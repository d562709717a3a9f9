package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/logger"
)

// Stream event types
const (
	EventHello        = "hello"
	EventRunStarted   = "run_started"
	EventRecord       = "record"
	EventRunCompleted = "run_completed"
	EventRunFailed    = "run_failed"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is one websocket message
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// StreamHub broadcasts screening progress to websocket clients
// ⭐ SSOT: 실시간 스크리닝 스트림은 여기서만
type StreamHub struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]*sync.Mutex // conn → write lock
	instanceID string
	logger     *logger.Logger
}

// NewStreamHub creates an empty hub
func NewStreamHub(log *logger.Logger) *StreamHub {
	return &StreamHub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// OnRecord is wired into selection.Screener.OnRecord
func (h *StreamHub) OnRecord(rec contracts.ScreeningRecord) {
	h.Publish(EventRecord, rec)
}

// Clients returns the number of connected clients
func (h *StreamHub) Clients() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends an event to every client; failed clients are dropped
func (h *StreamHub) Publish(eventType string, payload interface{}) {
	if h == nil {
		return
	}

	data, err := json.Marshal(Event{Type: eventType, Timestamp: time.Now(), Payload: payload})
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal stream event")
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	locks := make([]*sync.Mutex, 0, len(h.clients))
	for conn, lock := range h.clients {
		conns = append(conns, conn)
		locks = append(locks, lock)
	}
	h.mu.RUnlock()

	for i, conn := range conns {
		if err := h.write(conn, locks[i], data); err != nil {
			h.logger.WithError(err).Debug("Dropping stream client")
			h.remove(conn)
		}
	}
}

// ServeWS upgrades the connection and keeps it registered until it closes
// GET /ws/screening
func (h *StreamHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	lock := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = lock
	h.mu.Unlock()

	hello, _ := json.Marshal(Event{
		Type:      EventHello,
		Timestamp: time.Now(),
		Payload:   map[string]string{"server_instance_id": h.instanceID},
	})
	if err := h.write(conn, lock, hello); err != nil {
		h.remove(conn)
		return
	}

	// 클라이언트 메시지는 무시, 연결 종료 감지용
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *StreamHub) write(conn *websocket.Conn, lock *sync.Mutex, data []byte) error {
	lock.Lock()
	defer lock.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *StreamHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}
