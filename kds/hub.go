package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pos-app/metrics"
	"github.com/yeremiapane/pos-app/utils"
)

// Event types
const (
	EventOrderUpdate   = "order_update"
	EventTableUpdate   = "table_update"
	EventPaymentUpdate = "payment_update"
	EventSessionUpdate = "session_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

const (
	// DefaultWriteWait bounds a single websocket write.
	DefaultWriteWait = 10 * time.Second
	publishQueueSize = 64
)

// Hub fans realtime messages out to every connected client, keyed by the
// role the client connected with.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
	queue   chan Message

	// WriteWait is the deadline for each write. A client that cannot take a
	// message within it is dropped.
	WriteWait time.Duration
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]string),
		queue:     make(chan Message, publishQueueSize),
		WriteWait: DefaultWriteWait,
	}
}

// Register adds a connection under role.
func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
	metrics.RealtimeClients.Inc()
}

// Unregister removes and closes a connection. Unknown connections are ignored.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	metrics.RealtimeClients.Dec()
	conn.Close()
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast sends msg to every connected client. Connections that fail to
// receive it are dropped. A nil hub discards msg.
func (h *Hub) Broadcast(msg Message) {
	if h == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("kds: marshal message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, role := range h.clients {
		err := conn.SetWriteDeadline(time.Now().Add(h.writeWait()))
		if err == nil {
			err = conn.WriteMessage(websocket.TextMessage, data)
		}
		if err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{"role": role, "event": msg.Event}).
				WithError(err).Error("kds: dropping client")
			delete(h.clients, conn)
			metrics.RealtimeClients.Dec()
			conn.Close()
		}
	}
	utils.InfoLogger.WithFields(logrus.Fields{"event": msg.Event, "clients": len(h.clients)}).Debug("kds: broadcast")
}

// Publish queues msg for the Run loop and never blocks. When the queue is full
// msg is discarded. A nil hub discards msg.
func (h *Hub) Publish(msg Message) {
	if h == nil {
		return
	}
	select {
	case h.queue <- msg:
	default:
		metrics.RealtimeDroppedTotal.Inc()
		utils.ErrorLogger.WithField("event", msg.Event).Error("kds: publish queue full, message dropped")
	}
}

// Run broadcasts published messages until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.queue:
			h.Broadcast(msg)
		}
	}
}

func (h *Hub) writeWait() time.Duration {
	if h.WriteWait <= 0 {
		return DefaultWriteWait
	}
	return h.WriteWait
}
