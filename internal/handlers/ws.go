package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chepyr/task-collab-api/internal/apperr"
	"github.com/chepyr/task-collab-api/internal/models"
)

// EventHub pushes task change events to the owning account's open
// WebSocket connections. Connections are keyed by account, so an event
// never reaches anyone but the task's owner.
type EventHub struct {
	connections map[uuid.UUID]map[*websocket.Conn]bool
	mutex       sync.Mutex
}

func NewEventHub() *EventHub {
	return &EventHub{connections: make(map[uuid.UUID]map[*websocket.Conn]bool)}
}

func (hub *EventHub) register(ownerID uuid.UUID, conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if hub.connections[ownerID] == nil {
		hub.connections[ownerID] = make(map[*websocket.Conn]bool)
	}
	hub.connections[ownerID][conn] = true
}

func (hub *EventHub) unregister(ownerID uuid.UUID, conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.connections[ownerID], conn)
}

func (hub *EventHub) Broadcast(ownerID uuid.UUID, event string, task *models.Task) {
	if hub == nil {
		return
	}
	hub.send(ownerID, map[string]any{
		"event":   event,
		"task_id": task.ID,
		"title":   task.Title,
		"status":  string(task.Status),
	})
}

func (hub *EventHub) BroadcastDeleted(ownerID uuid.UUID, taskID uuid.UUID) {
	if hub == nil {
		return
	}
	hub.send(ownerID, map[string]any{
		"event":   "task_deleted",
		"task_id": taskID,
	})
}

func (hub *EventHub) send(ownerID uuid.UUID, payload map[string]any) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	conns, exists := hub.connections[ownerID]
	if !exists {
		return
	}

	message, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal task event: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("Failed to send WebSocket message: %v", err)
			delete(conns, conn)
			conn.Close()
		}
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	caller := CallerFromContext(r.Context())
	if caller == nil {
		sendError(w, apperr.ErrUnauthenticated)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // origins are filtered by the CORS middleware
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.Hub.register(caller.ID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.Hub.unregister(caller.ID, conn)
			conn.Close()
			return
		}
	}
}
