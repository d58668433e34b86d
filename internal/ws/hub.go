// internal/ws/hub.go
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/barterhub/barterhub-backend/internal/models"
)

// EventType identifies a websocket event.
type EventType string

const (
	EventNewMessage   EventType = "new_message"
	EventTyping       EventType = "typing"
	EventStopTyping   EventType = "stop_typing"
	EventConnected    EventType = "connected"
	EventDisconnected EventType = "disconnected"
)

// Event is the wire envelope for every websocket push.
type Event struct {
	Type      EventType       `json:"type"`
	UserID    string          `json:"user_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Hub tracks all live websocket connections, grouped per user. A user may
// have several connections open (multiple devices); events fan out to all of
// them. The hub also implements services.Notifier so the auto-reply simulator
// can push typing indicators and new-message events.
type Hub struct {
	clients      map[uuid.UUID]*Client
	clientsMutex sync.RWMutex
	userClients  map[string]map[uuid.UUID]bool // userID -> set of client IDs
	userMutex    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[string]map[uuid.UUID]bool),
	}
}

func (h *Hub) addClient(client *Client) {
	h.clientsMutex.Lock()
	h.clients[client.ID] = client
	h.clientsMutex.Unlock()

	h.userMutex.Lock()
	if _, exists := h.userClients[client.UserID]; !exists {
		h.userClients[client.UserID] = make(map[uuid.UUID]bool)
	}
	h.userClients[client.UserID][client.ID] = true
	h.userMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"client_id": client.ID,
		"user_id":   client.UserID,
	}).Info("WebSocket client connected")
}

func (h *Hub) removeClient(clientID uuid.UUID) {
	h.clientsMutex.RLock()
	client, exists := h.clients[clientID]
	h.clientsMutex.RUnlock()

	if !exists {
		return
	}

	userID := client.UserID

	h.userMutex.Lock()
	if clients, ok := h.userClients[userID]; ok {
		delete(clients, clientID)
		if len(clients) == 0 {
			delete(h.userClients, userID)
		}
	}
	h.userMutex.Unlock()

	h.clientsMutex.Lock()
	delete(h.clients, clientID)
	h.clientsMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"client_id": clientID,
		"user_id":   userID,
	}).Info("WebSocket client disconnected")
}

// SendToUser delivers an event to every live connection of one user. Users
// without an open connection simply miss the push; the conversation store
// remains the source of truth.
func (h *Hub) SendToUser(userID string, event Event) {
	if userID == "" {
		return
	}

	h.userMutex.RLock()
	clientIDs, exists := h.userClients[userID]
	h.userMutex.RUnlock()

	if !exists || len(clientIDs) == 0 {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal websocket event")
		return
	}

	for clientID := range clientIDs {
		h.clientsMutex.RLock()
		client, exists := h.clients[clientID]
		h.clientsMutex.RUnlock()

		if !exists {
			continue
		}

		select {
		case client.send <- eventJSON:
		default:
			// Send buffer full, the client is too slow. Drop the connection.
			logrus.WithField("client_id", client.ID).Warn("Send channel full, closing websocket")
			client.conn.Close()
			h.removeClient(client.ID)
		}
	}
}

// Typing pushes a typing/stop_typing indicator to one user.
func (h *Hub) Typing(to, from string, typing bool) {
	eventType := EventTyping
	if !typing {
		eventType = EventStopTyping
	}

	h.SendToUser(to, Event{
		Type:      eventType,
		UserID:    from,
		Timestamp: time.Now(),
	})
}

// NewMessage pushes a freshly appended message to its receiver.
func (h *Hub) NewMessage(msg models.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal message payload")
		return
	}

	h.SendToUser(msg.ReceiverID.String(), Event{
		Type:      EventNewMessage,
		UserID:    msg.SenderID.String(),
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// Shutdown closes every live connection.
func (h *Hub) Shutdown() {
	h.clientsMutex.Lock()
	for _, client := range h.clients {
		client.conn.Close()
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.clientsMutex.Unlock()

	h.userMutex.Lock()
	h.userClients = make(map[string]map[uuid.UUID]bool)
	h.userMutex.Unlock()
}
