// internal/ws/client.go
package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Pong deadline from the client
	pongWait = 60 * time.Second

	// Ping interval, must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 512 * 1024 // 512KB

	// Outbound message buffer size
	writeBufferSize = 256
)

// Client is one websocket connection belonging to an authenticated user.
type Client struct {
	ID     uuid.UUID
	UserID string

	conn      *websocket.Conn
	send      chan []byte
	hub       *Hub
	closeChan chan struct{}
}

func NewClient(userID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:        uuid.New(),
		UserID:    userID,
		conn:      conn,
		send:      make(chan []byte, writeBufferSize),
		hub:       hub,
		closeChan: make(chan struct{}),
	}
}

// Start registers the client and runs the read/write pumps.
func (c *Client) Start() {
	c.hub.addClient(c)

	go c.readPump()
	go c.writePump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c.ID)
		c.conn.Close()
		close(c.closeChan)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Warn("Unexpected websocket close")
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithError(err).Warn("Error writing websocket message")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeChan:
			return
		}
	}
}

func (c *Client) handleIncomingMessage(message []byte) {
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		logrus.WithError(err).Warn("Failed to unmarshal websocket event")
		return
	}

	// The sender identity always comes from the authenticated connection,
	// never from the message body.
	if event.UserID != "" && event.UserID != c.UserID {
		logrus.WithFields(logrus.Fields{
			"claimed": event.UserID,
			"actual":  c.UserID,
		}).Warn("UserID mismatch in websocket event")
		return
	}

	event.UserID = c.UserID
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	switch event.Type {
	case EventTyping, EventStopTyping:
		// Relay the indicator to the counterpart named in the payload.
		var target struct {
			To string `json:"to"`
		}
		if err := json.Unmarshal(event.Payload, &target); err == nil && target.To != "" {
			c.hub.SendToUser(target.To, event)
		}
	default:
		logrus.WithField("type", event.Type).Debug("Unhandled websocket event type")
	}
}
