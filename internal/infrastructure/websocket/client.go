package websocket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// Client represents one authenticated WebSocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
}

// ReadPump reads client frames until the connection drops. Incoming
// events cover ping, room membership, typing indicators, and read
// cursors; message sending goes through the HTTP API.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		c.handleMessage(m, message)
	}
}

func (c *Client) handleMessage(m *Manager, raw []byte) {
	var wsMessage WSMessage
	if err := json.Unmarshal(raw, &wsMessage); err != nil {
		log.Printf("WebSocket: invalid frame from client %s: %v", c.UserID, err)
		return
	}

	switch wsMessage.Type {
	case EventPing:
		m.SendEventToUser(c.UserID, EventPong, nil)

	case EventJoinRoom:
		roomID := c.roomIDFrom(wsMessage)
		if roomID != "" {
			m.JoinRoom(c, roomID)
		}

	case EventLeaveRoom:
		roomID := c.roomIDFrom(wsMessage)
		if roomID != "" {
			m.LeaveRoom(c, roomID)
		}

	case EventTyping:
		c.handleTyping(m, wsMessage)

	case EventMarkRead:
		c.handleMarkRead(m, wsMessage)

	default:
		log.Printf("WebSocket: unknown event type '%s' from client %s", wsMessage.Type, c.UserID)
	}
}

// handleTyping relays a typing indicator to the other room viewers. The
// indicator expires client-side; no state is kept here.
func (c *Client) handleTyping(m *Manager, wsMessage WSMessage) {
	roomID := c.roomIDFrom(wsMessage)
	if roomID == "" {
		return
	}

	if allowed, _ := m.rateLimiter.Allow(c.UserID, "typing"); !allowed {
		return
	}

	var data TypingData
	if raw, err := json.Marshal(wsMessage.Data); err == nil {
		_ = json.Unmarshal(raw, &data)
	}

	m.BroadcastToRoomExcept(roomID, c.UserID, EventTyping, TypingData{
		RoomID:    roomID,
		UserID:    c.UserID,
		Typing:    data.Typing,
		ExpiresAt: time.Now().Add(5 * time.Second).UTC().Format(time.RFC3339),
	})
}

// handleMarkRead advances the caller's read cursor. The installed
// handler pushes the read receipt to the counterpart.
func (c *Client) handleMarkRead(m *Manager, wsMessage WSMessage) {
	roomID := c.roomIDFrom(wsMessage)
	if roomID == "" || m.markRead == nil {
		return
	}

	if err := m.markRead(context.Background(), c.UserID, roomID); err != nil {
		log.Printf("WebSocket: mark_read failed for client %s in room %s: %v", c.UserID, roomID, err)
	}
}

func (c *Client) roomIDFrom(wsMessage WSMessage) string {
	if wsMessage.RoomID != "" {
		return wsMessage.RoomID
	}

	raw, err := json.Marshal(wsMessage.Data)
	if err != nil {
		return ""
	}
	var data joinRoomData
	if err := json.Unmarshal(raw, &data); err != nil {
		return ""
	}
	return data.RoomID
}

// WritePump drains the send channel onto the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("error: %v", err)
				return
			}

		case <-ticker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
