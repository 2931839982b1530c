package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"dealsplit/internal/infrastructure/ratelimit"
)

// MarkReadFunc advances a user's read cursor for a room.
type MarkReadFunc func(ctx context.Context, userID, roomID string) error

// Manager tracks all active WebSocket connections and which chat rooms
// each connection is currently viewing.
type Manager struct {
	clients     map[string]*Client
	roomClients map[string]map[string]*Client
	Register    chan *Client
	Unregister  chan *Client
	mutex       sync.RWMutex

	rateLimiter *ratelimit.RateLimiter
	markRead    MarkReadFunc
}

func NewManager() *Manager {
	return &Manager{
		clients:     make(map[string]*Client),
		roomClients: make(map[string]map[string]*Client),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		rateLimiter: ratelimit.NewRateLimiter(),
	}
}

// OnMarkRead installs the handler for incoming mark_read frames. Must be
// called before the manager starts accepting connections.
func (m *Manager) OnMarkRead(fn MarkReadFunc) {
	m.markRead = fn
}

// Start runs the manager's registration loop until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if old, ok := m.clients[client.UserID]; ok {
					// One connection per user. The newer one wins.
					m.removeFromRoomsLocked(old)
					close(old.Send)
				}
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				log.Printf("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if current, ok := m.clients[client.UserID]; ok && current == client {
					delete(m.clients, client.UserID)
					m.removeFromRoomsLocked(client)
					close(client.Send)
				}
				m.mutex.Unlock()
				log.Printf("Client unregistered: %s", client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) removeFromRoomsLocked(client *Client) {
	for roomID, members := range m.roomClients {
		if members[client.UserID] == client {
			delete(members, client.UserID)
			if len(members) == 0 {
				delete(m.roomClients, roomID)
			}
		}
	}
}

// JoinRoom marks a client as actively viewing a room.
func (m *Manager) JoinRoom(client *Client, roomID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	members, ok := m.roomClients[roomID]
	if !ok {
		members = make(map[string]*Client)
		m.roomClients[roomID] = members
	}
	members[client.UserID] = client
}

// LeaveRoom clears a client's active-room membership.
func (m *Manager) LeaveRoom(client *Client, roomID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if members, ok := m.roomClients[roomID]; ok {
		if members[client.UserID] == client {
			delete(members, client.UserID)
			if len(members) == 0 {
				delete(m.roomClients, roomID)
			}
		}
	}
}

// IsViewingRoom reports whether userID currently has roomID open.
func (m *Manager) IsViewingRoom(userID, roomID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	members, ok := m.roomClients[roomID]
	if !ok {
		return false
	}
	_, viewing := members[userID]
	return viewing
}

// SendToUser delivers a payload to one user, dropping it if the user is
// offline or the send buffer is full.
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		return
	}

	select {
	case client.Send <- message:
	default:
		log.Printf("Dropping message for slow client %s", userID)
	}
}

// SendEventToUser marshals a typed event and delivers it to one user.
func (m *Manager) SendEventToUser(userID, eventType string, data interface{}) {
	payload, err := json.Marshal(WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}

	m.SendToUser(userID, payload)
}

// BroadcastToRoomExcept sends an event to everyone viewing roomID other
// than excludeUserID.
func (m *Manager) BroadcastToRoomExcept(roomID, excludeUserID, eventType string, data interface{}) {
	payload, err := json.Marshal(WSMessage{
		Type:      eventType,
		Data:      data,
		RoomID:    roomID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}

	m.mutex.RLock()
	members := m.roomClients[roomID]
	targets := make([]*Client, 0, len(members))
	for userID, client := range members {
		if userID == excludeUserID {
			continue
		}
		targets = append(targets, client)
	}
	m.mutex.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- payload:
		default:
			log.Printf("Dropping room broadcast for slow client %s", client.UserID)
		}
	}
}
