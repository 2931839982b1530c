package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID string) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, 8)}
}

func register(m *Manager, c *Client) {
	m.mutex.Lock()
	m.clients[c.UserID] = c
	m.mutex.Unlock()
}

func TestRoomMembership(t *testing.T) {
	m := NewManager()
	alice := newTestClient("alice")
	register(m, alice)

	assert.False(t, m.IsViewingRoom("alice", "room-1"))

	m.JoinRoom(alice, "room-1")
	assert.True(t, m.IsViewingRoom("alice", "room-1"))

	m.LeaveRoom(alice, "room-1")
	assert.False(t, m.IsViewingRoom("alice", "room-1"))
}

func TestBroadcastToRoomExceptSkipsSender(t *testing.T) {
	m := NewManager()
	alice := newTestClient("alice")
	bob := newTestClient("bob")
	register(m, alice)
	register(m, bob)
	m.JoinRoom(alice, "room-1")
	m.JoinRoom(bob, "room-1")

	m.BroadcastToRoomExcept("room-1", "alice", EventMessage, MessageData{ID: "m1", RoomID: "room-1"})

	select {
	case payload := <-bob.Send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, EventMessage, msg.Type)
		assert.Equal(t, "room-1", msg.RoomID)
	default:
		t.Fatal("expected bob to receive the broadcast")
	}

	select {
	case <-alice.Send:
		t.Fatal("sender should not receive their own broadcast")
	default:
	}
}

func TestSendEventToUserDropsWhenOffline(t *testing.T) {
	m := NewManager()

	// No registered client. Must not panic or block.
	m.SendEventToUser("ghost", EventNotification, NotificationData{ID: "n1"})
}

func TestSendToUserDoesNotBlockOnFullBuffer(t *testing.T) {
	m := NewManager()
	slow := &Client{UserID: "slow", Send: make(chan []byte)}
	register(m, slow)

	// Unbuffered channel with no reader. The send must be dropped.
	m.SendToUser("slow", []byte("x"))
}

func TestTypingFrameRelaysToRoom(t *testing.T) {
	m := NewManager()
	alice := newTestClient("alice")
	bob := newTestClient("bob")
	register(m, alice)
	register(m, bob)
	m.JoinRoom(alice, "room-1")
	m.JoinRoom(bob, "room-1")

	frame, err := json.Marshal(WSMessage{
		Type:   EventTyping,
		RoomID: "room-1",
		Data:   TypingData{Typing: true},
	})
	require.NoError(t, err)
	alice.handleMessage(m, frame)

	select {
	case payload := <-bob.Send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, EventTyping, msg.Type)

		raw, err := json.Marshal(msg.Data)
		require.NoError(t, err)
		var data TypingData
		require.NoError(t, json.Unmarshal(raw, &data))
		assert.Equal(t, "alice", data.UserID)
		assert.True(t, data.Typing)
		assert.NotEmpty(t, data.ExpiresAt)
	default:
		t.Fatal("expected bob to receive the typing indicator")
	}

	select {
	case <-alice.Send:
		t.Fatal("typing must not echo back to the sender")
	default:
	}
}

func TestMarkReadFrameInvokesHandler(t *testing.T) {
	m := NewManager()
	alice := newTestClient("alice")
	register(m, alice)

	var gotUser, gotRoom string
	m.OnMarkRead(func(ctx context.Context, userID, roomID string) error {
		gotUser = userID
		gotRoom = roomID
		return nil
	})

	frame, err := json.Marshal(WSMessage{Type: EventMarkRead, RoomID: "room-1"})
	require.NoError(t, err)
	alice.handleMessage(m, frame)

	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "room-1", gotRoom)
}

func TestMarkReadFrameWithoutHandlerIsNoop(t *testing.T) {
	m := NewManager()
	alice := newTestClient("alice")
	register(m, alice)

	frame, err := json.Marshal(WSMessage{Type: EventMarkRead, RoomID: "room-1"})
	require.NoError(t, err)
	alice.handleMessage(m, frame)
}
