package entity

import "time"

// Notification is a per-session projection of a chat message sent by
// another participant. It is derived from messages, never stored.
type Notification struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"room_id"`
	MessageID    string    `json:"message_id"`
	SenderID     string    `json:"sender_id"`
	SenderName   string    `json:"sender_name"`
	SenderAvatar string    `json:"sender_avatar,omitempty"`
	Text         string    `json:"text"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}

// NotificationID derives the stable notification ID for a message.
func NotificationID(messageID string) string {
	return "msg_" + messageID
}
