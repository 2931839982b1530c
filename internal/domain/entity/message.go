package entity

import "time"

// Message types.
const (
	MessageTypeText       = "text"
	MessageTypeAttachment = "attachment"
	MessageTypeSystem     = "system"
)

type Message struct {
	ID       string `json:"id" firestore:"id"`
	RoomID   string `json:"room_id" firestore:"roomId"`
	SenderID string `json:"sender_id" firestore:"senderId"`
	Text     string `json:"text" firestore:"text"`
	Type     string `json:"type" firestore:"type"`

	// ClientKey is a caller-chosen idempotency key. Two sends with the
	// same key in the same room resolve to one stored message.
	ClientKey string `json:"client_key,omitempty" firestore:"clientKey,omitempty"`

	AttachmentURL  string `json:"attachment_url,omitempty" firestore:"attachmentUrl,omitempty"`
	AttachmentType string `json:"attachment_type,omitempty" firestore:"attachmentType,omitempty"`
	AttachmentName string `json:"attachment_name,omitempty" firestore:"attachmentName,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
