package websocket

// WebSocket event types.
const (
	EventPing         = "ping"
	EventPong         = "pong"
	EventJoinRoom     = "join_room"
	EventLeaveRoom    = "leave_room"
	EventMessage      = "message"
	EventNotification = "notification"
	EventTyping       = "typing"
	EventMarkRead     = "mark_read"
	EventReadReceipt  = "read_receipt"
	EventError        = "error"
)

type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	RoomID    string      `json:"room_id,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type MessageData struct {
	ID             string `json:"id"`
	RoomID         string `json:"room_id"`
	SenderID       string `json:"sender_id"`
	SenderName     string `json:"sender_name,omitempty"`
	Text           string `json:"text"`
	Type           string `json:"type"`
	ClientKey      string `json:"client_key,omitempty"`
	AttachmentURL  string `json:"attachment_url,omitempty"`
	AttachmentType string `json:"attachment_type,omitempty"`
	AttachmentName string `json:"attachment_name,omitempty"`
	Timestamp      string `json:"timestamp"`
}

type NotificationData struct {
	ID           string `json:"id"`
	RoomID       string `json:"room_id"`
	MessageID    string `json:"message_id"`
	SenderID     string `json:"sender_id"`
	SenderName   string `json:"sender_name"`
	SenderAvatar string `json:"sender_avatar,omitempty"`
	Text         string `json:"text"`
	Timestamp    string `json:"timestamp"`
}

type TypingData struct {
	RoomID    string `json:"room_id"`
	UserID    string `json:"user_id"`
	Typing    bool   `json:"typing"`
	ExpiresAt string `json:"expires_at"`
}

type ReadReceiptData struct {
	RoomID   string `json:"room_id"`
	ReaderID string `json:"reader_id"`
	ReadAt   string `json:"read_at"`
}

type joinRoomData struct {
	RoomID string `json:"room_id"`
}
