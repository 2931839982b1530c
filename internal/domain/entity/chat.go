package entity

import "time"

// ChatRoom connects a buyer and a seller around one request. At most one
// room exists per (request, buyer, seller) triple.
type ChatRoom struct {
	ID        string `json:"id" firestore:"id"`
	RequestID string `json:"request_id" firestore:"requestId"`
	BuyerID   string `json:"buyer_id" firestore:"buyerId"`
	SellerID  string `json:"seller_id" firestore:"sellerId"`

	BuyerLastReadAt  *time.Time `json:"buyer_last_read_at,omitempty" firestore:"buyerLastReadAt,omitempty"`
	SellerLastReadAt *time.Time `json:"seller_last_read_at,omitempty" firestore:"sellerLastReadAt,omitempty"`

	LastMessageAt time.Time `json:"last_message_at" firestore:"lastMessageAt"`
	LastMessage   string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// HasParticipant reports whether userID is the room's buyer or seller.
func (r *ChatRoom) HasParticipant(userID string) bool {
	return r.BuyerID == userID || r.SellerID == userID
}

// Counterpart returns the other participant's ID, or "" when userID is
// not in the room.
func (r *ChatRoom) Counterpart(userID string) string {
	switch userID {
	case r.BuyerID:
		return r.SellerID
	case r.SellerID:
		return r.BuyerID
	}
	return ""
}

// LastReadAt returns userID's read cursor in this room.
func (r *ChatRoom) LastReadAt(userID string) *time.Time {
	switch userID {
	case r.BuyerID:
		return r.BuyerLastReadAt
	case r.SellerID:
		return r.SellerLastReadAt
	}
	return nil
}

// ChatRoomPreview is the list-view projection of a room: the room itself
// plus per-viewer counters the client renders directly.
type ChatRoomPreview struct {
	Room            *ChatRoom `json:"room"`
	Counterpart     *User     `json:"counterpart,omitempty"`
	UnreadCount     int       `json:"unread_count"`
	LastMessageSeen bool      `json:"last_message_seen"`
}
