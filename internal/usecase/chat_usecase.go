package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"dealsplit/internal/domain/entity"
	"dealsplit/internal/domain/repository"
	"dealsplit/internal/infrastructure/ratelimit"
	"dealsplit/internal/infrastructure/realtime"
	ws "dealsplit/internal/infrastructure/websocket"
	"dealsplit/pkg/errors"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	requestRepo repository.RequestRepository
	feed        realtime.MessageFeed
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	requestRepo repository.RequestRepository,
	feed realtime.MessageFeed,
	wsManager *ws.Manager,
) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		requestRepo: requestRepo,
		feed:        feed,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
	}
}

type OpenRoomInput struct {
	RequestID string `json:"request_id" validate:"required"`
}

type SendMessageInput struct {
	Text           string `json:"text"`
	ClientKey      string `json:"client_key"`
	AttachmentURL  string `json:"attachment_url"`
	AttachmentType string `json:"attachment_type"`
	AttachmentName string `json:"attachment_name"`
}

type RoomResponse struct {
	*entity.ChatRoom
	Counterpart *entity.User `json:"counterpart,omitempty"`
}

// OpenRoom returns the room between the caller and the request owner,
// creating it on first contact. The caller is the buyer and the request
// owner is the seller.
func (uc *ChatUseCase) OpenRoom(ctx context.Context, userID string, input OpenRoomInput) (*RoomResponse, error) {
	request, err := uc.requestRepo.GetByID(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	if request.UserID == userID {
		return nil, errors.BadRequest("You cannot open a chat on your own request", nil)
	}

	buyerID := userID
	sellerID := request.UserID

	room, err := uc.chatRepo.GetRoomByTriple(ctx, request.ID, buyerID, sellerID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}

		allowed, _ := uc.rateLimiter.Allow(userID, "create_room")
		if !allowed {
			return nil, errors.TooManyRequests("Too many new chats. Please wait before starting another")
		}

		room = &entity.ChatRoom{
			RequestID:     request.ID,
			BuyerID:       buyerID,
			SellerID:      sellerID,
			LastMessageAt: time.Now(),
		}
		if err := uc.chatRepo.CreateRoom(ctx, room); err != nil {
			return nil, err
		}
	}

	resp := &RoomResponse{ChatRoom: room}
	if counterpart, err := uc.userRepo.GetByID(ctx, room.Counterpart(userID)); err == nil {
		resp.Counterpart = counterpart
	}

	return resp, nil
}

func (uc *ChatUseCase) GetRoom(ctx context.Context, userID, roomID string) (*entity.ChatRoom, error) {
	room, err := uc.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this chat room", nil)
	}

	return room, nil
}

// ListRooms returns the caller's rooms newest-first with unread counts
// and last-message visibility computed from each side's read cursor.
func (uc *ChatUseCase) ListRooms(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoomPreview, int64, error) {
	rooms, total, err := uc.chatRepo.ListRoomsByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	counterpartIDs := make([]string, 0, len(rooms))
	for _, room := range rooms {
		counterpartIDs = append(counterpartIDs, room.Counterpart(userID))
	}

	counterparts, err := uc.userRepo.GetByIDs(ctx, counterpartIDs)
	if err != nil {
		log.Printf("ListRooms: failed to batch load counterparts for user %s: %v", userID, err)
		counterparts = map[string]*entity.User{}
	}

	previews := make([]*entity.ChatRoomPreview, 0, len(rooms))
	for _, room := range rooms {
		preview := &entity.ChatRoomPreview{
			Room:        room,
			Counterpart: counterparts[room.Counterpart(userID)],
		}

		unread, err := uc.chatRepo.CountMessagesAfter(ctx, room.ID, userID, room.LastReadAt(userID))
		if err != nil {
			log.Printf("ListRooms: failed to count unread for room %s: %v", room.ID, err)
		} else {
			preview.UnreadCount = unread
		}

		preview.LastMessageSeen = uc.lastMessageSeen(ctx, room, userID)
		previews = append(previews, preview)
	}

	return previews, total, nil
}

// lastMessageSeen reports whether the counterpart's read cursor covers
// the caller's most recent message in the room.
func (uc *ChatUseCase) lastMessageSeen(ctx context.Context, room *entity.ChatRoom, userID string) bool {
	lastMine, err := uc.chatRepo.LatestMessageBySender(ctx, room.ID, userID)
	if err != nil {
		return false
	}

	counterpartRead := room.LastReadAt(room.Counterpart(userID))
	if counterpartRead == nil {
		return false
	}

	return !counterpartRead.Before(lastMine.CreatedAt)
}

func (uc *ChatUseCase) ListMessages(ctx context.Context, userID, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	if _, err := uc.GetRoom(ctx, userID, roomID); err != nil {
		return nil, 0, err
	}

	return uc.chatRepo.ListMessages(ctx, roomID, limit, offset)
}

// SendMessage stores one message and publishes it to the realtime feed.
// A repeated client key returns the already-stored message instead of
// creating a duplicate.
func (uc *ChatUseCase) SendMessage(ctx context.Context, userID, roomID string, input SendMessageInput) (*entity.Message, error) {
	room, err := uc.GetRoom(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Text)
	if text == "" && input.AttachmentURL == "" {
		return nil, errors.BadRequest("Message text cannot be empty", nil)
	}

	// A retried client key resolves to the stored message without
	// consuming a rate limit token.
	if input.ClientKey != "" {
		existing, err := uc.chatRepo.GetMessageByClientKey(ctx, roomID, input.ClientKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}
	}

	allowed, _ := uc.rateLimiter.Allow(userID, "send_message")
	if !allowed {
		return nil, errors.TooManyRequests("You are sending messages too quickly")
	}

	messageType := entity.MessageTypeText
	if input.AttachmentURL != "" {
		messageType = entity.MessageTypeAttachment
	}

	message := &entity.Message{
		RoomID:         roomID,
		SenderID:       userID,
		Text:           text,
		Type:           messageType,
		ClientKey:      input.ClientKey,
		AttachmentURL:  input.AttachmentURL,
		AttachmentType: input.AttachmentType,
		AttachmentName: input.AttachmentName,
	}

	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	room.LastMessage = previewText(message)
	room.LastMessageAt = message.CreatedAt
	if err := uc.chatRepo.UpdateRoom(ctx, room); err != nil {
		log.Printf("SendMessage: failed to update room %s preview: %v", roomID, err)
	}

	if err := uc.feed.Publish(ctx, message); err != nil {
		// Delivery degrades to polling until the feed reconnects. The
		// message itself is already stored.
		log.Printf("SendMessage: failed to publish message %s to feed: %v", message.ID, err)
	}

	return message, nil
}

func previewText(message *entity.Message) string {
	if message.Type == entity.MessageTypeAttachment && message.Text == "" {
		if message.AttachmentName != "" {
			return message.AttachmentName
		}
		return "Attachment"
	}
	return message.Text
}

// MarkRead advances the caller's read cursor and pushes a read receipt
// to the counterpart.
func (uc *ChatUseCase) MarkRead(ctx context.Context, userID, roomID string) error {
	room, err := uc.GetRoom(ctx, userID, roomID)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := uc.chatRepo.UpdateLastRead(ctx, roomID, userID, now); err != nil {
		return err
	}

	uc.wsManager.SendEventToUser(room.Counterpart(userID), ws.EventReadReceipt, ws.ReadReceiptData{
		RoomID:   roomID,
		ReaderID: userID,
		ReadAt:   now.UTC().Format(time.RFC3339),
	})

	return nil
}
