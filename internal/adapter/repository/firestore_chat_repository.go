package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"dealsplit/internal/domain/entity"
	"dealsplit/internal/domain/repository"
	"dealsplit/pkg/errors"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) CreateRoom(ctx context.Context, room *entity.ChatRoom) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}

	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now

	_, err := r.client.Collection("chat_rooms").Doc(room.ID).Set(ctx, room)
	if err != nil {
		return errors.Internal("Failed to create chat room", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetRoom(ctx context.Context, id string) (*entity.ChatRoom, error) {
	doc, err := r.client.Collection("chat_rooms").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat room", nil)
		}
		return nil, errors.Internal("Failed to get chat room", err)
	}

	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse chat room data", err)
	}

	return &room, nil
}

func (r *firestoreChatRepository) GetRoomByTriple(ctx context.Context, requestID, buyerID, sellerID string) (*entity.ChatRoom, error) {
	query := r.client.Collection("chat_rooms").
		Where("requestId", "==", requestID).
		Where("buyerId", "==", buyerID).
		Where("sellerId", "==", sellerID).
		Limit(1)

	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Chat room", nil)
		}
		return nil, errors.Internal("Failed to query chat room", err)
	}

	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse chat room data", err)
	}

	return &room, nil
}

func (r *firestoreChatRepository) ListRoomsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	// Firestore cannot OR across fields, so buyer and seller sides are
	// fetched separately and merged.
	buyerDocs, err := r.client.Collection("chat_rooms").
		Where("buyerId", "==", userID).
		Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching buyer rooms for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to fetch chat rooms", err)
	}

	sellerDocs, err := r.client.Collection("chat_rooms").
		Where("sellerId", "==", userID).
		Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching seller rooms for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to fetch chat rooms", err)
	}

	var rooms []*entity.ChatRoom
	for _, doc := range append(buyerDocs, sellerDocs...) {
		var room entity.ChatRoom
		if err := doc.DataTo(&room); err != nil {
			log.Printf("Error parsing chat room data for user %s: %v", userID, err)
			continue
		}
		rooms = append(rooms, &room)
	}

	// Newest activity first.
	for i := 0; i < len(rooms); i++ {
		for j := i + 1; j < len(rooms); j++ {
			if rooms[j].UpdatedAt.After(rooms[i].UpdatedAt) {
				rooms[i], rooms[j] = rooms[j], rooms[i]
			}
		}
	}

	total := int64(len(rooms))

	// Apply pagination in-memory
	start := offset
	end := len(rooms)
	if limit > 0 {
		end = start + limit
		if end > len(rooms) {
			end = len(rooms)
		}
	}
	if start > len(rooms) {
		start = len(rooms)
	}

	return rooms[start:end], total, nil
}

func (r *firestoreChatRepository) UpdateRoom(ctx context.Context, room *entity.ChatRoom) error {
	room.UpdatedAt = time.Now()

	_, err := r.client.Collection("chat_rooms").Doc(room.ID).Set(ctx, room)
	if err != nil {
		return errors.Internal("Failed to update chat room", err)
	}

	return nil
}

func (r *firestoreChatRepository) UpdateLastRead(ctx context.Context, roomID, userID string, at time.Time) error {
	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	switch userID {
	case room.BuyerID:
		room.BuyerLastReadAt = &at
	case room.SellerID:
		room.SellerLastReadAt = &at
	default:
		return errors.Forbidden("User is not a participant of this chat room", nil)
	}

	_, err = r.client.Collection("chat_rooms").Doc(roomID).Set(ctx, room)
	if err != nil {
		return errors.Internal("Failed to update read cursor", err)
	}

	return nil
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("chat_rooms").Doc(message.RoomID).Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetMessageByClientKey(ctx context.Context, roomID, clientKey string) (*entity.Message, error) {
	query := r.client.Collection("chat_rooms").Doc(roomID).Collection("messages").
		Where("clientKey", "==", clientKey).
		Limit(1)

	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Message", nil)
		}
		return nil, errors.Internal("Failed to query message by client key", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}

	return &message, nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("chat_rooms").Doc(roomID).Collection("messages").OrderBy("createdAt", firestore.Asc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching messages for room %s: %v", roomID, err)
		return nil, 0, errors.Internal("Failed to fetch messages", err)
	}

	total := int64(len(allDocs))

	start := offset
	end := len(allDocs)
	if limit > 0 {
		end = start + limit
		if end > len(allDocs) {
			end = len(allDocs)
		}
	}
	if start > len(allDocs) {
		start = len(allDocs)
	}

	var messages []*entity.Message
	for i := start; i < end; i++ {
		var message entity.Message
		if err := allDocs[i].DataTo(&message); err != nil {
			log.Printf("Error parsing message data for room %s: %v", roomID, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreChatRepository) LatestMessage(ctx context.Context, roomID string) (*entity.Message, error) {
	query := r.client.Collection("chat_rooms").Doc(roomID).Collection("messages").
		OrderBy("createdAt", firestore.Desc).
		Limit(1)

	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Message", nil)
		}
		return nil, errors.Internal("Failed to query latest message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}

	return &message, nil
}

func (r *firestoreChatRepository) LatestMessageBySender(ctx context.Context, roomID, senderID string) (*entity.Message, error) {
	query := r.client.Collection("chat_rooms").Doc(roomID).Collection("messages").
		Where("senderId", "==", senderID).
		OrderBy("createdAt", firestore.Desc).
		Limit(1)

	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Message", nil)
		}
		return nil, errors.Internal("Failed to query latest message by sender", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}

	return &message, nil
}

func (r *firestoreChatRepository) CountMessagesAfter(ctx context.Context, roomID, excludeSenderID string, after *time.Time) (int, error) {
	query := r.client.Collection("chat_rooms").Doc(roomID).Collection("messages").
		OrderBy("createdAt", firestore.Asc)
	if after != nil {
		query = query.Where("createdAt", ">", *after)
	}

	iter := query.Documents(ctx)
	count := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, errors.Internal("Failed to count messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			continue
		}
		if message.SenderID == excludeSenderID {
			continue
		}
		count++
	}

	return count, nil
}

func (r *firestoreChatRepository) RecentMessagesByOthers(ctx context.Context, roomID, excludeSenderID string, limit int) ([]*entity.Message, error) {
	// Sender exclusion happens client-side, so overfetch to keep the
	// result close to the requested size.
	query := r.client.Collection("chat_rooms").Doc(roomID).Collection("messages").
		OrderBy("createdAt", firestore.Desc).
		Limit(limit * 2)

	iter := query.Documents(ctx)
	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing message data for room %s: %v", roomID, err)
			continue
		}
		if message.SenderID == excludeSenderID {
			continue
		}
		messages = append(messages, &message)
		if len(messages) >= limit {
			break
		}
	}

	return messages, nil
}
