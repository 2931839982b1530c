package repository

import (
	"context"
	"time"

	"dealsplit/internal/domain/entity"
)

type ChatRepository interface {
	CreateRoom(ctx context.Context, room *entity.ChatRoom) error
	GetRoom(ctx context.Context, id string) (*entity.ChatRoom, error)
	GetRoomByTriple(ctx context.Context, requestID, buyerID, sellerID string) (*entity.ChatRoom, error)
	ListRoomsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error)
	UpdateRoom(ctx context.Context, room *entity.ChatRoom) error
	UpdateLastRead(ctx context.Context, roomID, userID string, at time.Time) error

	// Message methods
	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessageByClientKey(ctx context.Context, roomID, clientKey string) (*entity.Message, error)
	ListMessages(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error)
	LatestMessage(ctx context.Context, roomID string) (*entity.Message, error)
	LatestMessageBySender(ctx context.Context, roomID, senderID string) (*entity.Message, error)
	CountMessagesAfter(ctx context.Context, roomID, excludeSenderID string, after *time.Time) (int, error)
	RecentMessagesByOthers(ctx context.Context, roomID, excludeSenderID string, limit int) ([]*entity.Message, error)
}
