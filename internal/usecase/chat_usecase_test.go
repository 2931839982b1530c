package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsplit/internal/domain/entity"
	ws "dealsplit/internal/infrastructure/websocket"
	"dealsplit/pkg/errors"
)

func newChatTestEnv(t *testing.T) (*ChatUseCase, *fakeChatRepo, *fakeRequestRepo, *fakeFeed) {
	t.Helper()

	userRepo := newFakeUserRepo(
		&entity.User{ID: "buyer-1", Username: "alice", FullName: "Alice Tan"},
		&entity.User{ID: "seller-1", Username: "bob"},
	)
	requestRepo := newFakeRequestRepo(&entity.Request{
		ID:     "req-1",
		UserID: "seller-1",
		Title:  "Split a rice cooker bulk deal",
		Status: entity.RequestStatusOpen,
	})
	chatRepo := newFakeChatRepo()
	feed := &fakeFeed{}

	uc := NewChatUseCase(chatRepo, userRepo, requestRepo, feed, ws.NewManager())
	return uc, chatRepo, requestRepo, feed
}

func TestOpenRoomAssignsCallerAsBuyer(t *testing.T) {
	uc, _, _, _ := newChatTestEnv(t)

	room, err := uc.OpenRoom(context.Background(), "buyer-1", OpenRoomInput{RequestID: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", room.BuyerID)
	assert.Equal(t, "seller-1", room.SellerID)
}

func TestOpenRoomIsIdempotentPerRequestPair(t *testing.T) {
	uc, _, _, _ := newChatTestEnv(t)
	ctx := context.Background()

	first, err := uc.OpenRoom(ctx, "buyer-1", OpenRoomInput{RequestID: "req-1"})
	require.NoError(t, err)

	second, err := uc.OpenRoom(ctx, "buyer-1", OpenRoomInput{RequestID: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestOpenRoomRejectsOwnRequest(t *testing.T) {
	uc, _, _, _ := newChatTestEnv(t)

	_, err := uc.OpenRoom(context.Background(), "seller-1", OpenRoomInput{RequestID: "req-1"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestOpenRoomAttachesCounterpart(t *testing.T) {
	uc, _, _, _ := newChatTestEnv(t)

	room, err := uc.OpenRoom(context.Background(), "buyer-1", OpenRoomInput{RequestID: "req-1"})
	require.NoError(t, err)
	require.NotNil(t, room.Counterpart)
	assert.Equal(t, "seller-1", room.Counterpart.ID)
}

func TestSendMessageRejectsEmptyText(t *testing.T) {
	uc, _, _, _ := newChatTestEnv(t)
	ctx := context.Background()

	room, err := uc.OpenRoom(ctx, "buyer-1", OpenRoomInput{RequestID: "req-1"})
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, "buyer-1", room.ID, SendMessageInput{Text: "   "})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSendMessageClientKeyDeduplicates(t *testing.T) {
	uc, chatRepo, _, feed := newChatTestEnv(t)
	ctx := context.Background()

	room, err := uc.OpenRoom(ctx, "buyer-1", OpenRoomInput{RequestID: "req-1"})
	require.NoError(t, err)

	first, err := uc.SendMessage(ctx, "buyer-1", room.ID, SendMessageInput{
		Text:      "Interested, how many units left?",
		ClientKey: "ck-1",
	})
	require.NoError(t, err)

	second, err := uc.SendMessage(ctx, "buyer-1", room.ID, SendMessageInput{
		Text:      "Interested, how many units left?",
		ClientKey: "ck-1",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	_, total, err := chatRepo.ListMessages(ctx, room.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 1, feed.count())
}

func TestSendMessageRetryDoesNotConsumeRateLimit(t *testing.T) {
	uc, _, _, feed := newChatTestEnv(t)
	ctx := context.Background()

	room, err := uc.OpenRoom(ctx, "buyer-1", OpenRoomInput{RequestID: "req-1"})
	require.NoError(t, err)

	// The send_message bucket holds 10 tokens. Only the first call may
	// spend one; the retries resolve against the stored message.
	for i := 0; i < 15; i++ {
		_, err := uc.SendMessage(ctx, "buyer-1", room.ID, SendMessageInput{
			Text:      "same payload",
			ClientKey: "ck-retry",
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, feed.count())
}

func TestSendMessagePublishesAndUpdatesPreview(t *testing.T) {
	uc, chatRepo, _, feed := newChatTestEnv(t)
	ctx := context.Background()

	room, err := uc.OpenRoom(ctx, "buyer-1", OpenRoomInput{RequestID: "req-1"})
	require.NoError(t, err)

	message, err := uc.SendMessage(ctx, "buyer-1", room.ID, SendMessageInput{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, entity.MessageTypeText, message.Type)
	assert.Equal(t, 1, feed.count())

	stored, err := chatRepo.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.LastMessage)
	assert.Equal(t, message.CreatedAt, stored.LastMessageAt)
}

func TestSendMessageStoreFailureSkipsPublish(t *testing.T) {
	uc, chatRepo, _, feed := newChatTestEnv(t)
	ctx := context.Background()

	room, err := uc.OpenRoom(ctx, "buyer-1", OpenRoomInput{RequestID: "req-1"})
	require.NoError(t, err)

	chatRepo.createMessageErr = errors.Internal("store unavailable", nil)

	_, err = uc.SendMessage(ctx, "buyer-1", room.ID, SendMessageInput{Text: "hello"})
	require.Error(t, err)
	assert.Equal(t, 0, feed.count())

	stored, err := chatRepo.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.LastMessage)
}

func TestSendMessageRequiresMembership(t *testing.T) {
	uc, _, _, _ := newChatTestEnv(t)
	ctx := context.Background()

	room, err := uc.OpenRoom(ctx, "buyer-1", OpenRoomInput{RequestID: "req-1"})
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, "stranger", room.ID, SendMessageInput{Text: "hi"})
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestUnreadCountFollowsReadCursor(t *testing.T) {
	uc, _, _, _ := newChatTestEnv(t)
	ctx := context.Background()

	room, err := uc.OpenRoom(ctx, "buyer-1", OpenRoomInput{RequestID: "req-1"})
	require.NoError(t, err)

	for _, text := range []string{"one", "two"} {
		_, err := uc.SendMessage(ctx, "buyer-1", room.ID, SendMessageInput{Text: text})
		require.NoError(t, err)
	}

	previews, _, err := uc.ListRooms(ctx, "seller-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, 2, previews[0].UnreadCount)

	require.NoError(t, uc.MarkRead(ctx, "seller-1", room.ID))

	previews, _, err = uc.ListRooms(ctx, "seller-1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, previews[0].UnreadCount)
}

func TestLastMessageSeenTracksCounterpartCursor(t *testing.T) {
	uc, _, _, _ := newChatTestEnv(t)
	ctx := context.Background()

	room, err := uc.OpenRoom(ctx, "buyer-1", OpenRoomInput{RequestID: "req-1"})
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, "buyer-1", room.ID, SendMessageInput{Text: "anyone in?"})
	require.NoError(t, err)

	previews, _, err := uc.ListRooms(ctx, "buyer-1", 0, 0)
	require.NoError(t, err)
	assert.False(t, previews[0].LastMessageSeen)

	require.NoError(t, uc.MarkRead(ctx, "seller-1", room.ID))

	previews, _, err = uc.ListRooms(ctx, "buyer-1", 0, 0)
	require.NoError(t, err)
	assert.True(t, previews[0].LastMessageSeen)
}
