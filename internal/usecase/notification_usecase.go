package usecase

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"dealsplit/internal/domain/entity"
	"dealsplit/internal/domain/repository"
	"dealsplit/internal/infrastructure/realtime"
	ws "dealsplit/internal/infrastructure/websocket"
	"dealsplit/pkg/errors"
)

const (
	// prefetchLimit caps how many recent messages seed a session.
	prefetchLimit = 50

	// toastDuration is how long a toast stays active before it clears
	// itself.
	toastDuration = 8 * time.Second
)

// NotificationUseCase projects chat messages into per-user notification
// sessions. Notifications exist only while a session is open; the
// underlying messages are the durable record.
type NotificationUseCase struct {
	chatRepo  repository.ChatRepository
	userRepo  repository.UserRepository
	chatUC    *ChatUseCase
	feed      realtime.MessageFeed
	wsManager *ws.Manager

	mu       sync.RWMutex
	sessions map[string]*notificationSession
}

type notificationSession struct {
	userID string

	mu            sync.Mutex
	notifications []*entity.Notification
	byID          map[string]*entity.Notification
	rooms         map[string]*entity.ChatRoom
	toastTimer    *time.Timer
	activeToastID string
}

func NewNotificationUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	chatUC *ChatUseCase,
	feed realtime.MessageFeed,
	wsManager *ws.Manager,
) *NotificationUseCase {
	return &NotificationUseCase{
		chatRepo:  chatRepo,
		userRepo:  userRepo,
		chatUC:    chatUC,
		feed:      feed,
		wsManager: wsManager,
		sessions:  make(map[string]*notificationSession),
	}
}

// Run consumes the message feed until ctx is cancelled. Every stored
// message is fanned out to room viewers and, for the counterpart, into
// their notification session.
func (uc *NotificationUseCase) Run(ctx context.Context) {
	go uc.feed.Subscribe(ctx, func(message *entity.Message) {
		uc.dispatch(ctx, message)
	})
}

func (uc *NotificationUseCase) dispatch(ctx context.Context, message *entity.Message) {
	sender, err := uc.userRepo.GetByID(ctx, message.SenderID)
	if err != nil {
		log.Printf("Notification dispatch: failed to load sender %s: %v", message.SenderID, err)
	}
	senderName := sender.DisplayName()

	uc.wsManager.BroadcastToRoomExcept(message.RoomID, message.SenderID, ws.EventMessage, ws.MessageData{
		ID:             message.ID,
		RoomID:         message.RoomID,
		SenderID:       message.SenderID,
		SenderName:     senderName,
		Text:           message.Text,
		Type:           message.Type,
		ClientKey:      message.ClientKey,
		AttachmentURL:  message.AttachmentURL,
		AttachmentType: message.AttachmentType,
		AttachmentName: message.AttachmentName,
		Timestamp:      message.CreatedAt.UTC().Format(time.RFC3339),
	})

	room, err := uc.roomFor(ctx, message.RoomID)
	if err != nil {
		log.Printf("Notification dispatch: failed to load room %s: %v", message.RoomID, err)
		return
	}

	recipientID := room.Counterpart(message.SenderID)
	if recipientID == "" {
		return
	}

	session := uc.session(recipientID)
	if session == nil {
		return
	}

	notification := &entity.Notification{
		ID:           entity.NotificationID(message.ID),
		RoomID:       message.RoomID,
		MessageID:    message.ID,
		SenderID:     message.SenderID,
		SenderName:   senderName,
		SenderAvatar: sender.Avatar(),
		Text:         message.Text,
		CreatedAt:    message.CreatedAt,
	}

	session.mu.Lock()
	if _, exists := session.byID[notification.ID]; exists {
		session.mu.Unlock()
		return
	}
	session.byID[notification.ID] = notification
	session.notifications = append([]*entity.Notification{notification}, session.notifications...)
	session.rooms[room.ID] = room
	uc.startToastLocked(session, notification.ID)
	session.mu.Unlock()

	// Suppress the push when the recipient already has the room open.
	if uc.wsManager.IsViewingRoom(recipientID, message.RoomID) {
		return
	}

	uc.wsManager.SendEventToUser(recipientID, ws.EventNotification, ws.NotificationData{
		ID:           notification.ID,
		RoomID:       notification.RoomID,
		MessageID:    notification.MessageID,
		SenderID:     notification.SenderID,
		SenderName:   notification.SenderName,
		SenderAvatar: notification.SenderAvatar,
		Text:         notification.Text,
		Timestamp:    notification.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// startToastLocked arms the auto-clear timer for the newest toast,
// cancelling any previous one. Caller holds session.mu.
func (uc *NotificationUseCase) startToastLocked(session *notificationSession, notificationID string) {
	if session.toastTimer != nil {
		session.toastTimer.Stop()
	}
	session.activeToastID = notificationID
	session.toastTimer = time.AfterFunc(toastDuration, func() {
		session.mu.Lock()
		if session.activeToastID == notificationID {
			session.activeToastID = ""
		}
		session.mu.Unlock()
	})
}

func (uc *NotificationUseCase) session(userID string) *notificationSession {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.sessions[userID]
}

func (uc *NotificationUseCase) roomFor(ctx context.Context, roomID string) (*entity.ChatRoom, error) {
	uc.mu.RLock()
	for _, session := range uc.sessions {
		session.mu.Lock()
		room, ok := session.rooms[roomID]
		session.mu.Unlock()
		if ok {
			uc.mu.RUnlock()
			return room, nil
		}
	}
	uc.mu.RUnlock()

	return uc.chatRepo.GetRoom(ctx, roomID)
}

// StartSession seeds a notification session from recent history: up to
// 50 of the newest messages sent by other participants across the
// user's rooms. Messages at or before the per-room read cursor arrive
// already marked read.
func (uc *NotificationUseCase) StartSession(ctx context.Context, userID string) ([]*entity.Notification, error) {
	rooms, _, err := uc.chatRepo.ListRoomsByUser(ctx, userID, 0, 0)
	if err != nil {
		return nil, err
	}

	session := &notificationSession{
		userID: userID,
		byID:   make(map[string]*entity.Notification),
		rooms:  make(map[string]*entity.ChatRoom),
	}

	var recent []*entity.Message
	roomByMessage := make(map[string]*entity.ChatRoom)
	for _, room := range rooms {
		session.rooms[room.ID] = room

		messages, err := uc.chatRepo.RecentMessagesByOthers(ctx, room.ID, userID, prefetchLimit)
		if err != nil {
			log.Printf("StartSession: failed to prefetch room %s: %v", room.ID, err)
			continue
		}
		for _, message := range messages {
			recent = append(recent, message)
			roomByMessage[message.ID] = room
		}
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > prefetchLimit {
		recent = recent[:prefetchLimit]
	}

	senderIDs := make([]string, 0, len(recent))
	for _, message := range recent {
		senderIDs = append(senderIDs, message.SenderID)
	}
	senders, err := uc.userRepo.GetByIDs(ctx, senderIDs)
	if err != nil {
		log.Printf("StartSession: failed to batch load senders for user %s: %v", userID, err)
		senders = map[string]*entity.User{}
	}

	for _, message := range recent {
		room := roomByMessage[message.ID]
		lastRead := room.LastReadAt(userID)

		notification := &entity.Notification{
			ID:           entity.NotificationID(message.ID),
			RoomID:       message.RoomID,
			MessageID:    message.ID,
			SenderID:     message.SenderID,
			SenderName:   senders[message.SenderID].DisplayName(),
			SenderAvatar: senders[message.SenderID].Avatar(),
			Text:         message.Text,
			Read:         lastRead != nil && !lastRead.Before(message.CreatedAt),
			CreatedAt:    message.CreatedAt,
		}
		session.byID[notification.ID] = notification
		session.notifications = append(session.notifications, notification)
	}

	uc.mu.Lock()
	if old, ok := uc.sessions[userID]; ok {
		old.teardown()
	}
	uc.sessions[userID] = session
	uc.mu.Unlock()

	return session.snapshot(), nil
}

func (uc *NotificationUseCase) EndSession(userID string) {
	uc.mu.Lock()
	session, ok := uc.sessions[userID]
	if ok {
		delete(uc.sessions, userID)
	}
	uc.mu.Unlock()

	if ok {
		session.teardown()
	}
}

func (s *notificationSession) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.toastTimer != nil {
		s.toastTimer.Stop()
		s.toastTimer = nil
	}
	s.activeToastID = ""
}

func (s *notificationSession) snapshot() []*entity.Notification {
	out := make([]*entity.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		copied := *n
		out = append(out, &copied)
	}
	return out
}

// List returns the session's notifications newest-first along with the
// unread count.
func (uc *NotificationUseCase) List(userID string) ([]*entity.Notification, int, error) {
	session := uc.session(userID)
	if session == nil {
		return nil, 0, errors.NotFound("Notification session", nil)
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	unread := 0
	for _, n := range session.notifications {
		if !n.Read {
			unread++
		}
	}
	return session.snapshot(), unread, nil
}

func (uc *NotificationUseCase) MarkRead(userID, notificationID string) error {
	session := uc.session(userID)
	if session == nil {
		return errors.NotFound("Notification session", nil)
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	notification, ok := session.byID[notificationID]
	if !ok {
		return errors.NotFound("Notification", nil)
	}

	notification.Read = true
	if session.activeToastID == notificationID {
		session.activeToastID = ""
		if session.toastTimer != nil {
			session.toastTimer.Stop()
		}
	}
	return nil
}

func (uc *NotificationUseCase) MarkAllRead(userID string) error {
	session := uc.session(userID)
	if session == nil {
		return errors.NotFound("Notification session", nil)
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	for _, n := range session.notifications {
		n.Read = true
	}
	session.activeToastID = ""
	if session.toastTimer != nil {
		session.toastTimer.Stop()
	}
	return nil
}

func (uc *NotificationUseCase) Dismiss(userID, notificationID string) error {
	session := uc.session(userID)
	if session == nil {
		return errors.NotFound("Notification session", nil)
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if _, ok := session.byID[notificationID]; !ok {
		return errors.NotFound("Notification", nil)
	}

	delete(session.byID, notificationID)
	for i, n := range session.notifications {
		if n.ID == notificationID {
			session.notifications = append(session.notifications[:i], session.notifications[i+1:]...)
			break
		}
	}
	if session.activeToastID == notificationID {
		session.activeToastID = ""
		if session.toastTimer != nil {
			session.toastTimer.Stop()
		}
	}
	return nil
}

type ReplyInput struct {
	RoomID    string `json:"room_id"`
	SenderID  string `json:"sender_id"`
	Text      string `json:"text" validate:"required"`
	ClientKey string `json:"client_key"`
}

// Reply sends a message straight from a notification. The room comes
// from the notification itself unless the caller overrides it, with a
// fallback search by sender when the notification has aged out.
func (uc *NotificationUseCase) Reply(ctx context.Context, userID, notificationID string, input ReplyInput) (*entity.Message, error) {
	roomID := input.RoomID
	senderID := input.SenderID

	session := uc.session(userID)
	if roomID == "" && session != nil {
		session.mu.Lock()
		if notification, ok := session.byID[notificationID]; ok {
			roomID = notification.RoomID
			senderID = notification.SenderID
		}
		session.mu.Unlock()
	}

	if roomID == "" && senderID != "" {
		roomID = uc.roomWithCounterpart(ctx, userID, senderID)
	}

	if roomID == "" {
		return nil, errors.NotFound("Notification", nil)
	}

	message, err := uc.chatUC.SendMessage(ctx, userID, roomID, SendMessageInput{
		Text:      input.Text,
		ClientKey: input.ClientKey,
	})
	if err != nil {
		return nil, err
	}

	// Replying implies the conversation was seen.
	if session != nil {
		_ = uc.MarkRead(userID, notificationID)
	}
	if err := uc.chatUC.MarkRead(ctx, userID, roomID); err != nil {
		log.Printf("Reply: failed to advance read cursor for room %s: %v", roomID, err)
	}

	return message, nil
}

// roomWithCounterpart finds the caller's most recent room shared with
// the given counterpart. Returns an empty string when no such room
// exists.
func (uc *NotificationUseCase) roomWithCounterpart(ctx context.Context, userID, counterpartID string) string {
	rooms, _, err := uc.chatRepo.ListRoomsByUser(ctx, userID, 0, 0)
	if err != nil {
		log.Printf("Reply: failed to list rooms for user %s: %v", userID, err)
		return ""
	}

	// Rooms arrive newest-first, so the first match is the latest
	// conversation with that counterpart.
	for _, room := range rooms {
		if room.Counterpart(userID) == counterpartID {
			return room.ID
		}
	}
	return ""
}

// ActiveToast returns the notification currently showing as a toast, if
// any.
func (uc *NotificationUseCase) ActiveToast(userID string) *entity.Notification {
	session := uc.session(userID)
	if session == nil {
		return nil
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.activeToastID == "" {
		return nil
	}
	notification, ok := session.byID[session.activeToastID]
	if !ok {
		return nil
	}
	copied := *notification
	return &copied
}
