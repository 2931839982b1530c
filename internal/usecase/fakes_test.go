package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"dealsplit/internal/domain/entity"
	"dealsplit/internal/domain/repository"
	"dealsplit/internal/infrastructure/firebase"
	"dealsplit/pkg/errors"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*entity.User)
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*entity.Request
}

func newFakeRequestRepo(requests ...*entity.Request) *fakeRequestRepo {
	repo := &fakeRequestRepo{requests: make(map[string]*entity.Request)}
	for _, req := range requests {
		repo.requests[req.ID] = req
	}
	return repo
}

func (r *fakeRequestRepo) Create(ctx context.Context, request *entity.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = entity.RequestStatusOpen
	}
	r.requests[request.ID] = request
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if request, ok := r.requests[id]; ok {
		return request, nil
	}
	return nil, errors.NotFound("Request", nil)
}

func (r *fakeRequestRepo) List(ctx context.Context, filter repository.RequestFilter, limit, offset int) ([]*entity.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Request
	for _, request := range r.requests {
		if filter.CategoryID != "" && request.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		if filter.UserID != "" && request.UserID != filter.UserID {
			continue
		}
		out = append(out, request)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeRequestRepo) Update(ctx context.Context, request *entity.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[request.ID] = request
	return nil
}

func (r *fakeRequestRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, id)
	return nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*entity.Category
}

func newFakeCategoryRepo(categories ...*entity.Category) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{categories: make(map[string]*entity.Category)}
	for _, c := range categories {
		repo.categories[c.ID] = c
	}
	return repo
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.ID] = category
	return nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if category, ok := r.categories[id]; ok {
		return category, nil
	}
	return nil, errors.NotFound("Category", nil)
}

func (r *fakeCategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Category
	for _, category := range r.categories {
		out = append(out, category)
	}
	return out, nil
}

type fakeChatRepo struct {
	mu       sync.Mutex
	rooms    map[string]*entity.ChatRoom
	messages map[string][]*entity.Message

	// createMessageErr makes CreateMessage fail when set.
	createMessageErr error
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		rooms:    make(map[string]*entity.ChatRoom),
		messages: make(map[string][]*entity.Message),
	}
}

func (r *fakeChatRepo) CreateRoom(ctx context.Context, room *entity.ChatRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now
	r.rooms[room.ID] = room
	return nil
}

func (r *fakeChatRepo) GetRoom(ctx context.Context, id string) (*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[id]; ok {
		return room, nil
	}
	return nil, errors.NotFound("Chat room", nil)
}

func (r *fakeChatRepo) GetRoomByTriple(ctx context.Context, requestID, buyerID, sellerID string) (*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.RequestID == requestID && room.BuyerID == buyerID && room.SellerID == sellerID {
			return room, nil
		}
	}
	return nil, errors.NotFound("Chat room", nil)
}

func (r *fakeChatRepo) ListRoomsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatRoom
	for _, room := range r.rooms {
		if room.HasParticipant(userID) {
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeChatRepo) UpdateRoom(ctx context.Context, room *entity.ChatRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room.UpdatedAt = time.Now()
	r.rooms[room.ID] = room
	return nil
}

func (r *fakeChatRepo) UpdateLastRead(ctx context.Context, roomID, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return errors.NotFound("Chat room", nil)
	}
	switch userID {
	case room.BuyerID:
		room.BuyerLastReadAt = &at
	case room.SellerID:
		room.SellerLastReadAt = &at
	default:
		return errors.Forbidden("User is not a participant of this chat room", nil)
	}
	return nil
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createMessageErr != nil {
		return r.createMessageErr
	}
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	r.messages[message.RoomID] = append(r.messages[message.RoomID], message)
	return nil
}

func (r *fakeChatRepo) GetMessageByClientKey(ctx context.Context, roomID, clientKey string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, message := range r.messages[roomID] {
		if message.ClientKey == clientKey {
			return message, nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := append([]*entity.Message(nil), r.messages[roomID]...)
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *fakeChatRepo) LatestMessage(ctx context.Context, roomID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *entity.Message
	for _, message := range r.messages[roomID] {
		if latest == nil || message.CreatedAt.After(latest.CreatedAt) {
			latest = message
		}
	}
	if latest == nil {
		return nil, errors.NotFound("Message", nil)
	}
	return latest, nil
}

func (r *fakeChatRepo) LatestMessageBySender(ctx context.Context, roomID, senderID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *entity.Message
	for _, message := range r.messages[roomID] {
		if message.SenderID != senderID {
			continue
		}
		if latest == nil || message.CreatedAt.After(latest.CreatedAt) {
			latest = message
		}
	}
	if latest == nil {
		return nil, errors.NotFound("Message", nil)
	}
	return latest, nil
}

func (r *fakeChatRepo) CountMessagesAfter(ctx context.Context, roomID, excludeSenderID string, after *time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, message := range r.messages[roomID] {
		if message.SenderID == excludeSenderID {
			continue
		}
		if after != nil && !message.CreatedAt.After(*after) {
			continue
		}
		count++
	}
	return count, nil
}

func (r *fakeChatRepo) RecentMessagesByOthers(ctx context.Context, roomID, excludeSenderID string, limit int) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Message
	for _, message := range r.messages[roomID] {
		if message.SenderID == excludeSenderID {
			continue
		}
		out = append(out, message)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// fakeAuthClient serves identity lookups from a fixed map.
type fakeAuthClient struct {
	users map[string]*firebase.AuthUser
}

func (f *fakeAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	return uuid.New().String(), nil
}

func (f *fakeAuthClient) GetUser(ctx context.Context, uid string) (*firebase.AuthUser, error) {
	if user, ok := f.users[uid]; ok {
		return user, nil
	}
	return nil, errors.NotFound("User", nil)
}

// fakeFeed records published messages so tests can assert on the fan-out
// path without Redis.
type fakeFeed struct {
	mu        sync.Mutex
	published []*entity.Message
}

func (f *fakeFeed) Publish(ctx context.Context, message *entity.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, message)
	return nil
}

func (f *fakeFeed) Subscribe(ctx context.Context, handler func(*entity.Message)) {}

func (f *fakeFeed) Close() error { return nil }

func (f *fakeFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}
