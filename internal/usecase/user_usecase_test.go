package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsplit/internal/domain/entity"
	"dealsplit/internal/infrastructure/firebase"
)

func TestGetProfileReturnsStoredUser(t *testing.T) {
	userRepo := newFakeUserRepo(&entity.User{ID: "user-1", Username: "alice"})
	uc := NewUserUseCase(userRepo, &fakeAuthClient{})

	user, err := uc.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestGetProfileProvisionsFirstSeenUID(t *testing.T) {
	userRepo := newFakeUserRepo()
	auth := &fakeAuthClient{users: map[string]*firebase.AuthUser{
		"fb-uid-1": {
			UID:         "fb-uid-1",
			Email:       "carol@example.com",
			DisplayName: "carol",
			PhotoURL:    "https://cdn.example.com/carol.png",
		},
	}}
	uc := NewUserUseCase(userRepo, auth)
	ctx := context.Background()

	user, err := uc.GetProfile(ctx, "fb-uid-1")
	require.NoError(t, err)
	assert.Equal(t, "fb-uid-1", user.ID)
	assert.Equal(t, "carol@example.com", user.Email)
	assert.Equal(t, "carol", user.Username)
	assert.Equal(t, "https://cdn.example.com/carol.png", user.AvatarURL)

	// The provisioned profile is persisted, not rebuilt per call.
	stored, err := userRepo.GetByID(ctx, "fb-uid-1")
	require.NoError(t, err)
	assert.Equal(t, user, stored)
}

func TestGetProfileProvisionsWithoutIdentityDetails(t *testing.T) {
	userRepo := newFakeUserRepo()
	uc := NewUserUseCase(userRepo, &fakeAuthClient{})

	user, err := uc.GetProfile(context.Background(), "fb-uid-2")
	require.NoError(t, err)
	assert.Equal(t, "fb-uid-2", user.ID)
	assert.Empty(t, user.Email)
	assert.Equal(t, "Unknown User", user.DisplayName())
}

func TestUpdateProfileOnFirstSeenUID(t *testing.T) {
	userRepo := newFakeUserRepo()
	uc := NewUserUseCase(userRepo, &fakeAuthClient{})

	user, err := uc.UpdateProfile(context.Background(), "fb-uid-3", UpdateProfileInput{
		Username: "dana",
		Bio:      "Bulk-buy coordinator",
	})
	require.NoError(t, err)
	assert.Equal(t, "dana", user.Username)
	assert.Equal(t, "Bulk-buy coordinator", user.Bio)
}
