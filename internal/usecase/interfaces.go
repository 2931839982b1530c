package usecase

import (
	"context"

	"dealsplit/internal/infrastructure/firebase"
)

// AuthClient is the slice of the identity provider the usecases need.
type AuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	GetUser(ctx context.Context, uid string) (*firebase.AuthUser, error)
}
