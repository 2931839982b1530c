package repository

import (
	"context"

	"dealsplit/internal/domain/entity"
)

// RequestFilter narrows List results. Zero values mean "no filter".
type RequestFilter struct {
	CategoryID string
	Status     string
	UserID     string
}

type RequestRepository interface {
	Create(ctx context.Context, request *entity.Request) error
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	List(ctx context.Context, filter RequestFilter, limit, offset int) ([]*entity.Request, int64, error)
	Update(ctx context.Context, request *entity.Request) error
	Delete(ctx context.Context, id string) error
}
