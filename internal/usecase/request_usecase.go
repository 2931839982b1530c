package usecase

import (
	"context"

	"dealsplit/internal/domain/entity"
	"dealsplit/internal/domain/repository"
	"dealsplit/pkg/errors"
	"dealsplit/pkg/utils"
)

type RequestUseCase struct {
	requestRepo  repository.RequestRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
}

func NewRequestUseCase(
	requestRepo repository.RequestRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
) *RequestUseCase {
	return &RequestUseCase{
		requestRepo:  requestRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
	}
}

type CreateRequestInput struct {
	Title       string  `json:"title" validate:"required,min=3,max=120"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	CategoryID  string  `json:"category_id"`
	LocationLat float64 `json:"location_lat" validate:"omitempty,latitude"`
	LocationLng float64 `json:"location_lng" validate:"omitempty,longitude"`
	Address     string  `json:"address"`
	BudgetMin   float64 `json:"budget_min" validate:"omitempty,gte=0"`
	BudgetMax   float64 `json:"budget_max" validate:"omitempty,gte=0"`
	ProductLink string  `json:"product_link" validate:"omitempty,url"`
}

type ListRequestsInput struct {
	CategoryID string
	Status     string
	UserID     string

	// Optional proximity filter. RadiusKm of zero means no filter.
	Lat      float64
	Lng      float64
	RadiusKm float64

	Page     int
	PageSize int
}

type RequestResponse struct {
	*entity.Request
	Owner    *entity.User `json:"owner,omitempty"`
	Distance float64      `json:"distance_km,omitempty"`
}

func (uc *RequestUseCase) Create(ctx context.Context, userID string, input CreateRequestInput) (*entity.Request, error) {
	if input.BudgetMin > 0 && input.BudgetMax > 0 && input.BudgetMin > input.BudgetMax {
		return nil, errors.BadRequest("budget_min cannot exceed budget_max", nil)
	}

	if input.CategoryID != "" {
		if _, err := uc.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	request := &entity.Request{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		LocationLat: input.LocationLat,
		LocationLng: input.LocationLng,
		Address:     input.Address,
		BudgetMin:   input.BudgetMin,
		BudgetMax:   input.BudgetMax,
		ProductLink: input.ProductLink,
		Status:      entity.RequestStatusOpen,
	}

	if err := uc.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

func (uc *RequestUseCase) GetByID(ctx context.Context, id string) (*RequestResponse, error) {
	request, err := uc.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &RequestResponse{Request: request}
	if owner, err := uc.userRepo.GetByID(ctx, request.UserID); err == nil {
		resp.Owner = owner
	}

	return resp, nil
}

func (uc *RequestUseCase) List(ctx context.Context, input ListRequestsInput) ([]*RequestResponse, int64, error) {
	filter := repository.RequestFilter{
		CategoryID: input.CategoryID,
		Status:     input.Status,
		UserID:     input.UserID,
	}

	limit := input.PageSize
	offset := (input.Page - 1) * input.PageSize

	// Proximity filtering happens after the store query, so fetch the
	// whole filtered set and page in memory.
	if input.RadiusKm > 0 {
		limit = 0
		offset = 0
	}

	requests, total, err := uc.requestRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*RequestResponse, 0, len(requests))
	for _, request := range requests {
		resp := &RequestResponse{Request: request}
		if input.RadiusKm > 0 {
			if request.LocationLat == 0 && request.LocationLng == 0 {
				continue
			}
			distance := utils.HaversineKm(input.Lat, input.Lng, request.LocationLat, request.LocationLng)
			if distance > input.RadiusKm {
				continue
			}
			resp.Distance = distance
		}
		responses = append(responses, resp)
	}

	if input.RadiusKm > 0 {
		total = int64(len(responses))
		start := (input.Page - 1) * input.PageSize
		end := start + input.PageSize
		if start > len(responses) {
			start = len(responses)
		}
		if end > len(responses) {
			end = len(responses)
		}
		responses = responses[start:end]
	}

	return responses, total, nil
}

func (uc *RequestUseCase) UpdateStatus(ctx context.Context, userID, id, newStatus string) (*entity.Request, error) {
	switch newStatus {
	case entity.RequestStatusOpen, entity.RequestStatusMatched, entity.RequestStatusCompleted, entity.RequestStatusCancelled:
	default:
		return nil, errors.BadRequest("Invalid request status", nil)
	}

	request, err := uc.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.UserID != userID {
		return nil, errors.Forbidden("Only the request owner can change its status", nil)
	}

	request.Status = newStatus
	if err := uc.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

func (uc *RequestUseCase) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	return uc.categoryRepo.List(ctx)
}
