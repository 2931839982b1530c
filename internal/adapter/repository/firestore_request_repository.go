package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"dealsplit/internal/domain/entity"
	"dealsplit/internal/domain/repository"
	"dealsplit/pkg/errors"
)

type firestoreRequestRepository struct {
	client *firestore.Client
}

func NewFirestoreRequestRepository(client *firestore.Client) repository.RequestRepository {
	return &firestoreRequestRepository{
		client: client,
	}
}

func (r *firestoreRequestRepository) Create(ctx context.Context, request *entity.Request) error {
	if request.ID == "" {
		request.ID = uuid.New().String()
	}

	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = entity.RequestStatusOpen
	}

	_, err := r.client.Collection("requests").Doc(request.ID).Set(ctx, request)
	if err != nil {
		return errors.Internal("Failed to create request", err)
	}

	return nil
}

func (r *firestoreRequestRepository) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	doc, err := r.client.Collection("requests").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Request", nil)
		}
		return nil, errors.Internal("Failed to get request", err)
	}

	var request entity.Request
	if err := doc.DataTo(&request); err != nil {
		return nil, errors.Internal("Failed to parse request data", err)
	}

	return &request, nil
}

func (r *firestoreRequestRepository) List(ctx context.Context, filter repository.RequestFilter, limit, offset int) ([]*entity.Request, int64, error) {
	query := r.client.Collection("requests").Query

	if filter.CategoryID != "" {
		query = query.Where("categoryId", "==", filter.CategoryID)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", filter.Status)
	}
	if filter.UserID != "" {
		query = query.Where("userId", "==", filter.UserID)
	}

	query = query.OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching requests: %v", err)
		return nil, 0, errors.Internal("Failed to fetch requests", err)
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

	var requests []*entity.Request
	for i := start; i < end; i++ {
		var request entity.Request
		if err := allDocs[i].DataTo(&request); err != nil {
			log.Printf("Error parsing request data: %v", err)
			continue
		}
		requests = append(requests, &request)
	}

	return requests, total, nil
}

func (r *firestoreRequestRepository) Update(ctx context.Context, request *entity.Request) error {
	request.UpdatedAt = time.Now()

	_, err := r.client.Collection("requests").Doc(request.ID).Set(ctx, request)
	if err != nil {
		return errors.Internal("Failed to update request", err)
	}

	return nil
}

func (r *firestoreRequestRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("requests").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete request", err)
	}

	return nil
}
