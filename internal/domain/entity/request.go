package entity

import "time"

// Request statuses.
const (
	RequestStatusOpen      = "open"
	RequestStatusMatched   = "matched"
	RequestStatusCompleted = "completed"
	RequestStatusCancelled = "cancelled"
)

type Request struct {
	ID          string `json:"id" firestore:"id"`
	UserID      string `json:"user_id" firestore:"userId"`
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description,omitempty" firestore:"description,omitempty"`
	CategoryID  string `json:"category_id,omitempty" firestore:"categoryId,omitempty"`

	LocationLat float64 `json:"location_lat,omitempty" firestore:"locationLat,omitempty"`
	LocationLng float64 `json:"location_lng,omitempty" firestore:"locationLng,omitempty"`
	Address     string  `json:"address,omitempty" firestore:"address,omitempty"`

	BudgetMin   float64 `json:"budget_min,omitempty" firestore:"budgetMin,omitempty"`
	BudgetMax   float64 `json:"budget_max,omitempty" firestore:"budgetMax,omitempty"`
	ProductLink string  `json:"product_link,omitempty" firestore:"productLink,omitempty"`

	Status    string    `json:"status" firestore:"status"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
