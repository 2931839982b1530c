package entity

import "time"

type Category struct {
	ID        string    `json:"id" firestore:"id"`
	Name      string    `json:"name" firestore:"name"`
	Slug      string    `json:"slug" firestore:"slug"`
	Icon      string    `json:"icon,omitempty" firestore:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
