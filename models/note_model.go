package models

import "time"

type Note struct {
	ID          string    `json:"_id" bson:"_id"`
	UserEmail   string    `json:"userEmail" bson:"userEmail"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
