package models

import "time"

type Material struct {
	ID         string    `json:"_id" bson:"_id"`
	Title      string    `json:"title" bson:"title"`
	TutorEmail string    `json:"tutorEmail" bson:"tutorEmail"`
	SessionID  string    `json:"sessionId,omitempty" bson:"sessionId,omitempty"`
	Link       string    `json:"link,omitempty" bson:"link,omitempty"`
	Image      string    `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}
