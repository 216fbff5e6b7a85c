package models

import "time"

type BookedSession struct {
	ID           string    `json:"_id" bson:"_id"`
	StudentEmail string    `json:"studentEmail" bson:"studentEmail"`
	StudentName  string    `json:"studentName,omitempty" bson:"studentName,omitempty"`
	SessionID    string    `json:"sessionId" bson:"sessionId"`
	TutorEmail   string    `json:"tutorEmail" bson:"tutorEmail"`
	Date         string    `json:"date" bson:"date"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
