package models

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTutor, RoleAdmin:
		return true
	}
	return false
}

// User is keyed by email; the store enforces uniqueness on it.
type User struct {
	ID           string    `json:"_id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	Role         Role      `json:"role" bson:"role"`
	Image        string    `json:"image,omitempty" bson:"image,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty" bson:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
