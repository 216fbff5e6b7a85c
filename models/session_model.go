package models

import "time"

type SessionStatus string

const (
	SessionPending  SessionStatus = "pending"
	SessionApproved SessionStatus = "approved"
	SessionRejected SessionStatus = "rejected"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionPending, SessionApproved, SessionRejected:
		return true
	}
	return false
}

type SessionType string

const (
	SessionFree SessionType = "free"
	SessionPaid SessionType = "paid"
)

// Session is a tutoring offering, not an HTTP session.
type Session struct {
	ID                    string        `json:"_id" bson:"_id"`
	Title                 string        `json:"title" bson:"title"`
	Description           string        `json:"description,omitempty" bson:"description,omitempty"`
	TutorName             string        `json:"tutorName,omitempty" bson:"tutorName,omitempty"`
	TutorEmail            string        `json:"tutorEmail" bson:"tutorEmail"`
	RegistrationStartDate string        `json:"registrationStartDate,omitempty" bson:"registrationStartDate,omitempty"`
	RegistrationEndDate   string        `json:"registrationEndDate,omitempty" bson:"registrationEndDate,omitempty"`
	ClassStartDate        string        `json:"classStartDate,omitempty" bson:"classStartDate,omitempty"`
	ClassEndDate          string        `json:"classEndDate,omitempty" bson:"classEndDate,omitempty"`
	Duration              string        `json:"duration,omitempty" bson:"duration,omitempty"`
	Image                 string        `json:"image,omitempty" bson:"image,omitempty"`
	SessionType           SessionType   `json:"sessionType,omitempty" bson:"sessionType,omitempty"`
	RegistrationFee       float64       `json:"registrationFee" bson:"registrationFee"`
	Status                SessionStatus `json:"status" bson:"status"`
	RejectionReason       string        `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	Feedback              string        `json:"feedback,omitempty" bson:"feedback,omitempty"`
	CreatedAt             time.Time     `json:"createdAt" bson:"createdAt"`
}

// SessionEvent is emitted after every lifecycle transition.
type SessionEvent struct {
	SessionID  string        `json:"sessionId"`
	Title      string        `json:"title"`
	TutorEmail string        `json:"tutorEmail"`
	From       SessionStatus `json:"from"`
	To         SessionStatus `json:"to"`
	Fee        float64       `json:"registrationFee,omitempty"`
	Reason     string        `json:"rejectionReason,omitempty"`
	Feedback   string        `json:"feedback,omitempty"`
	At         time.Time     `json:"at"`
}
