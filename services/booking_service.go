package services

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
)

type BookingService struct {
	store    database.Store
	sessions *SessionService
	now      func() time.Time
}

func NewBookingService(store database.Store, sessions *SessionService) *BookingService {
	return &BookingService{store: store, sessions: sessions, now: time.Now}
}

// Book records a student's seat in an approved session. An empty name is
// filled from the student's account when one exists.
func (s *BookingService) Book(ctx context.Context, studentEmail, studentName, sessionID string) (*models.BookedSession, error) {
	studentEmail = normalizeEmail(studentEmail)
	if studentEmail == "" {
		return nil, Invalid("studentEmail is required")
	}
	session, err := s.sessions.GetApproved(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	name, err := s.studentName(ctx, studentEmail, studentName)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	b := models.BookedSession{
		ID:           uuid.NewString(),
		StudentEmail: studentEmail,
		StudentName:  name,
		SessionID:    session.ID,
		TutorEmail:   session.TutorEmail,
		Date:         now.Format(time.RFC3339),
		CreatedAt:    now,
	}
	if _, err := s.store.InsertOne(ctx, database.CollectionBookedSessions, b); err != nil {
		return nil, storeFailure("insert booking", err)
	}
	return &b, nil
}

func (s *BookingService) studentName(ctx context.Context, email, name string) (string, error) {
	if name = s.sessions.clean.Text(name); name != "" {
		return name, nil
	}
	user, err := s.sessions.users.GetByEmail(ctx, email)
	if KindOf(err) == KindNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

func (s *BookingService) List(ctx context.Context) ([]models.BookedSession, error) {
	return s.find(ctx, database.Filter{})
}

func (s *BookingService) ListByStudent(ctx context.Context, studentEmail string) ([]models.BookedSession, error) {
	studentEmail = normalizeEmail(studentEmail)
	if studentEmail == "" {
		return nil, Invalid("email is required")
	}
	return s.find(ctx, database.Filter{"studentEmail": studentEmail})
}

// Lookup finds a student's booking for one session.
func (s *BookingService) Lookup(ctx context.Context, sessionID, studentEmail string) (*models.BookedSession, error) {
	var b models.BookedSession
	filter := database.Filter{"sessionId": sessionID, "studentEmail": normalizeEmail(studentEmail)}
	err := s.store.FindOne(ctx, database.CollectionBookedSessions, filter, &b)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFound("booking")
	}
	if err != nil {
		return nil, storeFailure("find booking", err)
	}
	return &b, nil
}

func (s *BookingService) find(ctx context.Context, filter database.Filter) ([]models.BookedSession, error) {
	out := make([]models.BookedSession, 0)
	if err := s.store.Find(ctx, database.CollectionBookedSessions, filter, database.FindOptions{}, &out); err != nil {
		return nil, storeFailure("list bookings", err)
	}
	return out, nil
}
