package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *database.MemoryStore
	clean    *services.Sanitizer
	users    *services.UserService
	sessions *services.SessionService
	events   *recordingSink
}

type recordingSink struct {
	mu     sync.Mutex
	events []models.SessionEvent
}

func (r *recordingSink) SessionChanged(_ context.Context, ev models.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) all() []models.SessionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.SessionEvent(nil), r.events...)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := database.NewMemoryStore()
	require.NoError(t, store.EnsureIndexes(context.Background(), database.Indexes))
	clean := services.NewSanitizer()
	users := services.NewUserService(store, clean)
	events := &recordingSink{}
	return &fixture{
		store:    store,
		clean:    clean,
		users:    users,
		sessions: services.NewSessionService(store, users, clean, events),
		events:   events,
	}
}

func (f *fixture) addUser(t *testing.T, email string, role models.Role) models.User {
	t.Helper()
	u := models.User{ID: uuid.NewString(), Name: email, Email: email, Role: role, CreatedAt: time.Now().UTC()}
	_, err := f.store.InsertOne(context.Background(), database.CollectionUsers, u)
	require.NoError(t, err)
	return u
}

func (f *fixture) addSession(t *testing.T, tutor string, status models.SessionStatus) models.Session {
	t.Helper()
	s := models.Session{
		ID:          uuid.NewString(),
		Title:       "Intro to Go",
		TutorEmail:  tutor,
		SessionType: models.SessionPaid,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := f.store.InsertOne(context.Background(), database.CollectionSessions, s)
	require.NoError(t, err)
	return s
}
