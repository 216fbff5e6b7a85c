package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type SeedResult int

const (
	SeedUnchanged SeedResult = iota
	SeedCreated
	SeedUpdated
)

func (r SeedResult) String() string {
	switch r {
	case SeedCreated:
		return "created"
	case SeedUpdated:
		return "updated"
	}
	return "unchanged"
}

// SeedAdmin makes sure the bootstrap admin exists, has the admin role and
// carries a hash of the configured password.
func SeedAdmin(ctx context.Context, store Store, email, password, name string) (SeedResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return SeedUnchanged, errors.New("admin email and password are required")
	}

	var existing models.User
	err := store.FindOne(ctx, CollectionUsers, Filter{"email": email}, &existing)
	switch {
	case errors.Is(err, ErrNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return SeedUnchanged, err
		}
		admin := models.User{
			ID:           uuid.NewString(),
			Name:         name,
			Email:        email,
			Role:         models.RoleAdmin,
			PasswordHash: string(hash),
			CreatedAt:    time.Now().UTC(),
		}
		if _, err := store.InsertOne(ctx, CollectionUsers, admin); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return SeedUnchanged, nil
			}
			return SeedUnchanged, err
		}
		log.Info().Str("email", email).Msg("admin user seeded successfully")
		return SeedCreated, nil
	case err != nil:
		return SeedUnchanged, err
	}

	set := map[string]any{}
	if existing.Role != models.RoleAdmin {
		set["role"] = models.RoleAdmin
	}
	if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return SeedUnchanged, err
		}
		set["passwordHash"] = string(hash)
	}
	if len(set) == 0 {
		log.Debug().Str("email", email).Msg("admin user already exists")
		return SeedUnchanged, nil
	}
	if _, err := store.UpdateOne(ctx, CollectionUsers, Filter{"_id": existing.ID}, Update{Set: set}); err != nil {
		return SeedUnchanged, err
	}
	log.Info().Str("email", email).Msg("admin user updated")
	return SeedUpdated, nil
}
