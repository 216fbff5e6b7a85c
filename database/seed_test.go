package database_test

import (
	"context"
	"testing"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	require.NoError(t, store.EnsureIndexes(ctx, database.Indexes))

	res, err := database.SeedAdmin(ctx, store, "Admin@Example.com", "s3cret", "Admin")
	require.NoError(t, err)
	assert.Equal(t, database.SeedCreated, res)

	res, err = database.SeedAdmin(ctx, store, "admin@example.com", "s3cret", "Admin")
	require.NoError(t, err)
	assert.Equal(t, database.SeedUnchanged, res)

	res, err = database.SeedAdmin(ctx, store, "admin@example.com", "rotated", "Admin")
	require.NoError(t, err)
	assert.Equal(t, database.SeedUpdated, res)

	var admin models.User
	require.NoError(t, store.FindOne(ctx, database.CollectionUsers, database.Filter{"email": "admin@example.com"}, &admin))
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("rotated")))

	n, err := store.Count(ctx, database.CollectionUsers, database.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSeedAdminPromotesExistingUser(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	_, err := store.InsertOne(ctx, database.CollectionUsers, models.User{ID: "u1", Email: "boss@example.com", Role: models.RoleStudent})
	require.NoError(t, err)

	res, err := database.SeedAdmin(ctx, store, "boss@example.com", "pw", "Boss")
	require.NoError(t, err)
	assert.Equal(t, database.SeedUpdated, res)

	var u models.User
	require.NoError(t, store.FindOne(ctx, database.CollectionUsers, database.Filter{"_id": "u1"}, &u))
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestSeedAdminNeedsCredentials(t *testing.T) {
	_, err := database.SeedAdmin(context.Background(), database.NewMemoryStore(), "", "", "")
	assert.Error(t, err)
}
