package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startMongo(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo container test in short mode")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)
	return "mongodb://" + host + ":" + port.Port()
}

func TestMongoStore(t *testing.T) {
	uri := startMongo(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := database.ConnectMongo(ctx, uri, "educonnect_test")
	require.NoError(t, err)
	defer s.Close(ctx)

	require.NoError(t, s.EnsureIndexes(ctx, database.Indexes))
	seedItems(t, s)

	var got []item
	require.NoError(t, s.Find(ctx, "items", database.Filter{"name": database.Contains{Text: "gam"}}, database.FindOptions{}, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)

	res, err := s.UpdateOne(ctx, "items", database.Filter{"_id": "2"}, database.Update{Set: map[string]any{"score": 9}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Modified)

	_, err = s.InsertOne(ctx, database.CollectionUsers, map[string]any{"_id": "u1", "email": "a@example.com"})
	require.NoError(t, err)
	_, err = s.InsertOne(ctx, database.CollectionUsers, map[string]any{"_id": "u2", "email": "a@example.com"})
	assert.ErrorIs(t, err, database.ErrDuplicate)

	n, err := s.DeleteOne(ctx, "items", database.Filter{"_id": "1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, s.Ping(ctx))

	assertTimeOrder(t, s)
}
