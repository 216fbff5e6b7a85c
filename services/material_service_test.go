package services_test

import (
	"context"
	"testing"

	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	materials := services.NewMaterialService(f.store, f.users, f.clean)
	f.addUser(t, "admin@example.com", models.RoleAdmin)
	session := f.addSession(t, "tutor@example.com", models.SessionApproved)

	m, err := materials.Create(ctx, "tutor@example.com", services.MaterialInput{
		Title:     "Slides",
		SessionID: session.ID,
		Link:      "https://drive.example.com/slides",
	})
	require.NoError(t, err)

	_, err = materials.Update(ctx, "intruder@example.com", m.ID, services.MaterialInput{Title: "Mine now"})
	assert.Equal(t, services.KindForbidden, services.KindOf(err))

	updated, err := materials.Update(ctx, "tutor@example.com", m.ID, services.MaterialInput{Title: "Slides v2"})
	require.NoError(t, err)
	assert.True(t, updated)

	bySession, err := materials.ListBySession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, bySession, 1)
	assert.Equal(t, "Slides v2", bySession[0].Title)

	byTutor, err := materials.ListByTutor(ctx, "TUTOR@example.com")
	require.NoError(t, err)
	assert.Len(t, byTutor, 1)

	require.NoError(t, materials.Delete(ctx, "admin@example.com", m.ID))
	assert.Equal(t, services.KindNotFound, services.KindOf(materials.Delete(ctx, "admin@example.com", m.ID)))
}
