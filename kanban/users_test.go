package kanban_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/corkboard/kanban"
	"github.com/corkboard/corkboard/store"
)

func TestCreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	created := h.seedUser(t, "u1", "ann@example.com", "Ann")
	assert.Equal(t, "u1", created.UID)
	assert.Equal(t, kanban.TypeUser, created.EntityType)
	assert.NotEmpty(t, created.CreatedAt)

	got, err := h.svc.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, "Ann", got.Name)
}

func TestGetUserMissing(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// Creating the same uid twice refreshes the profile in place.
func TestCreateUserOverwrites(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	h.seedUser(t, "u1", "ann@example.com", "Ann")
	before := h.client.Len()
	h.seedUser(t, "u1", "ann@example.com", "Ann Smith")

	assert.Equal(t, before, h.client.Len())
	got, err := h.svc.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ann Smith", got.Name)
}

func TestGetUserByEmail(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	h.seedUser(t, "u1", "ann@example.com", "Ann")
	h.seedUser(t, "u2", "bob@example.com", "Bob")

	got, err := h.svc.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UID)

	_, err = h.svc.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
