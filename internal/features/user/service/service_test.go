package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-bot-backend/internal/features/user/models"
	"community-bot-backend/internal/platform/storage"
)

func newTestRegistry() RegistryService {
	return NewRegistryService(storage.NewMemoryStore())
}

func TestEnsureRegisteredCreatesNewUser(t *testing.T) {
	svc := newTestRegistry()
	ctx := context.Background()

	user, isNew, err := svc.EnsureRegistered(ctx, "100", "Alice")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, models.StatusNew, user.Status)
	assert.WithinDuration(t, time.Now(), user.JoinedDate, time.Minute)
}

func TestEnsureRegisteredIsIdempotent(t *testing.T) {
	svc := newTestRegistry()
	ctx := context.Background()

	created, isNew, err := svc.EnsureRegistered(ctx, "100", "Alice")
	require.NoError(t, err)
	require.True(t, isNew)

	// A repeat call with a different display name must not mutate the record.
	again, isNew, err := svc.EnsureRegistered(ctx, "100", "Alicia")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.Name, again.Name)
	assert.Equal(t, created.Status, again.Status)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestStatusTransitions(t *testing.T) {
	svc := newTestRegistry()
	ctx := context.Background()

	_, _, err := svc.EnsureRegistered(ctx, "100", "Alice")
	require.NoError(t, err)

	require.NoError(t, svc.MarkPending(ctx, "100"))
	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingVerification, users["100"].Status)

	require.NoError(t, svc.MarkVerified(ctx, "100"))
	users, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, users["100"].Status)
}

func TestStatusTransitionUnknownUserIsNoOp(t *testing.T) {
	svc := newTestRegistry()
	ctx := context.Background()

	require.NoError(t, svc.MarkVerified(ctx, "999"))

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
