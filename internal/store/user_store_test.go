package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fallincloud/travelog/internal/domain"
)

func TestUserStoreCreateAndGet(t *testing.T) {
	store := NewUserStore(openTestDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, "alice", "alice@example.com", "$2a$10$hash", domain.RoleAdmin)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.RoleAdmin, created.Role)

	byName, err := store.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, created.ID, byName.ID)

	missing, err := store.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserStoreUniqueConstraints(t *testing.T) {
	store := NewUserStore(openTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, "alice", "alice@example.com", "hash", domain.RoleViewer)
	require.NoError(t, err)

	_, err = store.Create(ctx, "alice", "other@example.com", "hash", domain.RoleViewer)
	assert.Error(t, err)

	_, err = store.Create(ctx, "other", "alice@example.com", "hash", domain.RoleViewer)
	assert.Error(t, err)
}

func TestUserStoreGetByUsernameOrEmail(t *testing.T) {
	store := NewUserStore(openTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, "alice", "alice@example.com", "hash", domain.RoleViewer)
	require.NoError(t, err)

	byName, err := store.GetByUsernameOrEmail(ctx, "alice", "nope@example.com")
	require.NoError(t, err)
	assert.NotNil(t, byName)

	byEmail, err := store.GetByUsernameOrEmail(ctx, "nobody", "alice@example.com")
	require.NoError(t, err)
	assert.NotNil(t, byEmail)

	neither, err := store.GetByUsernameOrEmail(ctx, "nobody", "nope@example.com")
	require.NoError(t, err)
	assert.Nil(t, neither)
}

func TestUserStoreCountAdmins(t *testing.T) {
	store := NewUserStore(openTestDB(t))
	ctx := context.Background()

	count, err := store.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = store.Create(ctx, "alice", "alice@example.com", "hash", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = store.Create(ctx, "bob", "bob@example.com", "hash", domain.RoleViewer)
	require.NoError(t, err)

	count, err = store.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUserStoreList(t *testing.T) {
	store := NewUserStore(openTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, "alice", "alice@example.com", "hash", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = store.Create(ctx, "bob", "bob@example.com", "hash", domain.RoleViewer)
	require.NoError(t, err)

	users, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}
