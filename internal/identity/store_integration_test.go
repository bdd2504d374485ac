//go:build integration

package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gramseva/internal/identity"
	"gramseva/pkg/platform/sentinel"
	"gramseva/pkg/testutil/containers"
)

func TestPostgresProfileStore(t *testing.T) {
	db := containers.StartPostgres(t)
	ctx := context.Background()
	store := identity.NewPostgresProfileStore(db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	profile := identity.Profile{
		ID:        "user-1",
		FullName:  "Asha Rao",
		Email:     "asha@example.com",
		Phone:     "9876543210",
		Role:      identity.RoleCitizen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Save(ctx, profile))

	found, err := store.FindByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, profile.FullName, found.FullName)
	assert.Equal(t, profile.Role, found.Role)

	found.Address = "12 Temple Street"
	found.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, store.Update(ctx, found))

	updated, err := store.FindByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "12 Temple Street", updated.Address)

	_, err = store.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	err = store.Save(ctx, profile)
	assert.ErrorIs(t, err, sentinel.ErrConflict, "duplicate id maps to conflict")
}

func TestPostgresCredentialStore(t *testing.T) {
	db := containers.StartPostgres(t)
	ctx := context.Background()
	profiles := identity.NewPostgresProfileStore(db)
	store := identity.NewPostgresCredentialStore(db)
	now := time.Now().UTC()

	require.NoError(t, profiles.Save(ctx, identity.Profile{
		ID: "user-1", FullName: "Asha Rao", Email: "asha@example.com",
		Role: identity.RoleCitizen, CreatedAt: now, UpdatedAt: now,
	}))

	creds := identity.Credentials{
		UserID:       "user-1",
		Email:        "asha@example.com",
		PasswordHash: []byte("bcrypt-hash"),
	}
	require.NoError(t, store.Save(ctx, creds))

	found, err := store.FindByEmail(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", found.UserID)
	assert.Equal(t, []byte("bcrypt-hash"), found.PasswordHash)

	_, err = store.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	err = store.Save(ctx, creds)
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestRedisSessionStore(t *testing.T) {
	client := containers.StartRedis(t)
	ctx := context.Background()
	store := identity.NewRedisSessionStore(client)

	session := identity.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Role:      identity.RoleStaff,
		Token:     "jwt",
		Device:    "Chrome on Windows",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, session))

	found, err := store.FindByID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, found.UserID)
	assert.Equal(t, session.Role, found.Role)

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.FindByID(ctx, "sess-1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	expired := session
	expired.ID = "sess-2"
	expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	assert.Error(t, store.Save(ctx, expired), "already-expired sessions are rejected")
}
