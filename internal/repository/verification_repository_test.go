package repository_test

import (
	"context"
	"testing"
	"time"

	"projecthub/internal/model"
	"projecthub/internal/repository"
	"projecthub/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingUser(email string) *model.PendingUser {
	return &model.PendingUser{
		Email:          email,
		Name:           "Pending",
		HashedPassword: "hash",
		OTPHash:        "otp",
		ExpiresAt:      time.Now().Add(time.Minute),
	}
}

func TestVerificationRepository_PendingLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewVerificationRepository(db)

	require.NoError(t, repo.SavePending(ctx, pendingUser("new@example.com")))
	replacement := pendingUser("new@example.com")
	replacement.OTPHash = "second"
	require.NoError(t, repo.SavePending(ctx, replacement))

	found, err := repo.FindPending(ctx, "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "second", found.OTPHash)

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.RefreshPendingOTP(ctx, found.ID, "third", expires))
	assert.ErrorIs(t, repo.RefreshPendingOTP(ctx, uuid.New(), "x", expires), repository.ErrPendingNotFound)

	user, err := repo.Promote(ctx, found.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.NotEqual(t, uuid.Nil, user.ID)

	gone, err := repo.FindPending(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Nil(t, gone)

	_, err = repo.Promote(ctx, found.ID)
	assert.ErrorIs(t, err, repository.ErrPendingNotFound)
}

func TestVerificationRepository_PromoteExistingEmail(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewVerificationRepository(db)
	testutil.CreateUser(t, db, "taken@example.com", "Taken")

	pending := pendingUser("taken@example.com")
	require.NoError(t, repo.SavePending(ctx, pending))

	_, err := repo.Promote(ctx, pending.ID)
	assert.ErrorIs(t, err, repository.ErrUserExists)

	still, err := repo.FindPending(ctx, "taken@example.com")
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestVerificationRepository_Reset(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewVerificationRepository(db)
	user := testutil.CreateUser(t, db, "a@example.com", "A")

	require.NoError(t, repo.SaveReset(ctx, user.ID, "first", time.Now().Add(time.Minute)))
	require.NoError(t, repo.SaveReset(ctx, user.ID, "second", time.Now().Add(time.Minute)))

	reset, err := repo.FindReset(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reset)
	assert.Equal(t, "second", reset.OTPHash)

	require.NoError(t, repo.ConsumeReset(ctx, user.ID, "new-hash"))
	assert.ErrorIs(t, repo.ConsumeReset(ctx, user.ID, "again"), repository.ErrResetNotFound)

	updated, err := repository.NewUserRepository(db).GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", updated.HashedPassword)

	none, err := repo.FindReset(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}
