package rbac_test

import (
	"context"
	"testing"

	"projecthub/internal/rbac"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_ScenarioOrdering(t *testing.T) {
	store := newMemStore()
	u1, u2, u3 := uuid.New(), uuid.New(), uuid.New()
	p := store.addProject(u1, date(2024, 1, 1))
	store.addMember(p, u3, rbac.RoleViewer, date(2024, 1, 15))
	store.addMember(p, u2, rbac.RoleAdmin, date(2024, 2, 1))

	entries, err := rbac.NewDirectory(store).ListMembers(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, u1, entries[0].Principal.ID)
	assert.Equal(t, rbac.RoleOwner, entries[0].Role)
	assert.Equal(t, date(2024, 1, 1), entries[0].JoinedAt)

	assert.Equal(t, u2, entries[1].Principal.ID)
	assert.Equal(t, rbac.RoleAdmin, entries[1].Role)

	assert.Equal(t, u3, entries[2].Principal.ID)
	assert.Equal(t, rbac.RoleViewer, entries[2].Role)
}

func TestDirectory_JoinTimeBreaksTies(t *testing.T) {
	store := newMemStore()
	owner := uuid.New()
	late, early, dev := uuid.New(), uuid.New(), uuid.New()
	p := store.addProject(owner, date(2024, 1, 1))
	store.addMember(p, late, rbac.RoleViewer, date(2024, 3, 1))
	store.addMember(p, dev, rbac.RoleDeveloper, date(2024, 4, 1))
	store.addMember(p, early, rbac.RoleViewer, date(2024, 2, 1))

	entries, err := rbac.NewDirectory(store).ListMembers(context.Background(), p)
	require.NoError(t, err)

	var ids []uuid.UUID
	for _, e := range entries {
		ids = append(ids, e.Principal.ID)
	}
	assert.Equal(t, []uuid.UUID{owner, dev, early, late}, ids)
}

func TestDirectory_OwnerOnly(t *testing.T) {
	store := newMemStore()
	owner := uuid.New()
	p := store.addProject(owner, date(2024, 1, 1))

	entries, err := rbac.NewDirectory(store).ListMembers(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rbac.RoleOwner, entries[0].Role)
}

func TestDirectory_OwnerComesFromProjectNotRows(t *testing.T) {
	store := newMemStore()
	owner := uuid.New()
	p := store.addProject(owner, date(2024, 1, 1))
	store.addMember(p, owner, rbac.RoleAdmin, date(2024, 1, 2))

	entries, err := rbac.NewDirectory(store).ListMembers(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, owner, entries[0].Principal.ID)
	assert.Equal(t, rbac.RoleOwner, entries[0].Role)
}

func TestDirectory_OwnerRowIsInvariantViolation(t *testing.T) {
	store := newMemStore()
	p := store.addProject(uuid.New(), date(2024, 1, 1))
	store.addMember(p, uuid.New(), rbac.RoleOwner, date(2024, 1, 2))

	_, err := rbac.NewDirectory(store).ListMembers(context.Background(), p)
	assert.ErrorIs(t, err, rbac.ErrInvariantViolation)
}

func TestDirectory_UnknownProject(t *testing.T) {
	_, err := rbac.NewDirectory(newMemStore()).ListMembers(context.Background(), uuid.New())
	assert.ErrorIs(t, err, rbac.ErrProjectNotFound)
}
