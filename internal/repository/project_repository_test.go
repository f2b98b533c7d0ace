package repository_test

import (
	"context"
	"testing"

	"projecthub/internal/model"
	"projecthub/internal/rbac"
	"projecthub/internal/repository"
	"projecthub/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_ListForUser(t *testing.T) {
	w := newWorld(t)
	repo := repository.NewProjectRepository(w.db)
	ctx := context.Background()

	other := testutil.CreateUser(t, w.db, "other@example.com", "Other")
	second := model.Project{Name: "Gemini", OwnerID: other.ID}
	require.NoError(t, repo.Create(ctx, &second))
	_, err := repository.NewMembershipRepository(w.db).Add(ctx, second.ID, w.owner.ID, rbac.RoleViewer)
	require.NoError(t, err)

	projects, err := repo.ListForUser(ctx, w.owner.ID)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	roles := map[uuid.UUID]rbac.Role{}
	for _, p := range projects {
		roles[p.Project.ID] = p.Role
	}
	assert.Equal(t, rbac.RoleOwner, roles[w.project.ID])
	assert.Equal(t, rbac.RoleViewer, roles[second.ID])

	projects, err = repo.ListForUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjectRepository_Update(t *testing.T) {
	w := newWorld(t)
	repo := repository.NewProjectRepository(w.db)
	ctx := context.Background()

	w.project.Name = "Artemis"
	w.project.Description = "moon"
	require.NoError(t, repo.Update(ctx, &w.project))

	stored, err := repo.GetByID(ctx, w.project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Artemis", stored.Name)
	assert.Equal(t, w.owner.ID, stored.OwnerID)

	assert.ErrorIs(t, repo.Update(ctx, &model.Project{ID: uuid.New(), Name: "x"}), repository.ErrProjectNotFound)
}

func TestProjectRepository_DeleteCascades(t *testing.T) {
	w := newWorld(t)
	repo := repository.NewProjectRepository(w.db)
	ctx := context.Background()

	w.member(t, "dev@example.com", rbac.RoleDeveloper)
	issue := w.issue(t, w.todo, "Write docs")
	label := model.Label{BoardID: w.board.ID, Name: "bug", Color: "#f00"}
	require.NoError(t, repository.NewLabelRepository(w.db).Create(ctx, &label))
	require.NoError(t, repository.NewIssueRepository(w.db).AddLabel(ctx, issue.ID, label.ID))

	require.NoError(t, repo.Delete(ctx, w.project.ID))

	for _, table := range []any{&model.Project{}, &model.ProjectMembership{}, &model.Board{}, &model.Column{}, &model.Issue{}, &model.Label{}} {
		var count int64
		require.NoError(t, w.db.Model(table).Count(&count).Error)
		assert.Zero(t, count, "%T rows left", table)
	}
	var links int64
	require.NoError(t, w.db.Table("issue_labels").Count(&links).Error)
	assert.Zero(t, links)

	assert.ErrorIs(t, repo.Delete(ctx, w.project.ID), repository.ErrProjectNotFound)
}

func TestProjectRepository_TransferOwnership(t *testing.T) {
	w := newWorld(t)
	repo := repository.NewProjectRepository(w.db)
	members := repository.NewMembershipRepository(w.db)
	ctx := context.Background()
	admin := w.member(t, "admin@example.com", rbac.RoleAdmin)

	tests := []struct {
		name              string
		projectID         uuid.UUID
		current, newOwner uuid.UUID
		want              error
	}{
		{"same user", w.project.ID, admin.ID, admin.ID, repository.ErrAlreadyOwner},
		{"caller is not the owner", w.project.ID, admin.ID, w.owner.ID, repository.ErrNotProjectOwner},
		{"unknown new owner", w.project.ID, w.owner.ID, uuid.New(), repository.ErrUserNotFound},
		{"unknown project", uuid.New(), w.owner.ID, admin.ID, repository.ErrProjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, err := repo.TransferOwnership(ctx, tt.projectID, tt.current, tt.newOwner)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, project)
		})
	}

	project, err := repo.TransferOwnership(ctx, w.project.ID, w.owner.ID, admin.ID)
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, admin.ID, project.OwnerID)
	assert.Equal(t, w.project.Name, project.Name)

	stored, err := repo.GetByID(ctx, w.project.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, stored.OwnerID)

	// The new owner holds no membership row; the old owner is now an admin.
	m, err := members.Get(ctx, w.project.ID, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = members.Get(ctx, w.project.ID, w.owner.ID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, rbac.RoleAdmin, m.Role)
}
