package repository_test

import (
	"context"
	"testing"

	"projecthub/internal/model"
	"projecthub/internal/rbac"
	"projecthub/internal/repository"
	"projecthub/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// world is a small project tree: one owner, one board with two columns.
type world struct {
	db      *gorm.DB
	owner   model.User
	project model.Project
	board   model.Board
	todo    model.Column
	done    model.Column
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewDB(t)

	w := &world{db: db}
	w.owner = testutil.CreateUser(t, db, "owner@example.com", "Owner")
	w.project = model.Project{Name: "Apollo", OwnerID: w.owner.ID}
	require.NoError(t, repository.NewProjectRepository(db).Create(ctx, &w.project))

	w.board = model.Board{ProjectID: w.project.ID, Title: "Sprint"}
	require.NoError(t, repository.NewBoardRepository(db).Create(ctx, &w.board))

	columns := repository.NewColumnRepository(db)
	w.todo = model.Column{BoardID: w.board.ID, Title: "Todo"}
	require.NoError(t, columns.Create(ctx, &w.todo))
	w.done = model.Column{BoardID: w.board.ID, Title: "Done"}
	require.NoError(t, columns.Create(ctx, &w.done))
	return w
}

func (w *world) member(t *testing.T, email string, role rbac.Role) model.User {
	t.Helper()
	user := testutil.CreateUser(t, w.db, email, email)
	_, err := repository.NewMembershipRepository(w.db).Add(context.Background(), w.project.ID, user.ID, role)
	require.NoError(t, err)
	return user
}

func (w *world) issue(t *testing.T, column model.Column, title string) model.Issue {
	t.Helper()
	issue := model.Issue{ColumnID: column.ID, Title: title, ReporterID: w.owner.ID}
	require.NoError(t, repository.NewIssueRepository(w.db).Create(context.Background(), &issue))
	return issue
}
