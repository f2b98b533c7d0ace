package repository_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"projecthub/internal/model"
	"projecthub/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnRepository_Create_LocksBoard(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewColumnRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Column{BoardID: uuid.New(), Title: "Todo"})

	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_Create_LocksColumn(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewIssueRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "columns" WHERE id = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Issue{ColumnID: uuid.New(), Title: "Bug", ReporterID: uuid.New()})

	assert.ErrorIs(t, err, repository.ErrColumnNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConcurrentCreates_KeepPositionsDense(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	columns := repository.NewColumnRepository(w.db)
	issues := repository.NewIssueRepository(w.db)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			errs <- columns.Create(ctx, &model.Column{BoardID: w.board.ID, Title: fmt.Sprintf("C%d", i)})
		}(i)
		go func(i int) {
			defer wg.Done()
			errs <- issues.Create(ctx, &model.Issue{ColumnID: w.todo.ID, Title: fmt.Sprintf("I%d", i), ReporterID: w.owner.ID})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	boardColumns, err := columns.GetByBoardID(ctx, w.board.ID)
	require.NoError(t, err)
	colPositions := make([]int, len(boardColumns))
	for i, c := range boardColumns {
		colPositions[i] = c.Position
	}

	todoIssues, err := issues.ListByColumn(ctx, w.todo.ID)
	require.NoError(t, err)
	issuePositions := make([]int, len(todoIssues))
	for i, is := range todoIssues {
		issuePositions[i] = is.Position
	}
	sort.Ints(colPositions)
	sort.Ints(issuePositions)

	assert.Equal(t, dense(n+2), colPositions)
	assert.Equal(t, dense(n), issuePositions)
}

func dense(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestColumnRepository_Reorder_UnknownBoard(t *testing.T) {
	w := newWorld(t)
	err := repository.NewColumnRepository(w.db).Reorder(context.Background(), uuid.New(), []uuid.UUID{w.todo.ID})
	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
}
