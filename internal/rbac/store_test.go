package rbac_test

import (
	"context"
	"time"

	"projecthub/internal/rbac"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory rbac.Store for tests.
type memStore struct {
	projects    map[uuid.UUID]rbac.Project
	memberships []rbac.Membership
	boards      map[uuid.UUID]uuid.UUID // board → project
	columns     map[uuid.UUID]uuid.UUID // column → board
	issues      map[uuid.UUID]uuid.UUID // issue → column
}

func newMemStore() *memStore {
	return &memStore{
		projects: map[uuid.UUID]rbac.Project{},
		boards:   map[uuid.UUID]uuid.UUID{},
		columns:  map[uuid.UUID]uuid.UUID{},
		issues:   map[uuid.UUID]uuid.UUID{},
	}
}

func (s *memStore) addProject(owner uuid.UUID, createdAt time.Time) uuid.UUID {
	id := uuid.New()
	s.projects[id] = rbac.Project{ID: id, Owner: rbac.Principal{ID: owner}, CreatedAt: createdAt}
	return id
}

func (s *memStore) addMember(projectID, userID uuid.UUID, role rbac.Role, joinedAt time.Time) {
	s.memberships = append(s.memberships, rbac.Membership{
		ProjectID: projectID,
		Principal: rbac.Principal{ID: userID},
		Role:      role,
		JoinedAt:  joinedAt,
	})
}

func (s *memStore) addIssue(projectID uuid.UUID) (boardID, columnID, issueID uuid.UUID) {
	boardID, columnID, issueID = uuid.New(), uuid.New(), uuid.New()
	s.boards[boardID] = projectID
	s.columns[columnID] = boardID
	s.issues[issueID] = columnID
	return boardID, columnID, issueID
}

func (s *memStore) FindProjectOwnedBy(_ context.Context, userID, projectID uuid.UUID) (*rbac.Project, error) {
	p, ok := s.projects[projectID]
	if !ok || p.Owner.ID != userID {
		return nil, nil
	}
	return &p, nil
}

func (s *memStore) FindMembership(_ context.Context, projectID, userID uuid.UUID) (*rbac.Membership, error) {
	for _, m := range s.memberships {
		if m.ProjectID == projectID && m.Principal.ID == userID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindBoardWithProject(_ context.Context, boardID uuid.UUID) (*rbac.BoardChain, error) {
	projectID, ok := s.boards[boardID]
	if !ok {
		return nil, nil
	}
	return &rbac.BoardChain{BoardID: boardID, Project: s.projects[projectID]}, nil
}

func (s *memStore) FindIssueWithChain(_ context.Context, issueID uuid.UUID) (*rbac.IssueChain, error) {
	columnID, ok := s.issues[issueID]
	if !ok {
		return nil, nil
	}
	boardID := s.columns[columnID]
	return &rbac.IssueChain{
		IssueID:  issueID,
		ColumnID: columnID,
		BoardID:  boardID,
		Project:  s.projects[s.boards[boardID]],
	}, nil
}

func (s *memStore) ListMembershipsOrdered(_ context.Context, projectID uuid.UUID) ([]rbac.Membership, error) {
	var out []rbac.Membership
	for _, m := range s.memberships {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) GetProject(_ context.Context, projectID uuid.UUID) (*rbac.Project, error) {
	p, ok := s.projects[projectID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// mockStore records calls so tests can assert which lookups happened.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindProjectOwnedBy(ctx context.Context, userID, projectID uuid.UUID) (*rbac.Project, error) {
	args := m.Called(ctx, userID, projectID)
	p, _ := args.Get(0).(*rbac.Project)
	return p, args.Error(1)
}

func (m *mockStore) FindMembership(ctx context.Context, projectID, userID uuid.UUID) (*rbac.Membership, error) {
	args := m.Called(ctx, projectID, userID)
	ms, _ := args.Get(0).(*rbac.Membership)
	return ms, args.Error(1)
}

func (m *mockStore) FindBoardWithProject(ctx context.Context, boardID uuid.UUID) (*rbac.BoardChain, error) {
	args := m.Called(ctx, boardID)
	b, _ := args.Get(0).(*rbac.BoardChain)
	return b, args.Error(1)
}

func (m *mockStore) FindIssueWithChain(ctx context.Context, issueID uuid.UUID) (*rbac.IssueChain, error) {
	args := m.Called(ctx, issueID)
	i, _ := args.Get(0).(*rbac.IssueChain)
	return i, args.Error(1)
}

func (m *mockStore) ListMembershipsOrdered(ctx context.Context, projectID uuid.UUID) ([]rbac.Membership, error) {
	args := m.Called(ctx, projectID)
	ms, _ := args.Get(0).([]rbac.Membership)
	return ms, args.Error(1)
}

func (m *mockStore) GetProject(ctx context.Context, projectID uuid.UUID) (*rbac.Project, error) {
	args := m.Called(ctx, projectID)
	p, _ := args.Get(0).(*rbac.Project)
	return p, args.Error(1)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
