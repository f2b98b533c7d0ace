package repository

import (
	"context"
	"errors"
	"time"

	"projecthub/internal/model"
	"projecthub/internal/rbac"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessStore backs the rbac package with the relational schema.
type AccessStore struct {
	db *gorm.DB
}

var _ rbac.Store = (*AccessStore)(nil)

func NewAccessStore(db *gorm.DB) *AccessStore {
	return &AccessStore{db: db}
}

func (s *AccessStore) FindProjectOwnedBy(ctx context.Context, userID, projectID uuid.UUID) (*rbac.Project, error) {
	var project model.Project
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", projectID, userID).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toRBACProject(project), nil
}

func (s *AccessStore) FindMembership(ctx context.Context, projectID, userID uuid.UUID) (*rbac.Membership, error) {
	var m model.ProjectMembership
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	membership := toRBACMembership(m)
	return &membership, nil
}

type chainRow struct {
	IssueID          uuid.UUID
	ColumnID         uuid.UUID
	BoardID          uuid.UUID
	ProjectID        uuid.UUID
	OwnerID          uuid.UUID
	ProjectCreatedAt time.Time
}

func (s *AccessStore) FindBoardWithProject(ctx context.Context, boardID uuid.UUID) (*rbac.BoardChain, error) {
	var row chainRow
	result := s.db.WithContext(ctx).
		Table("boards").
		Select("boards.id AS board_id, projects.id AS project_id, projects.owner_id AS owner_id, projects.created_at AS project_created_at").
		Joins("JOIN projects ON projects.id = boards.project_id").
		Where("boards.id = ?", boardID).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &rbac.BoardChain{BoardID: row.BoardID, Project: row.project()}, nil
}

func (s *AccessStore) FindIssueWithChain(ctx context.Context, issueID uuid.UUID) (*rbac.IssueChain, error) {
	var row chainRow
	result := s.db.WithContext(ctx).
		Table("issues").
		Select("issues.id AS issue_id, columns.id AS column_id, boards.id AS board_id, "+
			"projects.id AS project_id, projects.owner_id AS owner_id, projects.created_at AS project_created_at").
		Joins("JOIN columns ON columns.id = issues.column_id").
		Joins("JOIN boards ON boards.id = columns.board_id").
		Joins("JOIN projects ON projects.id = boards.project_id").
		Where("issues.id = ?", issueID).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &rbac.IssueChain{
		IssueID:  row.IssueID,
		ColumnID: row.ColumnID,
		BoardID:  row.BoardID,
		Project:  row.project(),
	}, nil
}

// ListMembershipsOrdered returns membership rows with user details, oldest
// join first. Role ordering is left to the caller.
func (s *AccessStore) ListMembershipsOrdered(ctx context.Context, projectID uuid.UUID) ([]rbac.Membership, error) {
	var rows []model.ProjectMembership
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("joined_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	memberships := make([]rbac.Membership, 0, len(rows))
	for _, m := range rows {
		memberships = append(memberships, toRBACMembership(m))
	}
	return memberships, nil
}

func (s *AccessStore) GetProject(ctx context.Context, projectID uuid.UUID) (*rbac.Project, error) {
	var project model.Project
	err := s.db.WithContext(ctx).Preload("Owner").Where("id = ?", projectID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toRBACProject(project), nil
}

func (r chainRow) project() rbac.Project {
	return rbac.Project{
		ID:        r.ProjectID,
		Owner:     rbac.Principal{ID: r.OwnerID},
		CreatedAt: r.ProjectCreatedAt,
	}
}

func toRBACProject(p model.Project) *rbac.Project {
	return &rbac.Project{
		ID:        p.ID,
		Owner:     principalOf(p.OwnerID, p.Owner),
		CreatedAt: p.CreatedAt,
	}
}

func toRBACMembership(m model.ProjectMembership) rbac.Membership {
	return rbac.Membership{
		ProjectID: m.ProjectID,
		Principal: principalOf(m.UserID, m.User),
		Role:      m.Role,
		JoinedAt:  m.JoinedAt,
	}
}

func principalOf(id uuid.UUID, u model.User) rbac.Principal {
	return rbac.Principal{ID: id, Name: u.Name, Email: u.Email}
}
