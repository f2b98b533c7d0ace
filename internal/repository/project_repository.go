package repository

import (
	"context"
	"errors"
	"sort"

	"projecthub/internal/model"
	"projecthub/internal/rbac"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ProjectWithRole is a project as seen by one user.
type ProjectWithRole struct {
	Project model.Project
	Role    rbac.Role
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser returns every project the user owns or belongs to, newest first.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]ProjectWithRole, error) {
	var owned []model.Project
	if err := r.db.WithContext(ctx).Where("owner_id = ?", userID).Find(&owned).Error; err != nil {
		return nil, err
	}

	var memberships []model.ProjectMembership
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}

	out := make([]ProjectWithRole, 0, len(owned)+len(memberships))
	seen := make(map[uuid.UUID]bool, len(owned))
	for _, p := range owned {
		seen[p.ID] = true
		out = append(out, ProjectWithRole{Project: p, Role: rbac.RoleOwner})
	}
	for _, m := range memberships {
		if seen[m.ProjectID] {
			continue
		}
		out = append(out, ProjectWithRole{Project: m.Project, Role: m.Role})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Project.CreatedAt.After(out[j].Project.CreatedAt)
	})
	return out, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	result := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", project.ID).
		Updates(map[string]any{"name": project.Name, "description": project.Description})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Delete removes the project and everything under it in one transaction.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var boardIDs []uuid.UUID
		if err := tx.Model(&model.Board{}).Where("project_id = ?", id).Pluck("id", &boardIDs).Error; err != nil {
			return err
		}
		if err := deleteBoardsContent(tx, boardIDs); err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.ProjectMembership{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProjectNotFound
		}
		return nil
	})
}

// TransferOwnership hands the project to newOwnerID. The new owner loses any
// membership row and the previous owner becomes an ADMIN member, all in one
// transaction. The returned project is the row as committed.
func (r *ProjectRepository) TransferOwnership(ctx context.Context, projectID, currentOwnerID, newOwnerID uuid.UUID) (*model.Project, error) {
	if currentOwnerID == newOwnerID {
		return nil, ErrAlreadyOwner
	}

	var project *model.Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		project, err = lockProject(tx, projectID)
		if err != nil {
			return err
		}
		if project.OwnerID != currentOwnerID {
			return ErrNotProjectOwner
		}

		var users int64
		if err := tx.Model(&model.User{}).Where("id = ?", newOwnerID).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			return ErrUserNotFound
		}

		if err := tx.Model(&model.Project{}).Where("id = ?", projectID).Update("owner_id", newOwnerID).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ? AND user_id IN ?", projectID, []uuid.UUID{newOwnerID, currentOwnerID}).
			Delete(&model.ProjectMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&model.ProjectMembership{
			ProjectID: projectID,
			UserID:    currentOwnerID,
			Role:      rbac.RoleAdmin,
		}).Error; err != nil {
			return err
		}
		return tx.First(project, "id = ?", projectID).Error
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// deleteBoardsContent removes labels, issues and columns of the given boards,
// then the boards themselves.
func deleteBoardsContent(tx *gorm.DB, boardIDs []uuid.UUID) error {
	if len(boardIDs) == 0 {
		return nil
	}

	var columnIDs []uuid.UUID
	if err := tx.Model(&model.Column{}).Where("board_id IN ?", boardIDs).Pluck("id", &columnIDs).Error; err != nil {
		return err
	}
	if err := deleteColumnsContent(tx, columnIDs); err != nil {
		return err
	}

	var labelIDs []uuid.UUID
	if err := tx.Model(&model.Label{}).Where("board_id IN ?", boardIDs).Pluck("id", &labelIDs).Error; err != nil {
		return err
	}
	if len(labelIDs) > 0 {
		if err := tx.Exec("DELETE FROM issue_labels WHERE label_id IN ?", labelIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", labelIDs).Delete(&model.Label{}).Error; err != nil {
			return err
		}
	}

	return tx.Where("id IN ?", boardIDs).Delete(&model.Board{}).Error
}

// deleteColumnsContent removes the columns and every issue in them.
func deleteColumnsContent(tx *gorm.DB, columnIDs []uuid.UUID) error {
	if len(columnIDs) == 0 {
		return nil
	}

	var issueIDs []uuid.UUID
	if err := tx.Model(&model.Issue{}).Where("column_id IN ?", columnIDs).Pluck("id", &issueIDs).Error; err != nil {
		return err
	}
	if len(issueIDs) > 0 {
		if err := tx.Exec("DELETE FROM issue_labels WHERE issue_id IN ?", issueIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", issueIDs).Delete(&model.Issue{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("id IN ?", columnIDs).Delete(&model.Column{}).Error
}
