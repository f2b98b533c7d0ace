package repository

import (
	"context"
	"errors"

	"projecthub/internal/model"
	"projecthub/internal/rbac"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipRepository mutates project membership rows. Every mutation runs
// in a transaction that re-reads the project owner so the owner/member split
// cannot be violated.
type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Get(ctx context.Context, projectID, userID uuid.UUID) (*model.ProjectMembership, error) {
	var m model.ProjectMembership
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Add gives userID a role in the project. The owner and existing members are
// rejected with distinct errors.
func (r *MembershipRepository) Add(ctx context.Context, projectID, userID uuid.UUID, role rbac.Role) (*model.ProjectMembership, error) {
	if !role.Assignable() {
		return nil, ErrInvalidMemberRole
	}

	membership := &model.ProjectMembership{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := lockProject(tx, projectID)
		if err != nil {
			return err
		}
		if project.OwnerID == userID {
			return ErrAlreadyOwner
		}

		var users int64
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			return ErrUserNotFound
		}

		var existing int64
		if err := tx.Model(&model.ProjectMembership{}).
			Where("project_id = ? AND user_id = ?", projectID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyMember
		}

		err = tx.Omit(clause.Associations).Create(membership).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyMember
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// UpdateRole changes a member's role. The owner, and any row that somehow
// carries OWNER, cannot be changed.
func (r *MembershipRepository) UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role rbac.Role) (*model.ProjectMembership, error) {
	if !role.Assignable() {
		return nil, ErrInvalidMemberRole
	}

	var membership model.ProjectMembership
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadMemberForChange(tx, projectID, userID, &membership); err != nil {
			return err
		}
		membership.Role = role
		return tx.Model(&model.ProjectMembership{}).
			Where("id = ?", membership.ID).
			Update("role", role).Error
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// Remove deletes a member on an admin's behalf.
func (r *MembershipRepository) Remove(ctx context.Context, projectID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var membership model.ProjectMembership
		if err := loadMemberForChange(tx, projectID, userID, &membership); err != nil {
			return err
		}
		return tx.Delete(&model.ProjectMembership{}, "id = ?", membership.ID).Error
	})
}

// Leave deletes the caller's own membership. Owners must transfer first.
func (r *MembershipRepository) Leave(ctx context.Context, projectID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project model.Project
		err := tx.Select("id", "owner_id").First(&project, "id = ?", projectID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && project.OwnerID == userID {
			return ErrOwnerCannotLeave
		}

		result := tx.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&model.ProjectMembership{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrMembershipNotFound
		}
		return nil
	})
}

func loadMemberForChange(tx *gorm.DB, projectID, userID uuid.UUID, out *model.ProjectMembership) error {
	project, err := lockProject(tx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID == userID {
		return ErrOwnerRoleImmutable
	}

	err = tx.Where("project_id = ? AND user_id = ?", projectID, userID).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMembershipNotFound
	}
	if err != nil {
		return err
	}
	if out.Role == rbac.RoleOwner {
		return ErrOwnerRoleImmutable
	}
	return nil
}
