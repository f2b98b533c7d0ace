package repository

import (
	"context"
	"errors"

	"projecthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LabelRepository struct {
	db *gorm.DB
}

func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

func (r *LabelRepository) Create(ctx context.Context, label *model.Label) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(label).Error
}

func (r *LabelRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Label, error) {
	var label model.Label
	result := r.db.WithContext(ctx).First(&label, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &label, nil
}

// GetByBoardID retrieves all labels defined on a board
func (r *LabelRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Label, error) {
	var labels []model.Label
	result := r.db.WithContext(ctx).Where("board_id = ?", boardID).Order("name").Find(&labels)
	if result.Error != nil {
		return nil, result.Error
	}
	return labels, nil
}

// GetByIssueID retrieves the labels attached to an issue
func (r *LabelRepository) GetByIssueID(ctx context.Context, issueID uuid.UUID) ([]model.Label, error) {
	var labels []model.Label
	result := r.db.WithContext(ctx).
		Joins("JOIN issue_labels ON issue_labels.label_id = labels.id").
		Where("issue_labels.issue_id = ?", issueID).
		Order("labels.name").
		Find(&labels)
	if result.Error != nil {
		return nil, result.Error
	}
	return labels, nil
}

func (r *LabelRepository) Update(ctx context.Context, label *model.Label) error {
	result := r.db.WithContext(ctx).Model(&model.Label{}).
		Where("id = ?", label.ID).
		Updates(map[string]any{"name": label.Name, "color": label.Color})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLabelNotFound
	}
	return nil
}

// Delete removes a label and detaches it from every issue
func (r *LabelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM issue_labels WHERE label_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Label{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrLabelNotFound
		}
		return nil
	})
}

// GetIssuesWithLabel retrieves every issue carrying the label
func (r *LabelRepository) GetIssuesWithLabel(ctx context.Context, labelID uuid.UUID) ([]model.Issue, error) {
	var issues []model.Issue
	result := r.db.WithContext(ctx).
		Joins("JOIN issue_labels ON issue_labels.issue_id = issues.id").
		Where("issue_labels.label_id = ?", labelID).
		Find(&issues)
	if result.Error != nil {
		return nil, result.Error
	}
	return issues, nil
}
