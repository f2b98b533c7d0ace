package repository

import (
	"context"
	"errors"

	"projecthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IssueRepository keeps issue positions dense within each column.
type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create appends the issue at the bottom of its column.
func (r *IssueRepository) Create(ctx context.Context, issue *model.Issue) error {
	if issue.Priority == "" {
		issue.Priority = model.PriorityMedium
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockColumns(tx, issue.ColumnID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&model.Issue{}).Where("column_id = ?", issue.ColumnID).Count(&count).Error; err != nil {
			return err
		}
		issue.Position = int(count)
		return tx.Omit(clause.Associations).Create(issue).Error
	})
}

func (r *IssueRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Issue, error) {
	var issue model.Issue
	err := r.db.WithContext(ctx).
		Preload("Labels").
		Preload("Reporter").
		Preload("Assignee").
		Where("id = ?", id).
		First(&issue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *IssueRepository) ListByColumn(ctx context.Context, columnID uuid.UUID) ([]model.Issue, error) {
	var issues []model.Issue
	err := r.db.WithContext(ctx).
		Preload("Labels").
		Where("column_id = ?", columnID).
		Order("position").
		Find(&issues).Error
	return issues, err
}

// Update writes the editable fields. Column, position and reporter are left
// alone; Move and Assign cover those.
func (r *IssueRepository) Update(ctx context.Context, issue *model.Issue) error {
	result := r.db.WithContext(ctx).Model(&model.Issue{}).
		Where("id = ?", issue.ID).
		Updates(map[string]any{
			"title":       issue.Title,
			"description": issue.Description,
			"priority":    issue.Priority,
			"due_date":    issue.DueDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrIssueNotFound
	}
	return nil
}

func (r *IssueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var issue model.Issue
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&issue, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIssueNotFound
			}
			return err
		}
		if _, err := lockColumns(tx, issue.ColumnID); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM issue_labels WHERE issue_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Issue{}, "id = ?", id).Error; err != nil {
			return err
		}
		return shiftIssues(tx, issue.ColumnID, issue.Position, -1)
	})
}

// Move places the issue at position in the target column, which must belong
// to the same board. Out-of-range positions are clamped to the end.
func (r *IssueRepository) Move(ctx context.Context, id, targetColumnID uuid.UUID, position int) (*model.Issue, error) {
	var issue model.Issue
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&issue, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIssueNotFound
			}
			return err
		}

		columns, err := lockColumns(tx, issue.ColumnID, targetColumnID)
		if err != nil {
			return err
		}
		source, target := columns[issue.ColumnID], columns[targetColumnID]
		if source.BoardID != target.BoardID {
			return ErrCrossBoardMove
		}

		// Take the issue out of its slot first so both columns are dense
		// apart from the moving row.
		if err := shiftIssues(tx, source.ID, issue.Position, -1); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Issue{}).
			Where("column_id = ? AND id <> ?", target.ID, issue.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if position < 0 || position > int(count) {
			position = int(count)
		}

		if err := tx.Model(&model.Issue{}).
			Where("column_id = ? AND id <> ? AND position >= ?", target.ID, issue.ID, position).
			Update("position", gorm.Expr("position + 1")).Error; err != nil {
			return err
		}

		issue.ColumnID = target.ID
		issue.Position = position
		return tx.Model(&model.Issue{}).Where("id = ?", issue.ID).
			Updates(map[string]any{"column_id": target.ID, "position": position}).Error
	})
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// Assign sets the assignee to any existing user.
func (r *IssueRepository) Assign(ctx context.Context, id, assigneeID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&model.User{}).Where("id = ?", assigneeID).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			return ErrUserNotFound
		}
		return setAssignee(tx, id, &assigneeID)
	})
}

func (r *IssueRepository) Unassign(ctx context.Context, id uuid.UUID) error {
	return setAssignee(r.db.WithContext(ctx), id, nil)
}

// AddLabel attaches a label defined on the issue's own board.
func (r *IssueRepository) AddLabel(ctx context.Context, issueID, labelID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		issue, label, err := loadIssueAndLabel(tx, issueID, labelID)
		if err != nil {
			return err
		}
		return tx.Exec(
			"INSERT INTO issue_labels (issue_id, label_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			issue.ID, label.ID,
		).Error
	})
}

func (r *IssueRepository) RemoveLabel(ctx context.Context, issueID, labelID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		issue, label, err := loadIssueAndLabel(tx, issueID, labelID)
		if err != nil {
			return err
		}
		return tx.Exec(
			"DELETE FROM issue_labels WHERE issue_id = ? AND label_id = ?",
			issue.ID, label.ID,
		).Error
	})
}

func setAssignee(db *gorm.DB, id uuid.UUID, assigneeID *uuid.UUID) error {
	result := db.Model(&model.Issue{}).Where("id = ?", id).Update("assignee_id", assigneeID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrIssueNotFound
	}
	return nil
}

func shiftIssues(tx *gorm.DB, columnID uuid.UUID, after, delta int) error {
	return tx.Model(&model.Issue{}).
		Where("column_id = ? AND position > ?", columnID, after).
		Update("position", gorm.Expr("position + ?", delta)).Error
}

func loadIssueAndLabel(tx *gorm.DB, issueID, labelID uuid.UUID) (*model.Issue, *model.Label, error) {
	var issue model.Issue
	if err := tx.Preload("Column").First(&issue, "id = ?", issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrIssueNotFound
		}
		return nil, nil, err
	}
	var label model.Label
	if err := tx.First(&label, "id = ?", labelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrLabelNotFound
		}
		return nil, nil, err
	}
	if label.BoardID != issue.Column.BoardID {
		return nil, nil, ErrLabelBoardMismatch
	}
	return &issue, &label, nil
}
