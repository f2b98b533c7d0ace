package repository

import (
	"context"
	"errors"

	"projecthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ColumnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

// Create appends the column after the board's last one. The board row stays
// locked until commit so concurrent creates get distinct positions.
func (r *ColumnRepository) Create(ctx context.Context, column *model.Column) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockBoard(tx, column.BoardID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&model.Column{}).Where("board_id = ?", column.BoardID).Count(&count).Error; err != nil {
			return err
		}
		column.Position = int(count)
		return tx.Omit(clause.Associations).Create(column).Error
	})
}

func (r *ColumnRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error) {
	var column model.Column
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &column, nil
}

func (r *ColumnRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Column, error) {
	var columns []model.Column
	err := r.db.WithContext(ctx).Where("board_id = ?", boardID).Order("position").Find(&columns).Error
	return columns, err
}

func (r *ColumnRepository) Rename(ctx context.Context, id uuid.UUID, title string) error {
	result := r.db.WithContext(ctx).Model(&model.Column{}).Where("id = ?", id).Update("title", title)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrColumnNotFound
	}
	return nil
}

// Delete removes the column and its issues and closes the gap it leaves.
func (r *ColumnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var column model.Column
		if err := tx.First(&column, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrColumnNotFound
			}
			return err
		}
		if _, err := lockBoard(tx, column.BoardID); err != nil {
			return err
		}
		// Positions may have shifted while waiting for the board.
		if err := tx.First(&column, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrColumnNotFound
			}
			return err
		}
		if err := deleteColumnsContent(tx, []uuid.UUID{id}); err != nil {
			return err
		}
		return tx.Model(&model.Column{}).
			Where("board_id = ? AND position > ?", column.BoardID, column.Position).
			Update("position", gorm.Expr("position - 1")).Error
	})
}

// Reorder rewrites the board's column positions to match orderedIDs, which
// must list every column of the board exactly once. All rows change in one
// transaction so readers never see duplicate or missing positions.
func (r *ColumnRepository) Reorder(ctx context.Context, boardID uuid.UUID, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockBoard(tx, boardID); err != nil {
			return err
		}
		var current []uuid.UUID
		if err := tx.Model(&model.Column{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("board_id = ?", boardID).
			Pluck("id", &current).Error; err != nil {
			return err
		}
		if !sameIDSet(current, orderedIDs) {
			return ErrReorderMismatch
		}

		for position, id := range orderedIDs {
			if err := tx.Model(&model.Column{}).
				Where("id = ? AND board_id = ?", id, boardID).
				Update("position", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func sameIDSet(current, requested []uuid.UUID) bool {
	if len(current) != len(requested) {
		return false
	}
	want := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		want[id] = true
	}
	for _, id := range requested {
		if !want[id] {
			return false
		}
		delete(want, id)
	}
	return len(want) == 0
}
