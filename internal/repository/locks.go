package repository

import (
	"bytes"
	"errors"
	"slices"

	"projecthub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Row locks serialize writers that renumber positions or change membership.
// Postgres takes them with FOR UPDATE; sqlite serializes writers anyway.

func lockProject(tx *gorm.DB, projectID uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&project, "id = ?", projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func lockBoard(tx *gorm.DB, boardID uuid.UUID) (*model.Board, error) {
	var board model.Board
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&board, "id = ?", boardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// lockColumns locks the given columns in id order so two movers never wait
// on each other crosswise. The result is keyed by id.
func lockColumns(tx *gorm.DB, ids ...uuid.UUID) (map[uuid.UUID]model.Column, error) {
	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	sorted = slices.Compact(sorted)

	out := make(map[uuid.UUID]model.Column, len(sorted))
	for _, id := range sorted {
		var column model.Column
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&column, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrColumnNotFound
		}
		if err != nil {
			return nil, err
		}
		out[id] = column
	}
	return out, nil
}
