package handler

import (
	"context"
	"errors"
	"net/http"

	"projecthub/internal/model"
	"projecthub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ColumnHandler struct {
	columnRepo *repository.ColumnRepository
}

func NewColumnHandler(columnRepo *repository.ColumnRepository) *ColumnHandler {
	return &ColumnHandler{columnRepo: columnRepo}
}

type ColumnRequest struct {
	Title string `json:"title" binding:"required,max=100"`
}

// ReorderColumnsRequest lists every column of the board in its new order.
type ReorderColumnsRequest struct {
	ColumnIDs []string `json:"column_ids" binding:"required,min=1,dive,uuid"`
}

type ColumnResponse struct {
	ID       string `json:"id"`
	BoardID  string `json:"board_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

func toColumnResponse(col *model.Column) ColumnResponse {
	return ColumnResponse{
		ID:       col.ID.String(),
		BoardID:  col.BoardID.String(),
		Title:    col.Title,
		Position: col.Position,
	}
}

// BoardOf maps a column to its board for authorization.
func (h *ColumnHandler) BoardOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, error) {
	column, err := h.columnRepo.GetByID(ctx, id)
	if err != nil || column == nil {
		return nil, err
	}
	return &column.BoardID, nil
}

// Create appends a column to the board
func (h *ColumnHandler) Create(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	column := &model.Column{BoardID: boardID, Title: req.Title}
	if err := h.columnRepo.Create(c.Request.Context(), column); err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return
		}
		internalError(c, err, "create column")
		return
	}

	c.JSON(http.StatusCreated, toColumnResponse(column))
}

func (h *ColumnHandler) GetAll(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	columns, err := h.columnRepo.GetByBoardID(c.Request.Context(), boardID)
	if err != nil {
		internalError(c, err, "list columns")
		return
	}

	response := make([]ColumnResponse, len(columns))
	for i := range columns {
		response[i] = toColumnResponse(&columns[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *ColumnHandler) Update(c *gin.Context) {
	columnID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	ctx := c.Request.Context()
	if err := h.columnRepo.Rename(ctx, columnID, req.Title); err != nil {
		if errors.Is(err, repository.ErrColumnNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
			return
		}
		internalError(c, err, "update column")
		return
	}

	column, err := h.columnRepo.GetByID(ctx, columnID)
	if err != nil || column == nil {
		internalError(c, err, "reload column")
		return
	}
	c.JSON(http.StatusOK, toColumnResponse(column))
}

// Delete removes the column and its issues
func (h *ColumnHandler) Delete(c *gin.Context) {
	columnID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.columnRepo.Delete(c.Request.Context(), columnID)
	if errors.Is(err, repository.ErrColumnNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
		return
	}
	if err != nil {
		internalError(c, err, "delete column")
		return
	}

	c.Status(http.StatusNoContent)
}

// ReorderColumns rewrites column positions in one transaction
func (h *ColumnHandler) ReorderColumns(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ReorderColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	ids := make([]uuid.UUID, len(req.ColumnIDs))
	for i, raw := range req.ColumnIDs {
		ids[i] = uuid.MustParse(raw)
	}

	err := h.columnRepo.Reorder(c.Request.Context(), boardID, ids)
	if errors.Is(err, repository.ErrReorderMismatch) {
		badRequest(c, "column_ids must list every column of the board exactly once")
		return
	}
	if errors.Is(err, repository.ErrBoardNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if err != nil {
		internalError(c, err, "reorder columns")
		return
	}

	h.GetAll(c)
}
