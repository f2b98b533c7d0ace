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

type LabelRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Color string `json:"color" binding:"required,hexcolor"`
}

type LabelResponse struct {
	ID      string `json:"id"`
	BoardID string `json:"board_id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
}

func toLabelResponse(l *model.Label) LabelResponse {
	return LabelResponse{
		ID:      l.ID.String(),
		BoardID: l.BoardID.String(),
		Name:    l.Name,
		Color:   l.Color,
	}
}

// LabelHandler manages the labels defined on a board
type LabelHandler struct {
	labelRepo *repository.LabelRepository
}

func NewLabelHandler(labelRepo *repository.LabelRepository) *LabelHandler {
	return &LabelHandler{labelRepo: labelRepo}
}

// BoardOf maps a label to its board for authorization.
func (h *LabelHandler) BoardOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, error) {
	label, err := h.labelRepo.GetByID(ctx, id)
	if err != nil || label == nil {
		return nil, err
	}
	return &label.BoardID, nil
}

func (h *LabelHandler) Create(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	label := &model.Label{BoardID: boardID, Name: req.Name, Color: req.Color}
	if err := h.labelRepo.Create(c.Request.Context(), label); err != nil {
		internalError(c, err, "create label")
		return
	}

	c.JSON(http.StatusCreated, toLabelResponse(label))
}

func (h *LabelHandler) GetByBoardID(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	labels, err := h.labelRepo.GetByBoardID(c.Request.Context(), boardID)
	if err != nil {
		internalError(c, err, "list labels")
		return
	}

	response := make([]LabelResponse, len(labels))
	for i := range labels {
		response[i] = toLabelResponse(&labels[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *LabelHandler) Update(c *gin.Context) {
	labelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	ctx := c.Request.Context()
	if err := h.labelRepo.Update(ctx, &model.Label{ID: labelID, Name: req.Name, Color: req.Color}); err != nil {
		if errors.Is(err, repository.ErrLabelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Label not found"})
			return
		}
		internalError(c, err, "update label")
		return
	}

	label, err := h.labelRepo.GetByID(ctx, labelID)
	if err != nil || label == nil {
		internalError(c, err, "reload label")
		return
	}
	c.JSON(http.StatusOK, toLabelResponse(label))
}

// Delete removes the label and detaches it from every issue
func (h *LabelHandler) Delete(c *gin.Context) {
	labelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.labelRepo.Delete(c.Request.Context(), labelID)
	if errors.Is(err, repository.ErrLabelNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Label not found"})
		return
	}
	if err != nil {
		internalError(c, err, "delete label")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetIssuesWithLabel lists the issues carrying the label
func (h *LabelHandler) GetIssuesWithLabel(c *gin.Context) {
	labelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	issues, err := h.labelRepo.GetIssuesWithLabel(c.Request.Context(), labelID)
	if err != nil {
		internalError(c, err, "list labelled issues")
		return
	}

	response := make([]IssueResponse, len(issues))
	for i := range issues {
		response[i] = toIssueResponse(&issues[i])
	}
	c.JSON(http.StatusOK, response)
}
