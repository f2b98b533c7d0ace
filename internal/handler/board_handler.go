package handler

import (
	"errors"
	"net/http"

	"projecthub/internal/model"
	"projecthub/internal/repository"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	boardRepo *repository.BoardRepository
}

func NewBoardHandler(boardRepo *repository.BoardRepository) *BoardHandler {
	return &BoardHandler{boardRepo: boardRepo}
}

type BoardRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
}

type BoardResponse struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func toBoardResponse(b *model.Board) BoardResponse {
	return BoardResponse{
		ID:          b.ID.String(),
		ProjectID:   b.ProjectID.String(),
		Title:       b.Title,
		Description: b.Description,
		CreatedAt:   formatTime(b.CreatedAt),
	}
}

// Create adds a board to the project in the path
func (h *BoardHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	board := &model.Board{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.boardRepo.Create(c.Request.Context(), board); err != nil {
		internalError(c, err, "create board")
		return
	}

	c.JSON(http.StatusCreated, toBoardResponse(board))
}

func (h *BoardHandler) ListByProject(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	boards, err := h.boardRepo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		internalError(c, err, "list boards")
		return
	}

	response := make([]BoardResponse, len(boards))
	for i := range boards {
		response[i] = toBoardResponse(&boards[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *BoardHandler) GetByID(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		internalError(c, err, "get board")
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	c.JSON(http.StatusOK, toBoardResponse(board))
}

func (h *BoardHandler) Update(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	err := h.boardRepo.Update(c.Request.Context(), &model.Board{ID: boardID, Title: req.Title, Description: req.Description})
	if errors.Is(err, repository.ErrBoardNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if err != nil {
		internalError(c, err, "update board")
		return
	}

	h.GetByID(c)
}

// Delete removes the board with its columns, issues and labels
func (h *BoardHandler) Delete(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.boardRepo.Delete(c.Request.Context(), boardID)
	if errors.Is(err, repository.ErrBoardNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if err != nil {
		internalError(c, err, "delete board")
		return
	}

	c.Status(http.StatusNoContent)
}
