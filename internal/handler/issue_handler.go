package handler

import (
	"errors"
	"net/http"
	"time"

	"projecthub/internal/model"
	"projecthub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type IssueHandler struct {
	issueRepo *repository.IssueRepository
	labelRepo *repository.LabelRepository
}

func NewIssueHandler(issueRepo *repository.IssueRepository, labelRepo *repository.LabelRepository) *IssueHandler {
	return &IssueHandler{issueRepo: issueRepo, labelRepo: labelRepo}
}

type IssueRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     *time.Time `json:"due_date"`
}

type MoveIssueRequest struct {
	ColumnID string `json:"column_id" binding:"required,uuid"`
	Position *int   `json:"position" binding:"required,min=0"`
}

type AssignIssueRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

type IssueResponse struct {
	ID          string          `json:"id"`
	ColumnID    string          `json:"column_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    string          `json:"priority"`
	ReporterID  string          `json:"reporter_id"`
	AssigneeID  *string         `json:"assignee_id,omitempty"`
	DueDate     *string         `json:"due_date,omitempty"`
	Position    int             `json:"position"`
	Labels      []LabelResponse `json:"labels"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

func toIssueResponse(issue *model.Issue) IssueResponse {
	resp := IssueResponse{
		ID:          issue.ID.String(),
		ColumnID:    issue.ColumnID.String(),
		Title:       issue.Title,
		Description: issue.Description,
		Priority:    issue.Priority,
		ReporterID:  issue.ReporterID.String(),
		Position:    issue.Position,
		Labels:      make([]LabelResponse, len(issue.Labels)),
		CreatedAt:   formatTime(issue.CreatedAt),
		UpdatedAt:   formatTime(issue.UpdatedAt),
	}
	if issue.AssigneeID != nil {
		id := issue.AssigneeID.String()
		resp.AssigneeID = &id
	}
	if issue.DueDate != nil {
		due := formatTime(*issue.DueDate)
		resp.DueDate = &due
	}
	for i := range issue.Labels {
		resp.Labels[i] = toLabelResponse(&issue.Labels[i])
	}
	return resp
}

// Create adds an issue at the bottom of the column. The caller is the reporter.
func (h *IssueHandler) Create(c *gin.Context) {
	reporterID, ok := callerID(c)
	if !ok {
		return
	}
	columnID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	issue := &model.Issue{
		ColumnID:    columnID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ReporterID:  reporterID,
	}
	if err := h.issueRepo.Create(c.Request.Context(), issue); err != nil {
		h.issueError(c, err, "create issue")
		return
	}

	c.JSON(http.StatusCreated, toIssueResponse(issue))
}

func (h *IssueHandler) GetByColumnID(c *gin.Context) {
	columnID, ok := pathID(c, "id")
	if !ok {
		return
	}

	issues, err := h.issueRepo.ListByColumn(c.Request.Context(), columnID)
	if err != nil {
		internalError(c, err, "list issues")
		return
	}

	response := make([]IssueResponse, len(issues))
	for i := range issues {
		response[i] = toIssueResponse(&issues[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *IssueHandler) GetByID(c *gin.Context) {
	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respondIssue(c, issueID, http.StatusOK)
}

func (h *IssueHandler) Update(c *gin.Context) {
	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}

	err := h.issueRepo.Update(c.Request.Context(), &model.Issue{
		ID:          issueID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.issueError(c, err, "update issue")
		return
	}
	h.respondIssue(c, issueID, http.StatusOK)
}

func (h *IssueHandler) Delete(c *gin.Context) {
	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.issueRepo.Delete(c.Request.Context(), issueID); err != nil {
		h.issueError(c, err, "delete issue")
		return
	}
	c.Status(http.StatusNoContent)
}

// MoveIssue places the issue in another column of the same board
func (h *IssueHandler) MoveIssue(c *gin.Context) {
	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req MoveIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	_, err := h.issueRepo.Move(c.Request.Context(), issueID, uuid.MustParse(req.ColumnID), *req.Position)
	if err != nil {
		h.issueError(c, err, "move issue")
		return
	}
	h.respondIssue(c, issueID, http.StatusOK)
}

// AssignUser sets the assignee. Any registered user may be assigned.
func (h *IssueHandler) AssignUser(c *gin.Context) {
	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AssignIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	if err := h.issueRepo.Assign(c.Request.Context(), issueID, uuid.MustParse(req.UserID)); err != nil {
		h.issueError(c, err, "assign issue")
		return
	}
	h.respondIssue(c, issueID, http.StatusOK)
}

func (h *IssueHandler) UnassignUser(c *gin.Context) {
	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.issueRepo.Unassign(c.Request.Context(), issueID); err != nil {
		h.issueError(c, err, "unassign issue")
		return
	}
	h.respondIssue(c, issueID, http.StatusOK)
}

// AddLabel attaches a label from the issue's board
func (h *IssueHandler) AddLabel(c *gin.Context) {
	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}
	labelID, ok := pathID(c, "label_id")
	if !ok {
		return
	}

	if err := h.issueRepo.AddLabel(c.Request.Context(), issueID, labelID); err != nil {
		h.issueError(c, err, "add label")
		return
	}
	h.respondIssue(c, issueID, http.StatusOK)
}

func (h *IssueHandler) RemoveLabel(c *gin.Context) {
	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}
	labelID, ok := pathID(c, "label_id")
	if !ok {
		return
	}

	if err := h.issueRepo.RemoveLabel(c.Request.Context(), issueID, labelID); err != nil {
		h.issueError(c, err, "remove label")
		return
	}
	h.respondIssue(c, issueID, http.StatusOK)
}

func (h *IssueHandler) GetIssueLabels(c *gin.Context) {
	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}

	labels, err := h.labelRepo.GetByIssueID(c.Request.Context(), issueID)
	if err != nil {
		internalError(c, err, "list issue labels")
		return
	}

	response := make([]LabelResponse, len(labels))
	for i := range labels {
		response[i] = toLabelResponse(&labels[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *IssueHandler) respondIssue(c *gin.Context, issueID uuid.UUID, status int) {
	issue, err := h.issueRepo.GetByID(c.Request.Context(), issueID)
	if err != nil {
		internalError(c, err, "get issue")
		return
	}
	if issue == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}
	c.JSON(status, toIssueResponse(issue))
}

func (h *IssueHandler) issueError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrIssueNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
	case errors.Is(err, repository.ErrColumnNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
	case errors.Is(err, repository.ErrLabelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Label not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, repository.ErrCrossBoardMove):
		badRequest(c, "Issues can only move between columns of the same board")
	case errors.Is(err, repository.ErrLabelBoardMismatch):
		badRequest(c, "Label belongs to a different board")
	default:
		internalError(c, err, msg)
	}
}
