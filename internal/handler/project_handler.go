package handler

import (
	"errors"
	"net/http"

	"projecthub/internal/middleware"
	"projecthub/internal/model"
	"projecthub/internal/rbac"
	"projecthub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProjectHandler struct {
	projectRepo *repository.ProjectRepository
}

func NewProjectHandler(projectRepo *repository.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{projectRepo: projectRepo}
}

type ProjectRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
}

type TransferOwnershipRequest struct {
	NewOwnerID string `json:"new_owner_id" binding:"required,uuid"`
}

type ProjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
	Role        string `json:"role"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toProjectResponse(p *model.Project, role rbac.Role) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID.String(),
		Role:        role.String(),
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

// Create makes a project owned by the caller. Ownership lives on the project
// row; no membership is created.
func (h *ProjectHandler) Create(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	project := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
	}
	if err := h.projectRepo.Create(c.Request.Context(), project); err != nil {
		internalError(c, err, "create project")
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(project, rbac.RoleOwner))
}

// List returns every project the caller owns or belongs to.
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	projects, err := h.projectRepo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		internalError(c, err, "list projects")
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i := range projects {
		response[i] = toProjectResponse(&projects[i].Project, projects[i].Role)
	}
	c.JSON(http.StatusOK, response)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		internalError(c, err, "get project")
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	role, _ := middleware.Role(c)
	c.JSON(http.StatusOK, toProjectResponse(project, role))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	ctx := c.Request.Context()
	err := h.projectRepo.Update(ctx, &model.Project{ID: projectID, Name: req.Name, Description: req.Description})
	if errors.Is(err, repository.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	if err != nil {
		internalError(c, err, "update project")
		return
	}

	h.Get(c)
}

// Delete removes the project and everything in it.
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.projectRepo.Delete(c.Request.Context(), projectID)
	if errors.Is(err, repository.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	if err != nil {
		internalError(c, err, "delete project")
		return
	}

	c.Status(http.StatusNoContent)
}

// TransferOwnership hands the project to another user. The previous owner
// stays on as ADMIN.
func (h *ProjectHandler) TransferOwnership(c *gin.Context) {
	callerIDValue, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	newOwnerID := uuid.MustParse(req.NewOwnerID)

	project, err := h.projectRepo.TransferOwnership(c.Request.Context(), projectID, callerIDValue, newOwnerID)
	switch {
	case errors.Is(err, repository.ErrAlreadyOwner):
		c.JSON(http.StatusConflict, gin.H{"error": "User is already the owner of this project"})
		return
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	case errors.Is(err, repository.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	case errors.Is(err, repository.ErrNotProjectOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can transfer the project"})
		return
	case err != nil:
		internalError(c, err, "transfer ownership")
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project, rbac.RoleAdmin))
}
