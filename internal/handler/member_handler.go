package handler

import (
	"errors"
	"net/http"

	"projecthub/internal/model"
	"projecthub/internal/rbac"
	"projecthub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MemberHandler struct {
	directory      *rbac.Directory
	membershipRepo *repository.MembershipRepository
	userRepo       *repository.UserRepository
}

func NewMemberHandler(directory *rbac.Directory, membershipRepo *repository.MembershipRepository, userRepo *repository.UserRepository) *MemberHandler {
	return &MemberHandler{
		directory:      directory,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
	}
}

// AddMemberRequest names the user by id or by email.
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"omitempty,uuid"`
	Email  string `json:"email" binding:"omitempty,email"`
	Role   string `json:"role" binding:"required"`
}

type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required"`
}

type MemberResponse struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

const roleChoices = "Role must be one of VIEWER, DEVELOPER, ADMIN"

// List returns the owner first, then members by role and join time.
func (h *MemberHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.directory.ListMembers(c.Request.Context(), projectID)
	if errors.Is(err, rbac.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	if err != nil {
		internalError(c, err, "list members")
		return
	}

	response := make([]MemberResponse, len(entries))
	for i, e := range entries {
		response[i] = MemberResponse{
			UserID:   e.Principal.ID.String(),
			Name:     e.Principal.Name,
			Email:    e.Principal.Email,
			Role:     e.Role.String(),
			JoinedAt: formatTime(e.JoinedAt),
		}
	}
	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) Add(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.UserID == "") == (req.Email == "") {
		badRequest(c, "Provide either user_id or email, and a role")
		return
	}
	role, ok := parseMemberRole(c, req.Role)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var user *model.User
	var err error
	if req.UserID != "" {
		user, err = h.userRepo.GetByID(ctx, uuid.MustParse(req.UserID))
	} else {
		user, err = h.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	}
	if err != nil {
		internalError(c, err, "find user")
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	membership, err := h.membershipRepo.Add(ctx, projectID, user.ID, role)
	if err != nil {
		h.membershipError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MemberResponse{
		UserID:   user.ID.String(),
		Name:     user.Name,
		Email:    user.Email,
		Role:     membership.Role.String(),
		JoinedAt: formatTime(membership.JoinedAt),
	})
}

func (h *MemberHandler) UpdateRole(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, roleChoices)
		return
	}
	role, ok := parseMemberRole(c, req.Role)
	if !ok {
		return
	}

	membership, err := h.membershipRepo.UpdateRole(c.Request.Context(), projectID, userID, role)
	if err != nil {
		h.membershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID.String(), "role": membership.Role.String()})
}

func (h *MemberHandler) Remove(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	if err := h.membershipRepo.Remove(c.Request.Context(), projectID, userID); err != nil {
		h.membershipError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Leave drops the caller's own membership.
func (h *MemberHandler) Leave(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.membershipRepo.Leave(c.Request.Context(), projectID, userID); err != nil {
		h.membershipError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseMemberRole(c *gin.Context, raw string) (rbac.Role, bool) {
	role, err := rbac.ParseRole(raw)
	if err != nil || !role.Assignable() {
		badRequest(c, roleChoices)
		return 0, false
	}
	return role, true
}

func (h *MemberHandler) membershipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this project"})
	case errors.Is(err, repository.ErrAlreadyOwner):
		c.JSON(http.StatusConflict, gin.H{"error": "User is already the owner of this project"})
	case errors.Is(err, repository.ErrInvalidMemberRole):
		badRequest(c, roleChoices)
	case errors.Is(err, repository.ErrOwnerRoleImmutable):
		badRequest(c, "The project owner's membership cannot be changed")
	case errors.Is(err, repository.ErrOwnerCannotLeave):
		badRequest(c, "The owner cannot leave the project; transfer ownership first")
	case errors.Is(err, repository.ErrMembershipNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, repository.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	default:
		internalError(c, err, "membership change")
	}
}
