package middleware

import (
	"context"
	"errors"
	"net/http"

	"projecthub/internal/logger"
	"projecthub/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BoardOf maps a board-scoped entity (column, label) to its board id. A nil
// result means the entity does not exist.
type BoardOf func(ctx context.Context, id uuid.UUID) (*uuid.UUID, error)

// Authorizer turns Access Guard decisions into gin middleware. On success the
// resolved role and project id are stored on the gin context and the role is
// also attached to the request context.
type Authorizer struct {
	guard *rbac.Guard
}

func NewAuthorizer(guard *rbac.Guard) *Authorizer {
	return &Authorizer{guard: guard}
}

// Project checks op against the project named by the path parameter.
func (a *Authorizer) Project(op rbac.Operation, param string) gin.HandlerFunc {
	return a.check(param, "project", func(ctx context.Context, userID, id uuid.UUID) (rbac.AuthResult, error) {
		return a.guard.AuthorizeProject(ctx, userID, id, op)
	})
}

// Board checks op against the board named by the path parameter.
func (a *Authorizer) Board(op rbac.Operation, param string) gin.HandlerFunc {
	return a.check(param, "board", func(ctx context.Context, userID, id uuid.UUID) (rbac.AuthResult, error) {
		return a.guard.AuthorizeBoard(ctx, userID, id, op)
	})
}

// Issue checks op against the issue named by the path parameter.
func (a *Authorizer) Issue(op rbac.Operation, param string) gin.HandlerFunc {
	return a.check(param, "issue", func(ctx context.Context, userID, id uuid.UUID) (rbac.AuthResult, error) {
		return a.guard.AuthorizeIssue(ctx, userID, id, op)
	})
}

// Via checks op against the board that owns the entity named by the path
// parameter. entity names it in the 404 message.
func (a *Authorizer) Via(op rbac.Operation, param, entity string, boardOf BoardOf) gin.HandlerFunc {
	return a.check(param, entity, func(ctx context.Context, userID, id uuid.UUID) (rbac.AuthResult, error) {
		boardID, err := boardOf(ctx, id)
		if err != nil {
			return rbac.AuthResult{}, err
		}
		if boardID == nil {
			return rbac.AuthResult{Decision: rbac.DecisionNotFound, Operation: op}, nil
		}
		return a.guard.AuthorizeBoard(ctx, userID, *boardID, op)
	})
}

type authorizeFunc func(ctx context.Context, userID, id uuid.UUID) (rbac.AuthResult, error)

func (a *Authorizer) check(param, entity string, authorize authorizeFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		id, err := uuid.Parse(c.Param(param))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + entity + " ID"})
			return
		}

		result, err := authorize(c.Request.Context(), userID, id)
		if err != nil {
			event := logger.Error()
			if errors.Is(err, rbac.ErrInvariantViolation) {
				event = event.Bool("invariant", true)
			}
			event.Err(err).
				Str("user_id", userID.String()).
				Str(entity+"_id", id.String()).
				Msg("authorization failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if !respond(c, result, entity) {
			return
		}

		c.Set(RoleKey, result.Role)
		c.Set(ProjectIDKey, result.ProjectID)
		c.Request = c.Request.WithContext(rbac.ContextWithRole(c.Request.Context(), result.Role))
		c.Next()
	}
}

// respond aborts with the status for a non-authorized result and reports
// whether the request may proceed.
func respond(c *gin.Context, result rbac.AuthResult, entity string) bool {
	switch {
	case result.Allowed():
		return true
	case result.Decision == rbac.DecisionNotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": capitalize(entity) + " not found"})
	case result.Reason == rbac.ReasonInsufficientPermission:
		logger.Debug().
			Str("role", result.Role.String()).
			Str("operation", result.Operation.String()).
			Msg("insufficient permission")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":    "Insufficient permission",
			"required": result.Operation.String(),
		})
	default:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You are not a member of this project"})
	}
	return false
}

// Role returns the role resolved by an Authorizer check.
func Role(c *gin.Context) (rbac.Role, bool) {
	v, exists := c.Get(RoleKey)
	if !exists {
		return 0, false
	}
	role, ok := v.(rbac.Role)
	return role, ok
}

// ProjectID returns the project an Authorizer check resolved to.
func ProjectID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ProjectIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
