package handler

import (
	"net/http"
	"time"

	"projecthub/internal/logger"
	"projecthub/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// internalError logs err and answers with a generic 500.
func internalError(c *gin.Context, err error, msg string) {
	logger.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// callerID returns the authenticated user or answers 401.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	}
	return id, ok
}

// pathID parses an authorized path parameter. The Authorizer has already
// validated it, so a failure here is reported as a plain 400.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
