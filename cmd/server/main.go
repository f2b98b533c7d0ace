package main

import (
	"os"

	"projecthub/internal/logger"
)

// @title           ProjectHub API
// @version         1.0
// @description     Projects, boards, columns and issues with role-based access control.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
