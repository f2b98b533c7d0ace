// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"
	"testing"

	"projecthub/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns an in-memory sqlite database with the full schema migrated.
// Each call gets its own database, closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// CreateUser inserts a verified user with the given email.
func CreateUser(t testing.TB, db *gorm.DB, email, name string) model.User {
	t.Helper()
	user := model.User{Email: email, Name: name, HashedPassword: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}
