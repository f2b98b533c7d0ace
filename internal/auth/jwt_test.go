package auth_test

import (
	"testing"
	"time"

	"projecthub/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := auth.GenerateToken(testSecret, "test-user-id", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := auth.ParseToken(testSecret, token)
	assert.NoError(t, err)
	assert.Equal(t, "test-user-id", userID)
}

func TestParseToken_InvalidToken(t *testing.T) {
	_, err := auth.ParseToken(testSecret, "invalid-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("another-secret", "test-user-id", time.Hour)
	require.NoError(t, err)

	_, err = auth.ParseToken(testSecret, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	expired := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"user_id": "test-user-id",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	_, err := auth.ParseToken(testSecret, expired)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_NoExpiry(t *testing.T) {
	forever := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"user_id": "test-user-id",
	})

	_, err := auth.ParseToken(testSecret, forever)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_OtherAlgorithm(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{
		"user_id": "test-user-id",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	_, err := auth.ParseToken(testSecret, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_MissingClaims(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	})

	_, err := auth.ParseToken(testSecret, token)
	assert.Equal(t, "invalid claims", err.Error())
}
