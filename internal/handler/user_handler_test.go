package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"projecthub/internal/auth"
	"projecthub/internal/handler"
	"projecthub/internal/mailer"
	"projecthub/internal/middleware"
	"projecthub/internal/model"
	"projecthub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

type MockVerificationStore struct {
	mock.Mock
}

func (m *MockVerificationStore) SavePending(ctx context.Context, pending *model.PendingUser) error {
	return m.Called(ctx, pending).Error(0)
}

func (m *MockVerificationStore) FindPending(ctx context.Context, email string) (*model.PendingUser, error) {
	args := m.Called(ctx, email)
	pending := args.Get(0)
	if pending == nil {
		return nil, args.Error(1)
	}
	return pending.(*model.PendingUser), args.Error(1)
}

func (m *MockVerificationStore) RefreshPendingOTP(ctx context.Context, id uuid.UUID, otpHash string, expiresAt time.Time) error {
	return m.Called(ctx, id, otpHash, expiresAt).Error(0)
}

func (m *MockVerificationStore) Promote(ctx context.Context, pendingID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, pendingID)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockVerificationStore) SaveReset(ctx context.Context, userID uuid.UUID, otpHash string, expiresAt time.Time) error {
	return m.Called(ctx, userID, otpHash, expiresAt).Error(0)
}

func (m *MockVerificationStore) FindReset(ctx context.Context, userID uuid.UUID) (*model.PasswordReset, error) {
	args := m.Called(ctx, userID)
	reset := args.Get(0)
	if reset == nil {
		return nil, args.Error(1)
	}
	return reset.(*model.PasswordReset), args.Error(1)
}

func (m *MockVerificationStore) ConsumeReset(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	return m.Called(ctx, userID, hashedPassword).Error(0)
}

type authFixture struct {
	router *gin.Engine
	users  *MockUserStore
	verify *MockVerificationStore
	mail   *mailer.Recorder
}

func setupAuthTest() *authFixture {
	gin.SetMode(gin.TestMode)
	f := &authFixture{
		users:  new(MockUserStore),
		verify: new(MockVerificationStore),
		mail:   &mailer.Recorder{},
	}
	h := handler.NewUserHandler(f.users, f.verify, f.mail, handler.AuthConfig{
		JWTSecret: testSecret,
		JWTExpiry: time.Hour,
		OTPTTL:    10 * time.Minute,
	})

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/verify-email", h.VerifyEmail)
	r.POST("/auth/resend-otp", h.ResendOTP)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/forgot-password", h.ForgotPassword)
	r.POST("/auth/reset-password", h.ResetPassword)
	r.GET("/me", middleware.JWTAuthMiddleware(testSecret), h.Me)
	f.router = r
	return f
}

func (f *authFixture) post(path string, body any) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

func TestRegister_Success(t *testing.T) {
	f := setupAuthTest()
	f.users.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
	f.verify.On("SavePending", mock.Anything, mock.AnythingOfType("*model.PendingUser")).Return(nil)

	resp := f.post("/auth/register", handler.RegisterRequest{
		Name:     "Test User",
		Email:    "Test@Example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusAccepted, resp.Code)
	f.users.AssertExpectations(t)
	f.verify.AssertExpectations(t)

	pending := f.verify.Calls[0].Arguments.Get(1).(*model.PendingUser)
	assert.Equal(t, "test@example.com", pending.Email)
	assert.True(t, auth.CheckPassword(pending.HashedPassword, "password123"))
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), pending.ExpiresAt, time.Minute)

	msg, ok := f.mail.Last("test@example.com")
	require.True(t, ok)
	code := codePattern.FindString(msg.Text)
	assert.True(t, auth.CheckOTP(pending.OTPHash, code))
}

func TestRegister_UserExists(t *testing.T) {
	f := setupAuthTest()
	f.users.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{ID: uuid.New()}, nil)

	resp := f.post("/auth/register", handler.RegisterRequest{Name: "Test", Email: "test@example.com", Password: "password123"})

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "User already exists")
	assert.Empty(t, f.mail.Sent())
}

func TestRegister_InvalidInput(t *testing.T) {
	f := setupAuthTest()

	resp := f.post("/auth/register", handler.RegisterRequest{Name: "T", Email: "not-an-email", Password: "123"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	f.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestVerifyEmail(t *testing.T) {
	code, otpHash, err := auth.GenerateOTP()
	require.NoError(t, err)
	pendingID := uuid.New()

	t.Run("valid code creates the user", func(t *testing.T) {
		f := setupAuthTest()
		user := &model.User{ID: uuid.New(), Email: "a@example.com", Name: "A"}
		f.verify.On("FindPending", mock.Anything, "a@example.com").
			Return(&model.PendingUser{ID: pendingID, OTPHash: otpHash, ExpiresAt: time.Now().Add(time.Minute)}, nil)
		f.verify.On("Promote", mock.Anything, pendingID).Return(user, nil)

		resp := f.post("/auth/verify-email", handler.VerifyEmailRequest{Email: "a@example.com", OTP: code})

		require.Equal(t, http.StatusCreated, resp.Code)
		var body handler.AuthResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		subject, err := auth.ParseToken(testSecret, body.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), subject)
		assert.Equal(t, "a@example.com", body.User.Email)
	})

	t.Run("expired code", func(t *testing.T) {
		f := setupAuthTest()
		f.verify.On("FindPending", mock.Anything, "a@example.com").
			Return(&model.PendingUser{ID: pendingID, OTPHash: otpHash, ExpiresAt: time.Now().Add(-time.Second)}, nil)

		resp := f.post("/auth/verify-email", handler.VerifyEmailRequest{Email: "a@example.com", OTP: code})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		f.verify.AssertNotCalled(t, "Promote", mock.Anything, mock.Anything)
	})

	t.Run("wrong code", func(t *testing.T) {
		f := setupAuthTest()
		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}
		f.verify.On("FindPending", mock.Anything, "a@example.com").
			Return(&model.PendingUser{ID: pendingID, OTPHash: otpHash, ExpiresAt: time.Now().Add(time.Minute)}, nil)

		resp := f.post("/auth/verify-email", handler.VerifyEmailRequest{Email: "a@example.com", OTP: wrong})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "Invalid or expired code")
	})

	t.Run("email verified in the meantime", func(t *testing.T) {
		f := setupAuthTest()
		f.verify.On("FindPending", mock.Anything, "a@example.com").
			Return(&model.PendingUser{ID: pendingID, OTPHash: otpHash, ExpiresAt: time.Now().Add(time.Minute)}, nil)
		f.verify.On("Promote", mock.Anything, pendingID).Return(nil, repository.ErrUserExists)

		resp := f.post("/auth/verify-email", handler.VerifyEmailRequest{Email: "a@example.com", OTP: code})

		assert.Equal(t, http.StatusConflict, resp.Code)
	})
}

func TestResendOTP_NoPendingLooksTheSame(t *testing.T) {
	f := setupAuthTest()
	f.verify.On("FindPending", mock.Anything, "ghost@example.com").Return(nil, nil)

	resp := f.post("/auth/resend-otp", handler.EmailRequest{Email: "ghost@example.com"})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, f.mail.Sent())
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := &model.User{ID: uuid.New(), Email: "test@example.com", Name: "Test", HashedPassword: hash}

	tests := []struct {
		name     string
		email    string
		password string
		found    *model.User
		status   int
	}{
		{"valid credentials", "test@example.com", "password123", user, http.StatusOK},
		{"wrong password", "test@example.com", "nope", user, http.StatusUnauthorized},
		{"unknown email", "test@example.com", "password123", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupAuthTest()
			if tt.found == nil {
				f.users.On("FindByEmail", mock.Anything, tt.email).Return(nil, nil)
			} else {
				f.users.On("FindByEmail", mock.Anything, tt.email).Return(tt.found, nil)
			}

			resp := f.post("/auth/login", handler.LoginRequest{Email: tt.email, Password: tt.password})

			assert.Equal(t, tt.status, resp.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, resp.Body.String(), "Invalid credentials")
			}
		})
	}
}

func TestLogin_StoreFault(t *testing.T) {
	f := setupAuthTest()
	f.users.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, assert.AnError)

	resp := f.post("/auth/login", handler.LoginRequest{Email: "test@example.com", Password: "x"})

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.NotContains(t, resp.Body.String(), assert.AnError.Error())
}

func TestForgotPassword_AlwaysOK(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "known@example.com", Name: "Known"}

	f := setupAuthTest()
	f.users.On("FindByEmail", mock.Anything, "known@example.com").Return(user, nil)
	f.users.On("FindByEmail", mock.Anything, "unknown@example.com").Return(nil, nil)
	f.verify.On("SaveReset", mock.Anything, user.ID, mock.Anything, mock.Anything).Return(nil)

	known := f.post("/auth/forgot-password", handler.EmailRequest{Email: "known@example.com"})
	unknown := f.post("/auth/forgot-password", handler.EmailRequest{Email: "unknown@example.com"})

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.Len(t, f.mail.Sent(), 1)

	f.mail.Err = assert.AnError
	failed := f.post("/auth/forgot-password", handler.EmailRequest{Email: "known@example.com"})
	assert.Equal(t, http.StatusOK, failed.Code)
}

func TestResetPassword(t *testing.T) {
	code, otpHash, err := auth.GenerateOTP()
	require.NoError(t, err)
	user := &model.User{ID: uuid.New(), Email: "a@example.com"}

	f := setupAuthTest()
	f.users.On("FindByEmail", mock.Anything, "a@example.com").Return(user, nil)
	f.verify.On("FindReset", mock.Anything, user.ID).
		Return(&model.PasswordReset{UserID: user.ID, OTPHash: otpHash, ExpiresAt: time.Now().Add(time.Minute)}, nil)
	f.verify.On("ConsumeReset", mock.Anything, user.ID, mock.MatchedBy(func(hash string) bool {
		return auth.CheckPassword(hash, "new-password")
	})).Return(nil)

	resp := f.post("/auth/reset-password", handler.ResetPasswordRequest{Email: "a@example.com", OTP: code, NewPassword: "new-password"})

	assert.Equal(t, http.StatusOK, resp.Code)
	f.verify.AssertExpectations(t)
}

func TestResetPassword_NoReset(t *testing.T) {
	f := setupAuthTest()
	user := &model.User{ID: uuid.New(), Email: "a@example.com"}
	f.users.On("FindByEmail", mock.Anything, "a@example.com").Return(user, nil)
	f.verify.On("FindReset", mock.Anything, user.ID).Return(nil, nil)

	resp := f.post("/auth/reset-password", handler.ResetPasswordRequest{Email: "a@example.com", OTP: "123456", NewPassword: "new-password"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	f.verify.AssertNotCalled(t, "ConsumeReset", mock.Anything, mock.Anything, mock.Anything)
}

func TestMe(t *testing.T) {
	f := setupAuthTest()
	user := &model.User{ID: uuid.New(), Email: "me@example.com", Name: "Me"}
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	token, err := auth.GenerateToken(testSecret, user.ID.String(), time.Hour)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var body handler.UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "me@example.com", body.Email)
}
