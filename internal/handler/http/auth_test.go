package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
	"github.com/andrenormanlang/mindsmesh/internal/repository"
	"github.com/andrenormanlang/mindsmesh/internal/repository/mocks"
	"github.com/andrenormanlang/mindsmesh/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthTestRouter(t *testing.T, userRepo repository.UserRepository) *gin.Engine {
	t.Helper()
	authService, err := service.NewAuthService(userRepo, "handler-test-secret", 24)
	require.NoError(t, err)
	handler := NewAuthHandler(authService)

	router := gin.New()
	router.POST("/api/auth/register", handler.Register)
	router.POST("/api/auth/login", handler.Login)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint_Success(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	router := newAuthTestRouter(t, userRepo)

	userRepo.On("FindByUsername", mock.Anything, "alice").Return(nil, repository.ErrUserNotFound).Once()
	userRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 11
	}).Return(nil).Once()

	w := postJSON(t, router, "/api/auth/register", gin.H{
		"username": "alice",
		"password": "secret123",
		"email":    "alice@example.com",
		"role":     "freelancer",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":11`)
	userRepo.AssertExpectations(t)
}

// 绑定校验在 service 之前拒绝非法角色
func TestRegisterEndpoint_RejectsUnknownRole(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	router := newAuthTestRouter(t, userRepo)

	w := postJSON(t, router, "/api/auth/register", gin.H{
		"username": "alice",
		"password": "secret123",
		"role":     "admin",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegisterEndpoint_UsernameTaken(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	router := newAuthTestRouter(t, userRepo)

	userRepo.On("FindByUsername", mock.Anything, "alice").Return(&domain.User{ID: 1, Username: "alice"}, nil).Once()

	w := postJSON(t, router, "/api/auth/register", gin.H{
		"username": "alice",
		"password": "secret123",
		"role":     "employer",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpoint_Success(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	router := newAuthTestRouter(t, userRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	userRepo.On("FindByUsername", mock.Anything, "bob").
		Return(&domain.User{ID: 5, Username: "bob", Password: string(hash), Role: domain.RoleEmployer}, nil).Once()

	w := postJSON(t, router, "/api/auth/login", gin.H{
		"username": "bob",
		"password": "secret123",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	router := newAuthTestRouter(t, userRepo)

	userRepo.On("FindByUsername", mock.Anything, "bob").Return(nil, repository.ErrUserNotFound).Once()

	w := postJSON(t, router, "/api/auth/login", gin.H{
		"username": "bob",
		"password": "whatever",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
