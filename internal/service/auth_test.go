package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
	"github.com/andrenormanlang/mindsmesh/internal/repository"
	"github.com/andrenormanlang/mindsmesh/internal/repository/mocks"
)

const testSecret = "test-secret-key"

func newTestAuthService(t *testing.T, userRepo repository.UserRepository) *AuthService {
	t.Helper()
	svc, err := NewAuthService(userRepo, testSecret, 24)
	require.NoError(t, err)
	return svc
}

func TestNewAuthService_EmptySecret(t *testing.T) {
	_, err := NewAuthService(new(mocks.UserRepository), "", 24)
	assert.Error(t, err)
}

func TestRegister_Success(t *testing.T) {
	mockRepo := new(mocks.UserRepository)
	svc := newTestAuthService(t, mockRepo)
	ctx := context.Background()

	mockRepo.On("FindByUsername", ctx, "alice").Return(nil, repository.ErrUserNotFound).Once()
	mockRepo.On("Save", ctx, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
		u := args.Get(1).(*domain.User)
		u.ID = 7
		// 密码必须以哈希形式入库
		assert.NotEqual(t, "secret", u.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")))
	}).Return(nil).Once()

	user, err := svc.Register(ctx, "alice", "secret", "alice@example.com", domain.RoleFreelancer)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, uint(7), user.ID)
	assert.Equal(t, domain.RoleFreelancer, user.Role)
	assert.Empty(t, user.Password, "password hash must not be returned")
	mockRepo.AssertExpectations(t)
}

func TestRegister_InvalidRole(t *testing.T) {
	mockRepo := new(mocks.UserRepository)
	svc := newTestAuthService(t, mockRepo)

	_, err := svc.Register(context.Background(), "alice", "secret", "a@b.c", "admin")

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_UsernameTaken(t *testing.T) {
	mockRepo := new(mocks.UserRepository)
	svc := newTestAuthService(t, mockRepo)
	ctx := context.Background()

	existing := &domain.User{ID: 1, Username: "alice"}
	mockRepo.On("FindByUsername", ctx, "alice").Return(existing, nil).Once()

	_, err := svc.Register(ctx, "alice", "secret", "a@b.c", domain.RoleEmployer)

	assert.ErrorIs(t, err, ErrRegistrationFailed)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateOnSave(t *testing.T) {
	mockRepo := new(mocks.UserRepository)
	svc := newTestAuthService(t, mockRepo)
	ctx := context.Background()

	mockRepo.On("FindByUsername", ctx, "alice").Return(nil, repository.ErrUserNotFound).Once()
	mockRepo.On("Save", ctx, mock.AnythingOfType("*domain.User")).Return(repository.ErrDuplicateEntry).Once()

	_, err := svc.Register(ctx, "alice", "secret", "a@b.c", domain.RoleEmployer)

	assert.ErrorIs(t, err, ErrRegistrationFailed)
	mockRepo.AssertExpectations(t)
}

func TestLogin_Success(t *testing.T) {
	mockRepo := new(mocks.UserRepository)
	svc := newTestAuthService(t, mockRepo)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &domain.User{ID: 42, Username: "bob", Password: string(hash), Role: domain.RoleEmployer}
	mockRepo.On("FindByUsername", ctx, "bob").Return(user, nil).Once()

	tokenString, err := svc.Login(ctx, "bob", "secret")

	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	// 验证签发的 token 携带正确的声明
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, domain.RoleEmployer, claims["role"])
	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	assert.Greater(t, int64(exp), time.Now().Unix())
	mockRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockRepo := new(mocks.UserRepository)
	svc := newTestAuthService(t, mockRepo)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &domain.User{ID: 42, Username: "bob", Password: string(hash)}
	mockRepo.On("FindByUsername", ctx, "bob").Return(user, nil).Once()

	_, err = svc.Login(ctx, "bob", "wrong")

	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestLogin_UserNotFound(t *testing.T) {
	mockRepo := new(mocks.UserRepository)
	svc := newTestAuthService(t, mockRepo)
	ctx := context.Background()

	mockRepo.On("FindByUsername", ctx, "ghost").Return(nil, repository.ErrUserNotFound).Once()

	_, err := svc.Login(ctx, "ghost", "whatever")

	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestResolveUser(t *testing.T) {
	mockRepo := new(mocks.UserRepository)
	svc := newTestAuthService(t, mockRepo)
	ctx := context.Background()

	mockRepo.On("FindByID", ctx, uint(1)).Return(&domain.User{ID: 1}, nil).Once()
	mockRepo.On("FindByID", ctx, uint(2)).Return(nil, repository.ErrUserNotFound).Once()

	user, err := svc.ResolveUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	_, err = svc.ResolveUser(ctx, 2)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
