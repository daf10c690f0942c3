package users

import (
	"context"
	"testing"
	"time"

	"Chorus/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of the Repository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) SetRole(ctx context.Context, id, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func testTokens() *auth.Tokens {
	return auth.NewTokens([]byte("test-secret-test-secret-32bytes!"), time.Hour)
}

func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewService(mockRepo, testTokens(), nil)
	ctx := context.Background()

	mockRepo.On("GetByUsername", ctx, "alice").Return(nil, NewNotFoundError("alice"))
	mockRepo.On("Create", ctx, mock.AnythingOfType("*users.User")).Return(nil)

	user, err := service.Register(ctx, RegisterRequest{Username: "alice", Password: "correcthorse"})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ItemID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, auth.RoleUser, user.Role)
	assert.Empty(t, user.Password, "password must be stripped from the response")
	assert.NotZero(t, user.Time)

	// The persisted record carries a bcrypt hash, not the plaintext
	created := mockRepo.Calls[1].Arguments.Get(1).(*User)
	assert.NotEqual(t, "correcthorse", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("correcthorse")))
}

func TestRegister_UsernameTaken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewService(mockRepo, testTokens(), nil)
	ctx := context.Background()

	mockRepo.On("GetByUsername", ctx, "alice").Return(&User{Username: "alice"}, nil)

	_, err := service.Register(ctx, RegisterRequest{Username: "alice", Password: "correcthorse"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.True(t, IsConflict(err))
	mockRepo.AssertNotCalled(t, "Create")
}

func TestRegister_Validation(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewService(mockRepo, testTokens(), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"blank username", RegisterRequest{Username: "  ", Password: "correcthorse"}},
		{"short password", RegisterRequest{Username: "alice", Password: "short"}},
		{"bad role", RegisterRequest{Username: "alice", Password: "correcthorse", Role: "overlord"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, tt.req)
			assert.True(t, IsValidationError(err))
		})
	}
	mockRepo.AssertNotCalled(t, "Create")
}

func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	tokens := testTokens()
	service := NewService(mockRepo, tokens, nil)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.MinCost)
	require.NoError(t, err)
	mockRepo.On("GetByUsername", ctx, "alice").Return(&User{
		ItemID:   "u1",
		Username: "alice",
		Password: string(hash),
		Role:     auth.RoleAdmin,
	}, nil)

	resp, err := service.Login(ctx, LoginRequest{Username: "alice", Password: "correcthorse"})

	require.NoError(t, err)
	assert.Empty(t, resp.User.Password)

	identity, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserID)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, auth.RoleAdmin, identity.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewService(mockRepo, testTokens(), nil)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.MinCost)
	mockRepo.On("GetByUsername", ctx, "alice").Return(&User{Username: "alice", Password: string(hash)}, nil)

	_, err := service.Login(ctx, LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewService(mockRepo, testTokens(), nil)
	ctx := context.Background()

	mockRepo.On("GetByUsername", ctx, "ghost").Return(nil, NewNotFoundError("ghost"))

	_, err := service.Login(ctx, LoginRequest{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateRole_AdminOnly(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewService(mockRepo, testTokens(), nil)
	ctx := context.Background()

	err := service.UpdateRole(ctx, "u1", auth.RoleAdmin, auth.Identity{UserID: "u2", Role: auth.RoleUser})
	assert.True(t, IsForbidden(err))
	mockRepo.AssertNotCalled(t, "SetRole")

	mockRepo.On("GetByID", ctx, "u1").Return(&User{ItemID: "u1"}, nil)
	mockRepo.On("SetRole", ctx, "u1", auth.RoleAdmin).Return(nil)

	err = service.UpdateRole(ctx, "u1", auth.RoleAdmin, auth.Identity{UserID: "u2", Role: auth.RoleAdmin})
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUpdateRole_InvalidRole(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewService(mockRepo, testTokens(), nil)

	err := service.UpdateRole(context.Background(), "u1", "overlord", auth.Identity{Role: auth.RoleAdmin})
	assert.True(t, IsValidationError(err))
}

func TestDelete_SelfAndAdminAllowed(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewService(mockRepo, testTokens(), nil)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, "u1").Return(&User{ItemID: "u1"}, nil)
	mockRepo.On("Delete", ctx, "u1").Return(nil).Twice()

	err := service.Delete(ctx, "u1", auth.Identity{UserID: "u1", Role: auth.RoleUser})
	assert.NoError(t, err)

	err = service.Delete(ctx, "u1", auth.Identity{UserID: "u9", Role: auth.RoleAdmin})
	assert.NoError(t, err)
}

func TestDelete_StrangerForbidden(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewService(mockRepo, testTokens(), nil)

	err := service.Delete(context.Background(), "u1", auth.Identity{UserID: "u2", Role: auth.RoleUser})
	assert.True(t, IsForbidden(err))
	mockRepo.AssertNotCalled(t, "Delete")
}
