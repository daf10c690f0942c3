package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Chorus/internal/auth"
	"Chorus/internal/core/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserService is a mock implementation of the users Service interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req users.RegisterRequest) (*users.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, req users.LoginRequest) (*users.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.LoginResponse), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id string) (*users.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockUserService) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockUserService) UpdateRole(ctx context.Context, id, role string, requester auth.Identity) error {
	args := m.Called(ctx, id, role, requester)
	return args.Error(0)
}

func (m *MockUserService) Delete(ctx context.Context, id string, requester auth.Identity) error {
	args := m.Called(ctx, id, requester)
	return args.Error(0)
}

func TestHandleRegister_StripsRequestedRole(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewRegisterHandler(mockService)

	// A client asking for admin at signup still registers as a plain
	// user; roles are granted only through the role endpoint.
	mockService.On("Register", mock.Anything, mock.MatchedBy(func(req users.RegisterRequest) bool {
		return req.Username == "mallory" && req.Role == ""
	})).Return(&users.User{ItemID: "u1", Username: "mallory", Role: auth.RoleUser}, nil)

	body := `{"username":"mallory","password":"correcthorse","role":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleRegister(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"user"`)
	mockService.AssertExpectations(t)
}

func TestHandleRegister_UsernameTakenIsConflict(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewRegisterHandler(mockService)

	mockService.On("Register", mock.Anything, mock.Anything).Return(nil, users.ErrUsernameTaken)

	body := `{"username":"alice","password":"correcthorse"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleRegister(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleRegister_MalformedBody(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewRegisterHandler(mockService)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.HandleRegister(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "Register")
}
