package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"Chorus/internal/auth"
)

const minPasswordLen = 8

type userService struct {
	repo   Repository
	tokens *auth.Tokens
	logger *slog.Logger
}

// NewService creates a new user service
func NewService(repo Repository, tokens *auth.Tokens, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{repo: repo, tokens: tokens, logger: logger}
}

// Register creates a new account. The username check is a read before the
// conditional put, matching the store's first-writer-wins semantics.
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, NewValidationError("username", "username must be a non-empty string")
	}
	if len(req.Password) < minPasswordLen {
		return nil, NewValidationError("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	role := req.Role
	if role == "" {
		role = auth.RoleUser
	}
	if !auth.ValidRole(role) {
		return nil, NewValidationError("role", "role must be user or admin")
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ItemID:   uuid.NewString(),
		Username: username,
		Password: string(hash),
		Role:     role,
		Time:     time.Now().UnixMilli(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "userID", user.ItemID, "username", username, "role", role)
	return user.Public(), nil
}

// Login verifies credentials and issues a token. Lookup and compare
// failures both surface as ErrInvalidCredentials.
func (s *userService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}

	token, err := s.tokens.Issue(auth.Identity{
		UserID:   user.ItemID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in", "userID", user.ItemID, "username", user.Username)
	return &LoginResponse{Token: token, User: user.Public()}, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *userService) UpdateRole(ctx context.Context, id, role string, requester auth.Identity) error {
	if !requester.IsAdmin() {
		return ErrForbidden
	}
	if !auth.ValidRole(role) {
		return NewValidationError("role", "role must be user or admin")
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetRole(ctx, id, role); err != nil {
		return err
	}

	s.logger.Info("user role updated", "userID", id, "role", role, "requester", requester.Username)
	return nil
}

func (s *userService) Delete(ctx context.Context, id string, requester auth.Identity) error {
	if !requester.IsAdmin() && requester.UserID != id {
		return ErrForbidden
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted", "userID", id, "requester", requester.Username)
	return nil
}
