package users

import (
	"context"

	"Chorus/internal/auth"
)

// Service defines the business logic interface for accounts
type Service interface {
	// Register creates a new account with a unique username and returns
	// it with the password stripped
	Register(ctx context.Context, req RegisterRequest) (*User, error)

	// Login verifies credentials and returns a signed token
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)

	// GetByID retrieves an account by id, password stripped
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByUsername retrieves an account by username, password stripped
	GetByUsername(ctx context.Context, username string) (*User, error)

	// UpdateRole changes an account's role; admin only
	UpdateRole(ctx context.Context, id, role string, requester auth.Identity) error

	// Delete removes an account; the account holder or an admin may delete
	Delete(ctx context.Context, id string, requester auth.Identity) error
}

// Repository defines the data access interface for accounts
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)       // NotFoundError when absent
	GetByUsername(ctx context.Context, username string) (*User, error) // NotFoundError when absent
	SetRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) error
}
