package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Roles recognized across the service
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the recognized roles
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Identity is the authenticated caller as seen by the core services.
// It is what a verified token yields; the core never inspects tokens.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// ErrInvalidToken is returned for tokens that fail parsing, signature
// verification, or expiry checks
var ErrInvalidToken = errors.New("invalid or expired token")

// Tokens issues and verifies the service's HS256 bearer tokens
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token issuer/verifier with the given signing secret
// and token lifetime
func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{secret: secret, ttl: ttl}
}

// Issue signs a token carrying the identity's id, username and role
func (t *Tokens) Issue(id Identity) (string, error) {
	now := time.Now().UTC()
	tok, err := jwt.NewBuilder().
		Subject(id.UserID).
		IssuedAt(now).
		Expiration(now.Add(t.ttl)).
		Claim("username", id.Username).
		Claim("role", id.Role).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, t.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Verify checks signature and expiry and extracts the caller identity
func (t *Tokens) Verify(token string) (Identity, error) {
	tok, err := jwt.Parse([]byte(token), jwt.WithKey(jwa.HS256, t.secret), jwt.WithValidate(true))
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{UserID: tok.Subject()}
	if username, ok := tok.Get("username"); ok {
		id.Username, _ = username.(string)
	}
	if role, ok := tok.Get("role"); ok {
		id.Role, _ = role.(string)
	}
	if id.Username == "" || !ValidRole(id.Role) {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}
