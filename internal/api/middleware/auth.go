package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"Chorus/internal/auth"
)

// Context keys for storing user information
type contextKey string

const identityKey contextKey = "identity"

// AuthMiddleware enforces bearer-token authentication for protected routes
type AuthMiddleware struct {
	tokens *auth.Tokens
}

// NewAuthMiddleware creates a new auth middleware around the token verifier
func NewAuthMiddleware(tokens *auth.Tokens) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth ensures the request carries a valid token.
// If not authenticated, returns 401; otherwise the verified identity is
// injected into the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, "Missing Authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeAuthError(w, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		identity, err := m.tokens.Verify(token)
		if err != nil {
			log.Printf("[AUTH_FAILURE] ip=%s method=%s path=%s error=%v",
				r.RemoteAddr, r.Method, r.URL.Path, err)
			writeAuthError(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentity returns the verified identity injected by RequireAuth.
// The second return is false on routes that did not pass through it.
func GetIdentity(r *http.Request) (auth.Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(auth.Identity)
	return identity, ok
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   "AuthRequired",
		"message": message,
	}); err != nil {
		log.Printf("Failed to encode auth error response: %v", err)
	}
}
