package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	id := Identity{UserID: "u-123", Username: "alice", Role: RoleAdmin}
	signed, err := tokens.Issue(id)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	got, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.True(t, got.IsAdmin())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)
	other := NewTokens([]byte("other-secret"), time.Hour)

	signed, err := tokens.Issue(Identity{UserID: "u-1", Username: "bob", Role: RoleUser})
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), -time.Minute)

	signed, err := tokens.Issue(Identity{UserID: "u-1", Username: "bob", Role: RoleUser})
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	_, err := tokens.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("moderator"))
	assert.False(t, ValidRole(""))
}
