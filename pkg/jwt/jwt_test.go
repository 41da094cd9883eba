package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	m, err := NewManager(time.Hour, "test-issuer")
	require.NoError(t, err)

	token, err := m.GenerateToken("user-1", "alice", "buyer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "buyer", claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)
}

func TestValidateExpiredToken(t *testing.T) {
	m, err := NewManager(-time.Minute, "test-issuer")
	require.NoError(t, err)

	token, err := m.GenerateToken("user-1", "alice", "buyer")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenFromOtherKey(t *testing.T) {
	issuer, err := NewManager(time.Hour, "test-issuer")
	require.NoError(t, err)
	verifier, err := NewManager(time.Hour, "test-issuer")
	require.NoError(t, err)

	token, err := issuer.GenerateToken("user-1", "alice", "buyer")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateGarbage(t *testing.T) {
	m, err := NewManager(time.Hour, "test-issuer")
	require.NoError(t, err)

	_, err = m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
