package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	s, err := NewSigner("secret", time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := s.Sign("u1", TokenKindAccess, time.Now())
	require.NoError(t, err)

	userID, err := s.Parse(token, TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestSignerKindMismatch(t *testing.T) {
	s, err := NewSigner("secret", time.Minute, time.Hour)
	require.NoError(t, err)

	refresh, err := s.Sign("u1", TokenKindRefresh, time.Now())
	require.NoError(t, err)

	_, err = s.Parse(refresh, TokenKindAccess)
	assert.Error(t, err)

	access, err := s.Sign("u1", TokenKindAccess, time.Now())
	require.NoError(t, err)

	_, err = s.Parse(access, TokenKindRefresh)
	assert.Error(t, err)
}

func TestSignerExpiry(t *testing.T) {
	s, err := NewSigner("secret", time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := s.Sign("u1", TokenKindAccess, time.Now().Add(-2*time.Minute))
	require.NoError(t, err)

	_, err = s.Parse(token, TokenKindAccess)
	assert.Error(t, err)
}

func TestSignerWrongSecret(t *testing.T) {
	a, err := NewSigner("secret-a", time.Minute, time.Hour)
	require.NoError(t, err)
	b, err := NewSigner("secret-b", time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := a.Sign("u1", TokenKindAccess, time.Now())
	require.NoError(t, err)

	_, err = b.Parse(token, TokenKindAccess)
	assert.Error(t, err)
}

func TestNewSignerValidation(t *testing.T) {
	_, err := NewSigner("", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewSigner("secret", 0, time.Hour)
	assert.Error(t, err)

	_, err = NewSigner("secret", time.Minute, 0)
	assert.Error(t, err)
}
