package auth

import (
	"testing"
	"time"

	"github.com/recordhub/backend/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager(config.JWTConfig{
		SigningKey:     "test-signing-key",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)

	return m
}

func TestNewManager_InvalidConfig(t *testing.T) {
	_, err := NewManager(config.JWTConfig{AccessTokenTTL: time.Minute})
	assert.Error(t, err)

	_, err = NewManager(config.JWTConfig{SigningKey: "key"})
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	m := newTestManager(t)

	userID := uuid.New()
	token, ttl, err := m.NewJWT(&userID)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	sub, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), sub)
}

func TestParse_WrongKey(t *testing.T) {
	m := newTestManager(t)

	userID := uuid.New()
	token, _, err := m.NewJWT(&userID)
	require.NoError(t, err)

	other, err := NewManager(config.JWTConfig{
		SigningKey:     "another-key",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestNewRefreshToken(t *testing.T) {
	m := newTestManager(t)

	first, err := m.NewRefreshToken()
	require.NoError(t, err)
	second, err := m.NewRefreshToken()
	require.NoError(t, err)

	// 48 random bytes, hex encoded
	assert.Len(t, first, 96)
	assert.NotEqual(t, first, second)
}

func TestHashRefreshToken(t *testing.T) {
	m := newTestManager(t)

	token, err := m.NewRefreshToken()
	require.NoError(t, err)

	hash := m.HashRefreshToken(token)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, m.HashRefreshToken(token), "hash must be deterministic")
	assert.NotEqual(t, hash, m.HashRefreshToken(token+"x"))
	assert.NotContains(t, hash, token)
}
