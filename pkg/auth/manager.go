package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/recordhub/backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrAccessTokenExpired = errors.New("token has invalid claims: token is expired")

// refreshTokenBytes gives 384 bits of entropy per raw refresh token.
const refreshTokenBytes = 48

// TokenManager provides logic for JWT and opaque refresh token generation and
// parsing. Raw refresh tokens are never stored; only their sha256 digest is.
type TokenManager interface {
	NewJWT(userID *uuid.UUID) (string, time.Duration, error)
	Parse(accessToken string) (string, error)
	NewRefreshToken() (string, error)
	HashRefreshToken(rawToken string) string
}

type Manager struct {
	signingKey     string
	accessTokenTTL time.Duration
}

func NewManager(cfg config.JWTConfig) (*Manager, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("empty signing key")
	}

	if cfg.AccessTokenTTL == 0 {
		return nil, errors.New("empty access token ttl")
	}

	return &Manager{
		signingKey:     cfg.SigningKey,
		accessTokenTTL: cfg.AccessTokenTTL,
	}, nil
}

func (m *Manager) NewJWT(userID *uuid.UUID) (string, time.Duration, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.accessTokenTTL)),
		Subject:   userID.String(),
	})

	accessToken, err := token.SignedString([]byte(m.signingKey))
	if err != nil {
		return "", 0, errors.New("sign jwt failed")
	}

	return accessToken, m.accessTokenTTL, nil
}

func (m *Manager) Parse(accessToken string) (string, error) {
	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (i interface{}, err error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(m.signingKey), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("error get user claims from token")
	}

	//nolint:forcetypeassert
	return claims["sub"].(string), nil
}

// NewRefreshToken returns a high-entropy opaque token. The raw value is the
// only credential the client ever holds; it is transmitted once per rotation.
func (m *Manager) NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("new refresh token failed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashRefreshToken derives the deterministic server-side lookup key for a raw
// refresh token. The digest is not reversible.
func (m *Manager) HashRefreshToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
