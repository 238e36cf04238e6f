package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/recordhub/backend/internal/config"
	"github.com/recordhub/backend/internal/domain"
	"github.com/recordhub/backend/internal/repository"
	"github.com/recordhub/backend/pkg/auth"
	"github.com/recordhub/backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionMeta is advisory request metadata stored with a session. No
// invariant depends on it.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

// IssuedSession carries the only copy of the raw refresh token the server
// will ever produce for this session, plus its expiry for the cookie.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
}

type RotatedSession struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

type sessionService struct {
	sessions      repository.RefreshSessions
	tokenManager  auth.TokenManager
	slidingWindow time.Duration
	absoluteMax   time.Duration

	now func() time.Time
}

func newSessionService(
	sessions repository.RefreshSessions,
	tokenManager auth.TokenManager,
	cfg config.RefreshConfig,
) *sessionService {
	return &sessionService{
		sessions:      sessions,
		tokenManager:  tokenManager,
		slidingWindow: cfg.SlidingWindow(),
		absoluteMax:   cfg.AbsoluteMax(),
		now:           time.Now,
	}
}

// sessionExpiry computes the next expiry for a lineage anchored at origin:
// the sliding window counts from now, the absolute cap from origin, and the
// earlier of the two wins. A result not after now means the lineage's
// lifetime is exhausted.
func sessionExpiry(origin, now time.Time, slidingWindow, absoluteMax time.Duration) time.Time {
	sliding := now.Add(slidingWindow)
	absolute := origin.Add(absoluteMax)
	if absolute.Before(sliding) {
		return absolute
	}
	return sliding
}

// Issue starts a new session lineage for userID. The returned raw token is
// the sole credential; only its hash is persisted.
func (s *sessionService) Issue(ctx context.Context, userID uuid.UUID, meta SessionMeta) (*IssuedSession, error) {
	now := s.now().UTC()

	session, token, err := s.buildSession(userID, now, now, meta)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create refresh session failed: %w", err)
	}

	return &IssuedSession{Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// Rotate exchanges a presented raw token for a fresh one. The new session
// inherits the lineage's origin time, so the absolute cap keeps counting from
// the first login no matter how often the client refreshes.
func (s *sessionService) Rotate(ctx context.Context, rawToken string, meta SessionMeta) (*RotatedSession, error) {
	now := s.now().UTC()

	current, err := s.sessions.GetByTokenHash(ctx, s.tokenManager.HashRefreshToken(rawToken))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("lookup refresh session failed: %w", err)
	}

	if current.ExpiresAt.Before(now) {
		// Reap lazily. Failing to delete is harmless here: the row can no
		// longer authenticate and the cleanup job will collect it.
		if _, err := s.sessions.DeleteByID(ctx, current.ID); err != nil {
			logger.Warn("reap expired refresh session failed", zap.Error(err))
		}
		return nil, ErrSessionExpired
	}

	next, token, err := s.buildSession(current.UserID, current.CreatedAt, now, meta)
	if err != nil {
		// Lifetime exhausted: create nothing, delete nothing. The old
		// session stays valid until its own expiry or an explicit revoke.
		return nil, err
	}

	if err := s.sessions.Replace(ctx, next, current.ID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionRotationFailed, err)
	}

	return &RotatedSession{UserID: current.UserID, Token: token, ExpiresAt: next.ExpiresAt}, nil
}

// Revoke deletes the session matching the presented token. Revoking a token
// with no live session is a success (idempotent logout).
func (s *sessionService) Revoke(ctx context.Context, rawToken string) error {
	if _, err := s.sessions.DeleteByTokenHash(ctx, s.tokenManager.HashRefreshToken(rawToken)); err != nil {
		return fmt.Errorf("revoke refresh session failed: %w", err)
	}

	return nil
}

// RevokeAll deletes every live session of a user.
func (s *sessionService) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.sessions.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke user refresh sessions failed: %w", err)
	}

	return count, nil
}

// PurgeExpired removes lapsed rows. Pure storage hygiene: expired sessions
// are already unusable, lookup reaps them on presentation.
func (s *sessionService) PurgeExpired(ctx context.Context) (int64, error) {
	count, err := s.sessions.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge expired refresh sessions failed: %w", err)
	}

	return count, nil
}

func (s *sessionService) buildSession(userID uuid.UUID, origin, now time.Time, meta SessionMeta) (*domain.RefreshSession, string, error) {
	expiresAt := sessionExpiry(origin, now, s.slidingWindow, s.absoluteMax)
	if !expiresAt.After(now) {
		return nil, "", ErrSessionLifetimeExceeded
	}

	token, err := s.tokenManager.NewRefreshToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate refresh token failed: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, "", fmt.Errorf("generate refresh session id failed: %w", err)
	}

	return &domain.RefreshSession{
		ID:        id,
		UserID:    userID,
		TokenHash: s.tokenManager.HashRefreshToken(token),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		CreatedAt: origin,
		ExpiresAt: expiresAt,
	}, token, nil
}
