package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/recordhub/backend/internal/config"
	"github.com/recordhub/backend/internal/domain"
	"github.com/recordhub/backend/pkg/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessionStore is an in-memory stand-in for the MySQL-backed gateway. It
// mirrors the storage contract, including the "missing old row is not a
// failure" semantics of Replace.
type fakeSessionStore struct {
	mu       sync.Mutex
	byHash   map[string]*domain.RefreshSession
	failNext error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{byHash: make(map[string]*domain.RefreshSession)}
}

func (f *fakeSessionStore) takeFailure() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeSessionStore) Create(_ context.Context, session *domain.RefreshSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	if _, exists := f.byHash[session.TokenHash]; exists {
		return domain.ErrDuplicateEntry
	}
	clone := *session
	f.byHash[session.TokenHash] = &clone
	return nil
}

func (f *fakeSessionStore) GetByTokenHash(_ context.Context, tokenHash string) (*domain.RefreshSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.byHash[tokenHash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *session
	return &clone, nil
}

func (f *fakeSessionStore) DeleteByID(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for hash, session := range f.byHash {
		if session.ID == id {
			delete(f.byHash, hash)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSessionStore) DeleteByTokenHash(_ context.Context, tokenHash string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return 0, err
	}
	if _, ok := f.byHash[tokenHash]; !ok {
		return 0, nil
	}
	delete(f.byHash, tokenHash)
	return 1, nil
}

func (f *fakeSessionStore) DeleteByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for hash, session := range f.byHash {
		if session.UserID == userID {
			delete(f.byHash, hash)
			count++
		}
	}
	return count, nil
}

func (f *fakeSessionStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for hash, session := range f.byHash {
		if session.ExpiresAt.Before(before) {
			delete(f.byHash, hash)
			count++
		}
	}
	return count, nil
}

func (f *fakeSessionStore) Replace(_ context.Context, next *domain.RefreshSession, oldID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	if _, exists := f.byHash[next.TokenHash]; exists {
		return domain.ErrDuplicateEntry
	}
	clone := *next
	f.byHash[next.TokenHash] = &clone
	// the old row may already be gone; the create still commits
	for hash, session := range f.byHash {
		if session.ID == oldID {
			delete(f.byHash, hash)
			break
		}
	}
	return nil
}

func (f *fakeSessionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byHash)
}

type sessionFixture struct {
	service *sessionService
	store   *fakeSessionStore
	clock   time.Time
}

func newSessionFixture(t *testing.T, slidingWindow, absoluteMax time.Duration) *sessionFixture {
	t.Helper()

	manager, err := auth.NewManager(config.JWTConfig{
		SigningKey:     "test-key",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)

	f := &sessionFixture{
		store: newFakeSessionStore(),
		clock: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = &sessionService{
		sessions:      f.store,
		tokenManager:  manager,
		slidingWindow: slidingWindow,
		absoluteMax:   absoluteMax,
		now:           func() time.Time { return f.clock },
	}

	return f
}

func (f *sessionFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func TestSessionExpiry(t *testing.T) {
	origin := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sliding := 2 * time.Minute
	absolute := 3 * time.Minute

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"fresh issuance uses sliding window", origin, origin.Add(2 * time.Minute)},
		{"renewal capped by absolute max", origin.Add(time.Minute), origin.Add(3 * time.Minute)},
		{"already capped stays capped", origin.Add(2*time.Minute + 30*time.Second), origin.Add(3 * time.Minute)},
		{"past the cap yields an expiry in the past", origin.Add(3*time.Minute + time.Second), origin.Add(3 * time.Minute)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := sessionExpiry(origin, tc.now, sliding, absolute)
			assert.True(t, got.Equal(tc.want), "got %s want %s", got, tc.want)
		})
	}
}

func TestIssue(t *testing.T) {
	f := newSessionFixture(t, 2*time.Minute, 3*time.Minute)

	issued, err := f.service.Issue(context.Background(), uuid.New(), SessionMeta{UserAgent: "go-test", IPAddress: "127.0.0.1"})
	require.NoError(t, err)

	assert.NotEmpty(t, issued.Token)
	assert.True(t, issued.ExpiresAt.Equal(f.clock.Add(2*time.Minute)))
	assert.Equal(t, 1, f.store.count())

	// only the hash is persisted, never the raw token
	hash := f.service.tokenManager.HashRefreshToken(issued.Token)
	stored, err := f.store.GetByTokenHash(context.Background(), hash)
	require.NoError(t, err)
	assert.NotEqual(t, issued.Token, stored.TokenHash)
	assert.True(t, stored.CreatedAt.Equal(f.clock))
}

func TestRotate_SlidingWindowCappedByAbsoluteMax(t *testing.T) {
	f := newSessionFixture(t, 2*time.Minute, 3*time.Minute)
	origin := f.clock

	issued, err := f.service.Issue(context.Background(), uuid.New(), SessionMeta{})
	require.NoError(t, err)

	// t+1m: min(now+2m, origin+3m) = origin+3m
	f.advance(time.Minute)
	first, err := f.service.Rotate(context.Background(), issued.Token, SessionMeta{})
	require.NoError(t, err)
	assert.True(t, first.ExpiresAt.Equal(origin.Add(3*time.Minute)))

	// t+2m30s: still capped at origin+3m
	f.advance(90 * time.Second)
	second, err := f.service.Rotate(context.Background(), first.Token, SessionMeta{})
	require.NoError(t, err)
	assert.True(t, second.ExpiresAt.Equal(origin.Add(3*time.Minute)))

	// t+3m1s: the lineage is out of lifetime
	f.advance(31 * time.Second)
	_, err = f.service.Rotate(context.Background(), second.Token, SessionMeta{})
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestRotate_LifetimeExceededLeavesOldSessionAlone(t *testing.T) {
	f := newSessionFixture(t, 2*time.Hour, 3*time.Hour)

	issued, err := f.service.Issue(context.Background(), uuid.New(), SessionMeta{})
	require.NoError(t, err)

	// Rotate inside the sliding window so the successor is capped at origin+3h.
	f.advance(90 * time.Minute)
	rotated, err := f.service.Rotate(context.Background(), issued.Token, SessionMeta{})
	require.NoError(t, err)
	require.True(t, rotated.ExpiresAt.Equal(f.clock.Add(90*time.Minute)))

	// Present the successor at the very moment the lineage's lifetime runs
	// out: the session itself is not yet lapsed, but no successor could have
	// an expiry after now.
	f.advance(90 * time.Minute)
	require.False(t, rotated.ExpiresAt.Before(f.clock))

	_, err = f.service.Rotate(context.Background(), rotated.Token, SessionMeta{})
	assert.ErrorIs(t, err, ErrSessionLifetimeExceeded)

	// Nothing was created or deleted; the presented token still resolves.
	hash := f.service.tokenManager.HashRefreshToken(rotated.Token)
	_, err = f.store.GetByTokenHash(context.Background(), hash)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.store.count())
}

func TestRotate_SingleUse(t *testing.T) {
	f := newSessionFixture(t, 2*time.Hour, 30*time.Hour)

	issued, err := f.service.Issue(context.Background(), uuid.New(), SessionMeta{})
	require.NoError(t, err)

	f.advance(time.Minute)
	_, err = f.service.Rotate(context.Background(), issued.Token, SessionMeta{})
	require.NoError(t, err)

	// the original token was consumed by the first rotation
	_, err = f.service.Rotate(context.Background(), issued.Token, SessionMeta{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRotate_ExpiredSessionIsReaped(t *testing.T) {
	f := newSessionFixture(t, time.Hour, 24*time.Hour)

	issued, err := f.service.Issue(context.Background(), uuid.New(), SessionMeta{})
	require.NoError(t, err)

	f.advance(2 * time.Hour)
	_, err = f.service.Rotate(context.Background(), issued.Token, SessionMeta{})
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, f.store.count(), "expired row must be deleted lazily")
}

func TestRotate_UnknownToken(t *testing.T) {
	f := newSessionFixture(t, time.Hour, 24*time.Hour)

	_, err := f.service.Rotate(context.Background(), "forged-token", SessionMeta{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRotate_StorageFailureKeepsOldSessionValid(t *testing.T) {
	f := newSessionFixture(t, time.Hour, 24*time.Hour)

	issued, err := f.service.Issue(context.Background(), uuid.New(), SessionMeta{})
	require.NoError(t, err)

	f.advance(time.Minute)
	f.store.failNext = errors.New("connection reset")
	_, err = f.service.Rotate(context.Background(), issued.Token, SessionMeta{})
	assert.ErrorIs(t, err, ErrSessionRotationFailed)

	// fail safe: the presented token must remain exactly as valid as before
	f.advance(time.Minute)
	rotated, err := f.service.Rotate(context.Background(), issued.Token, SessionMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.Token)
}

func TestRevoke(t *testing.T) {
	f := newSessionFixture(t, time.Hour, 24*time.Hour)

	issued, err := f.service.Issue(context.Background(), uuid.New(), SessionMeta{})
	require.NoError(t, err)

	require.NoError(t, f.service.Revoke(context.Background(), issued.Token))
	assert.Equal(t, 0, f.store.count())

	// revoking again is a success (idempotent logout)
	require.NoError(t, f.service.Revoke(context.Background(), issued.Token))

	// and the revoked token can no longer rotate
	_, err = f.service.Rotate(context.Background(), issued.Token, SessionMeta{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRevokeAll(t *testing.T) {
	f := newSessionFixture(t, time.Hour, 24*time.Hour)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := f.service.Issue(context.Background(), userID, SessionMeta{})
		require.NoError(t, err)
	}
	_, err := f.service.Issue(context.Background(), uuid.New(), SessionMeta{})
	require.NoError(t, err)

	count, err := f.service.RevokeAll(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, 1, f.store.count(), "other users' sessions stay")
}

func TestPurgeExpired(t *testing.T) {
	f := newSessionFixture(t, time.Hour, 24*time.Hour)

	_, err := f.service.Issue(context.Background(), uuid.New(), SessionMeta{})
	require.NoError(t, err)

	f.advance(30 * time.Minute)
	_, err = f.service.Issue(context.Background(), uuid.New(), SessionMeta{})
	require.NoError(t, err)

	f.advance(45 * time.Minute)
	count, err := f.service.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, f.store.count())
}

// TestRotate_AbsoluteCapHoldsUnderRandomSchedules drives random rotation
// schedules and checks that no session of a lineage ever outlives
// origin + absoluteMax, no matter how frequently the client refreshes.
func TestRotate_AbsoluteCapHoldsUnderRandomSchedules(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		sliding := time.Duration(1+rng.Intn(5)) * time.Hour
		absolute := sliding + time.Duration(rng.Intn(48))*time.Hour

		f := newSessionFixture(t, sliding, absolute)
		origin := f.clock
		deadline := origin.Add(absolute)

		issued, err := f.service.Issue(context.Background(), uuid.New(), SessionMeta{})
		require.NoError(t, err)
		require.False(t, issued.ExpiresAt.After(deadline))

		token := issued.Token
		for {
			// refresh at intervals well inside the sliding window
			f.advance(time.Duration(1+rng.Intn(int(sliding/time.Minute))) * time.Minute)

			rotated, err := f.service.Rotate(context.Background(), token, SessionMeta{})
			if err != nil {
				require.True(t,
					errors.Is(err, ErrSessionLifetimeExceeded) || errors.Is(err, ErrSessionExpired),
					"unexpected rotation error: %v", err)
				break
			}

			require.False(t, rotated.ExpiresAt.After(deadline),
				"expiry %s exceeds absolute cap %s", rotated.ExpiresAt, deadline)
			token = rotated.Token
		}
	}
}

func TestRotate_ConcurrentSameToken(t *testing.T) {
	f := newSessionFixture(t, time.Hour, 24*time.Hour)

	issued, err := f.service.Issue(context.Background(), uuid.New(), SessionMeta{})
	require.NoError(t, err)

	f.advance(time.Minute)

	const attempts = 2
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Rotate(context.Background(), issued.Token, SessionMeta{})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrSessionNotFound)
		}
	}

	// one or two successors are acceptable; zero is not
	assert.GreaterOrEqual(t, succeeded, 1)
	assert.GreaterOrEqual(t, f.store.count(), 1)

	// the original token is unconditionally dead
	_, err = f.service.Rotate(context.Background(), issued.Token, SessionMeta{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
