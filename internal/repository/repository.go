package repository

import (
	"context"
	"time"

	"github.com/recordhub/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Users           Users
	Records         Records
	RefreshSessions RefreshSessions
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:           newUserRepository(db),
		Records:         newRecordRepository(db),
		RefreshSessions: newRefreshSessionRepository(db),
	}
}

type Users interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type RecordUpdate struct {
	Title   *string
	Content *string
}

type Records interface {
	Create(ctx context.Context, record *domain.Record) error
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Record, error)
	GetOne(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Record, error)
	Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, update RecordUpdate) (*domain.Record, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) (bool, error)
}

// RefreshSessions is the storage contract behind the session lifecycle. It
// executes what it is told and holds no policy: deciding when a row is
// created or destroyed belongs to the service layer.
type RefreshSessions interface {
	Create(ctx context.Context, session *domain.RefreshSession) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshSession, error)

	// DeleteByID reports whether a row was actually removed instead of
	// surfacing a vendor "not found" error; callers decide if a missing
	// row matters.
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) (int64, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)

	// Replace atomically creates next and deletes the session oldID in one
	// transaction. The old row having already been deleted by a concurrent
	// rotation or logout is not a failure; the create still commits.
	Replace(ctx context.Context, next *domain.RefreshSession, oldID uuid.UUID) error
}
