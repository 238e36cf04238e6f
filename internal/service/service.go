package service

import (
	"context"

	"github.com/recordhub/backend/internal/config"
	"github.com/recordhub/backend/internal/domain"
	"github.com/recordhub/backend/internal/repository"
	"github.com/recordhub/backend/pkg/auth"
	"github.com/recordhub/backend/pkg/hash"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Services struct {
	Users    Users
	Records  Records
	Sessions Sessions
}

type Deps struct {
	Config       *config.Config
	Hasher       hash.PasswordHasher
	TokenManager auth.TokenManager
	Repos        *repository.Repositories
	Redis        redis.UniversalClient
}

func NewServices(deps Deps) *Services {
	sessions := newSessionService(deps.Repos.RefreshSessions, deps.TokenManager, deps.Config.Auth.Refresh)

	return &Services{
		Users: newUserService(deps.Repos.Users,
			sessions,
			deps.Hasher,
			deps.TokenManager,
			deps.Redis,
			deps.Config,
		),
		Records:  newRecordService(deps.Repos.Records),
		Sessions: sessions,
	}
}

// Sessions is the refresh-session lifecycle manager. It exclusively owns the
// decision of when a session is created or destroyed.
type Sessions interface {
	Issue(ctx context.Context, userID uuid.UUID, meta SessionMeta) (*IssuedSession, error)
	Rotate(ctx context.Context, rawToken string, meta SessionMeta) (*RotatedSession, error)
	Revoke(ctx context.Context, rawToken string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type Users interface {
	SignUp(ctx context.Context, input UserCredentialsInput, meta SessionMeta) (*AuthResult, error)
	SignIn(ctx context.Context, input UserCredentialsInput, meta SessionMeta) (*AuthResult, error)
	Refresh(ctx context.Context, rawToken string, meta SessionMeta) (*AuthResult, error)
	Logout(ctx context.Context, rawToken string) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type Records interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateRecordInput) (*domain.Record, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Record, error)
	Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, input UpdateRecordInput) (*domain.Record, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}
