package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/recordhub/backend/internal/config"
	"github.com/recordhub/backend/internal/domain"
	"github.com/recordhub/backend/internal/queue/client"
	"github.com/recordhub/backend/internal/queue/task"
	"github.com/recordhub/backend/internal/repository"
	"github.com/recordhub/backend/pkg/auth"
	"github.com/recordhub/backend/pkg/hash"
	"github.com/recordhub/backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const userCacheTTL = 5 * time.Minute

type userService struct {
	userRepository repository.Users
	sessions       Sessions
	hasher         hash.PasswordHasher
	tokenManager   auth.TokenManager
	cache          redis.UniversalClient
	config         *config.Config
}

func newUserService(userRepository repository.Users,
	sessions Sessions,
	hasher hash.PasswordHasher,
	tokenManager auth.TokenManager,
	cache redis.UniversalClient,
	config *config.Config,
) *userService {
	return &userService{
		userRepository: userRepository,
		sessions:       sessions,
		hasher:         hasher,
		tokenManager:   tokenManager,
		cache:          cache,
		config:         config,
	}
}

type UserCredentialsInput struct {
	Email    string
	Password string
}

// AuthResult is what every successful auth operation hands back to the HTTP
// layer: the access JWT for the response body and the refresh token for the
// session cookie.
type AuthResult struct {
	AccessToken      string
	AccessTTL        time.Duration
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *domain.User
}

func (s *userService) SignUp(ctx context.Context, input UserCredentialsInput, meta SessionMeta) (*AuthResult, error) {
	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate user id failed: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Email:        input.Email,
		PasswordHash: passwordHash,
	}

	if err := s.userRepository.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, ErrUserAlreadyExist
		}
		return nil, fmt.Errorf("create user failed: %w", err)
	}

	s.enqueueWelcomeEmail(ctx, user.Email)

	return s.authenticate(ctx, user, meta)
}

func (s *userService) SignIn(ctx context.Context, input UserCredentialsInput, meta SessionMeta) (*AuthResult, error) {
	user, err := s.userRepository.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}

	if !s.hasher.Check(user.PasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.authenticate(ctx, user, meta)
}

func (s *userService) Refresh(ctx context.Context, rawToken string, meta SessionMeta) (*AuthResult, error) {
	rotated, err := s.sessions.Rotate(ctx, rawToken, meta)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.GetOneByID(ctx, rotated.UserID)
	if err != nil {
		return nil, fmt.Errorf("get rotated session user failed: %w", err)
	}

	accessToken, accessTTL, err := s.tokenManager.NewJWT(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate access token failed: %w", err)
	}

	return &AuthResult{
		AccessToken:      accessToken,
		AccessTTL:        accessTTL,
		RefreshToken:     rotated.Token,
		RefreshExpiresAt: rotated.ExpiresAt,
		User:             user,
	}, nil
}

func (s *userService) Logout(ctx context.Context, rawToken string) error {
	return s.sessions.Revoke(ctx, rawToken)
}

func (s *userService) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := s.cachedUser(ctx, id); ok {
		return user, nil
	}

	user, err := s.userRepository.GetOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.cacheUser(ctx, user)

	return user, nil
}

func (s *userService) authenticate(ctx context.Context, user *domain.User, meta SessionMeta) (*AuthResult, error) {
	accessToken, accessTTL, err := s.tokenManager.NewJWT(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate access token failed: %w", err)
	}

	issued, err := s.sessions.Issue(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:      accessToken,
		AccessTTL:        accessTTL,
		RefreshToken:     issued.Token,
		RefreshExpiresAt: issued.ExpiresAt,
		User:             user,
	}, nil
}

func (s *userService) enqueueWelcomeEmail(ctx context.Context, email string) {
	if !s.config.Email.Enabled {
		return
	}

	queueClient := client.GetClient(ctx)
	if queueClient == nil {
		return
	}

	welcomeTask, err := task.NewSendWelcomeEmailTask(email)
	if err != nil {
		logger.Error("build welcome email task failed", zap.Error(err))
		return
	}

	if _, err := queueClient.EnqueueContext(ctx, welcomeTask); err != nil {
		logger.Error("enqueue welcome email failed", zap.Error(err))
	}
}

func userCacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

func (s *userService) cachedUser(ctx context.Context, id uuid.UUID) (*domain.User, bool) {
	if s.cache == nil {
		return nil, false
	}

	payload, err := s.cache.Get(ctx, userCacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}

	var user domain.User
	if err := json.Unmarshal(payload, &user); err != nil {
		return nil, false
	}

	return &user, true
}

func (s *userService) cacheUser(ctx context.Context, user *domain.User) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, userCacheKey(user.ID), payload, userCacheTTL).Err(); err != nil {
		logger.Debug("cache user failed", zap.Error(err))
	}
}
