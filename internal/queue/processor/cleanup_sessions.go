package processor

import (
	"context"

	"github.com/recordhub/backend/internal/service"
	"github.com/recordhub/backend/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type cleanupSessionsProcessor struct {
	sessions service.Sessions
}

func NewCleanupSessionsProcessor(sessions service.Sessions) *cleanupSessionsProcessor {
	return &cleanupSessionsProcessor{
		sessions: sessions,
	}
}

func (p *cleanupSessionsProcessor) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	count, err := p.sessions.PurgeExpired(ctx)
	if err != nil {
		return errors.Wrap(err, "purge expired refresh sessions failed")
	}

	if count > 0 {
		logger.Info("purged expired refresh sessions", zap.Int64("count", count))
	}

	return nil
}
