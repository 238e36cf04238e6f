package processor

import (
	"context"
	"encoding/json"

	"github.com/recordhub/backend/internal/queue/task"
	"github.com/recordhub/backend/internal/worker"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
)

type sendWelcomeEmailProcessor struct {
	workers *worker.Workers
}

func NewSendWelcomeEmailProcessor(workers *worker.Workers) *sendWelcomeEmailProcessor {
	return &sendWelcomeEmailProcessor{
		workers: workers,
	}
}

func (p *sendWelcomeEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendWelcomeEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return errors.Wrap(err, "process welcome email task json unmarshal failed")
	}

	if err := p.workers.EmailSender.SendWelcomeEmail(ctx, data.Email); err != nil {
		return errors.Wrap(err, "send welcome email failed")
	}

	return nil
}
