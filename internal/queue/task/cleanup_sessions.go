package task

import "github.com/hibiken/asynq"

const (
	CleanupSessionsTaskName  = "cleanupSessionsTask"
	CleanupSessionsQueueName = "maintenanceQueue"
)

// NewCleanupSessionsTask enqueues a sweep of lapsed refresh sessions. The
// sweep is storage hygiene only; expired sessions are already unusable.
func NewCleanupSessionsTask() *asynq.Task {
	return asynq.NewTask(
		CleanupSessionsTaskName,
		nil,
		asynq.MaxRetry(3),
		asynq.Queue(CleanupSessionsQueueName),
	)
}
