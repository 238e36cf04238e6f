package asynqserver

import (
	"github.com/hibiken/asynq"
	"github.com/recordhub/backend/internal/cache"
	"github.com/recordhub/backend/internal/config"
	"github.com/recordhub/backend/internal/queue/processor"
	"github.com/recordhub/backend/internal/queue/task"
	"github.com/recordhub/backend/internal/service"
	"github.com/recordhub/backend/internal/worker"
)

func New(cfg config.Cache, workers *worker.Workers, sessions service.Sessions) (*asynq.Server, *asynq.ServeMux) {
	mux, queues := getQueues(workers, sessions)
	srv := asynq.NewServer(
		RedisOptions(cfg),
		asynq.Config{
			Concurrency: 10,
			LogLevel:    asynq.ErrorLevel,
			Queues:      queues,
		},
	)

	return srv, mux
}

// NewScheduler registers the periodic maintenance tasks.
func NewScheduler(cfg config.Cache) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(RedisOptions(cfg), &asynq.SchedulerOpts{
		LogLevel: asynq.ErrorLevel,
	})

	if _, err := scheduler.Register("@every 1h", task.NewCleanupSessionsTask()); err != nil {
		return nil, err
	}

	return scheduler, nil
}

func RedisOptions(cfg config.Cache) asynq.RedisConnOpt {
	var opts asynq.RedisConnOpt
	if cfg.Type == cache.RedisTypeCluster {
		opts = asynq.RedisClusterClientOpt{Addrs: cfg.RedisCluster.Addresses}
	} else {
		opts = asynq.RedisClientOpt{Addr: cfg.Redis.Address}
	}
	return opts
}

func getQueues(workers *worker.Workers, sessions service.Sessions) (*asynq.ServeMux, map[string]int) {
	mux := asynq.NewServeMux()
	mux.Handle(task.SendWelcomeEmailTaskName, processor.NewSendWelcomeEmailProcessor(workers))
	mux.Handle(task.CleanupSessionsTaskName, processor.NewCleanupSessionsProcessor(sessions))
	queues := map[string]int{
		task.SendWelcomeEmailQueueName: 1,
		task.CleanupSessionsQueueName:  1,
	}
	return mux, queues
}
