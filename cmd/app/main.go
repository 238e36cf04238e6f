package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiHttp "github.com/recordhub/backend/internal/api/http"
	"github.com/recordhub/backend/internal/cache"
	"github.com/recordhub/backend/internal/config"
	"github.com/recordhub/backend/internal/db"
	"github.com/recordhub/backend/internal/queue/asynqserver"
	"github.com/recordhub/backend/internal/queue/client"
	"github.com/recordhub/backend/internal/repository"
	"github.com/recordhub/backend/internal/server"
	"github.com/recordhub/backend/internal/service"
	"github.com/recordhub/backend/internal/worker"
	"github.com/recordhub/backend/pkg/auth"
	emailPkg "github.com/recordhub/backend/pkg/email"
	"github.com/recordhub/backend/pkg/email/smtp"
	"github.com/recordhub/backend/pkg/hash"
	"github.com/recordhub/backend/pkg/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	appLogger, err := logger.Setup(cfg.Env, cfg.LogLevel)
	if err != nil {
		os.Exit(1)
	}
	defer appLogger.Sync() //nolint:errcheck

	logger.Info("starting backend api", zap.String("env", cfg.Env))
	logger.Debug("debug messages are enabled")

	// Init database
	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		logger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			logger.Error("error when closing", zap.Error(err))
		}
	}()
	logger.Info("mysql connection done")

	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		logger.Error("redis connect problem", zap.Error(err))
		os.Exit(1)
	}

	hasher := hash.NewBcryptHasher(0)

	tokenManager, err := auth.NewManager(cfg.Auth.JWT)
	if err != nil {
		logger.Error("auth manager creation err", zap.Error(err))
		return
	}

	// Services, Repos & API Handlers
	repos := repository.NewRepositories(dbMySQL)
	services := service.NewServices(service.Deps{
		Config:       cfg,
		Hasher:       hasher,
		TokenManager: tokenManager,
		Repos:        repos,
		Redis:        redisClient,
	})
	handlers := apiHttp.NewHandlers(services, tokenManager, cfg)

	// Background queue
	queueClient := asynq.NewClient(asynqserver.RedisOptions(cfg.Cache))
	defer queueClient.Close() //nolint:errcheck
	restoreClient := client.SetClient(queueClient)
	defer restoreClient()

	workers := newWorkers(cfg)
	queueServer, queueMux := asynqserver.New(cfg.Cache, workers, services.Sessions)
	go func() {
		if err := queueServer.Run(queueMux); err != nil {
			logger.Error("queue server stopped", zap.Error(err))
		}
	}()

	scheduler, err := asynqserver.NewScheduler(cfg.Cache)
	if err != nil {
		logger.Error("scheduler creation err", zap.Error(err))
		os.Exit(1)
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error("scheduler stopped", zap.Error(err))
		}
	}()

	// HTTP Server
	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("port", cfg.HttpServer.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	ctx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	scheduler.Shutdown()
	queueServer.Shutdown()

	if err := srv.Stop(ctx); err != nil {
		logger.Error("failed to stop server", zap.Error(err))
	}

	logger.Info("app stopped")
}

func newWorkers(cfg *config.Config) *worker.Workers {
	deps := worker.Deps{Config: cfg}

	if cfg.Email.Enabled {
		emailSender, err := smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
		if err != nil {
			logger.Error("smtp sender creation failed", zap.Error(err))
			os.Exit(1)
		}
		deps.EmailProvider = emailSender
	} else {
		deps.EmailProvider = noopEmailSender{}
	}

	return worker.NewWorkers(deps)
}

type noopEmailSender struct{}

func (noopEmailSender) Send(_ emailPkg.SendEmailInput) error { return nil }
