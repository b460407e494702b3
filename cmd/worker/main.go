package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/compass/internal/database"
	"github.com/hugh/compass/internal/notify"
	"github.com/hugh/compass/internal/reports"
	"github.com/hugh/compass/internal/tasks"
	"github.com/hugh/compass/pkg/config"
	"github.com/hugh/compass/pkg/queue"
	"github.com/hugh/compass/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env, "worker")
	slog.SetDefault(logger)

	logger.Info("starting COM:PASS worker")

	if err := util.ValidateCronExpr(cfg.Worker.ReportCron); err != nil {
		logger.Error("invalid report schedule", "cron", cfg.Worker.ReportCron, "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	defer redisClient.Close()
	publisher := notify.NewPublisher(redisClient)

	// Report-ready notifications go through the same delivery queue as
	// lifecycle notifications
	asynqClient := queue.NewClient(&cfg.Redis)
	defer asynqClient.Close()
	dispatcher := tasks.NewNotificationDispatcher(asynqClient, publisher, logger)

	var archiver reports.Archiver
	if cfg.Archive.Enabled() {
		s3Archiver, err := reports.NewS3Archiver(context.Background(), &cfg.Archive)
		if err != nil {
			logger.Error("failed to configure report archive", "error", err)
			os.Exit(1)
		}
		archiver = s3Archiver
		logger.Info("archiving reports to S3", "bucket", cfg.Archive.Bucket, "prefix", cfg.Archive.Prefix)
	}
	generator := reports.NewGenerator(db, archiver, dispatcher, logger)

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, cfg.Worker.Concurrency, logger)

	// Create task handler
	handler := tasks.NewHandler(db, logger, publisher, generator)

	// Register handlers
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Periodic tasks
	scheduler := queue.NewScheduler(&cfg.Redis)
	entryID, err := scheduler.Register(cfg.Worker.ReportCron, tasks.NewWeeklyReportsTask(), asynq.Queue(queue.QueueReports))
	if err != nil {
		logger.Error("failed to register weekly reports", "error", err)
		os.Exit(1)
	}
	if next, err := util.NextCronRuns(cfg.Worker.ReportCron, time.Now(), 1); err == nil {
		logger.Info("weekly reports scheduled", "cron", cfg.Worker.ReportCron, "entry_id", entryID, "next_run", next[0])
	}
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// Handle shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		scheduler.Shutdown()
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	// Start the server
	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	// Wait for context cancellation
	<-ctx.Done()

	if err := database.Close(db); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("worker stopped")
}
