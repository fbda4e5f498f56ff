package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/terrace-erp/terrace/internal/app"
	"github.com/terrace-erp/terrace/internal/blocks"
	"github.com/terrace-erp/terrace/internal/notifications"
	"github.com/terrace-erp/terrace/internal/reports"
	"github.com/terrace-erp/terrace/internal/sales"
	"github.com/terrace-erp/terrace/internal/shared"
	"github.com/terrace-erp/terrace/internal/users"
	"github.com/terrace-erp/terrace/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = redisClient.Close() }()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() { _ = jobClient.Close() }()

	activityLogger := shared.NewActivityLogger(dbpool)

	userService := users.NewService(users.NewRepository(dbpool), activityLogger)
	notificationService := notifications.NewService(notifications.NewRepository(dbpool), userService, jobClient)
	blockService := blocks.NewService(blocks.NewRepository(dbpool), activityLogger)
	reportService := reports.NewService(reports.NewRepository(dbpool), reports.NewCache(redisClient, cfg.ReportCacheTTL))

	saleService := sales.NewService(sales.NewRepository(dbpool), blockService, notificationService, activityLogger, nil)

	mailer := jobs.NewMailer(fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort), cfg.SMTPFrom)
	overdueScan := jobs.NewOverdueScanJob(saleService, notificationService, reportService, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: mailer.HandleSendEmail},
			{Type: jobs.TaskTypeOverdueScan, Handler: overdueScan.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.OverdueScanCron, Task: jobs.NewOverdueScanTask(), Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("configure worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("overdue_cron", cfg.OverdueScanCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker", slog.Any("error", err))
		os.Exit(1)
	}
}
