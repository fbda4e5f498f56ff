package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/terrace-erp/terrace/internal/activity"
	"github.com/terrace-erp/terrace/internal/app"
	"github.com/terrace-erp/terrace/internal/blocks"
	"github.com/terrace-erp/terrace/internal/customers"
	"github.com/terrace-erp/terrace/internal/notifications"
	"github.com/terrace-erp/terrace/internal/projects"
	"github.com/terrace-erp/terrace/internal/reports"
	"github.com/terrace-erp/terrace/internal/sales"
	"github.com/terrace-erp/terrace/internal/shared"
	"github.com/terrace-erp/terrace/internal/tasks"
	"github.com/terrace-erp/terrace/internal/users"
	"github.com/terrace-erp/terrace/jobs"
	"github.com/terrace-erp/terrace/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	activityLogger := shared.NewActivityLogger(dbpool)
	idemStore := shared.NewIdempotencyStore(dbpool)

	userService := users.NewService(users.NewRepository(dbpool), activityLogger)
	notificationService := notifications.NewService(notifications.NewRepository(dbpool), userService, jobClient)

	blockService := blocks.NewService(blocks.NewRepository(dbpool), activityLogger)
	projectService := projects.NewService(projects.NewRepository(dbpool), activityLogger)
	customerService := customers.NewService(customers.NewRepository(dbpool), activityLogger)
	taskService := tasks.NewService(tasks.NewRepository(dbpool), notificationService, activityLogger)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(reports.NewRepository(dbpool), reportCache)

	saleService := sales.NewService(sales.NewRepository(dbpool), blockService, notificationService, activityLogger, idemStore)
	saleService.WithCacheInvalidator(reportService)

	activityService := activity.NewService(activity.NewRepository(dbpool))

	pdfClient := report.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err))
	}
	receipts := report.NewReceipts("Terrace Real Estate")

	inspector := asynq.NewInspector(redisOpts)
	defer func() { _ = inspector.Close() }()

	router := app.NewRouter(app.RouterDeps{
		Logger:        logger,
		Config:        cfg,
		Sales:         sales.NewHandler(logger, saleService, pdfClient, receipts),
		Projects:      projects.NewHandler(logger, projectService),
		Blocks:        blocks.NewHandler(logger, blockService),
		Customers:     customers.NewHandler(logger, customerService),
		Tasks:         tasks.NewHandler(logger, taskService),
		Notifications: notifications.NewHandler(logger, notificationService),
		Activity:      activity.NewHandler(logger, activityService),
		Users:         users.NewHandler(logger, userService),
		Reports:       reports.NewHandler(logger, reportService),
		Jobs:          jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
}
