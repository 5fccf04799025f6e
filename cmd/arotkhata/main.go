package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/arotkhata/arotkhata/internal/app"
	"github.com/arotkhata/arotkhata/internal/cashbook"
	"github.com/arotkhata/arotkhata/internal/customers"
	"github.com/arotkhata/arotkhata/internal/ledger"
	"github.com/arotkhata/arotkhata/internal/observability"
	"github.com/arotkhata/arotkhata/internal/platform/cache"
	"github.com/arotkhata/arotkhata/internal/platform/db"
	"github.com/arotkhata/arotkhata/internal/reports"
	"github.com/arotkhata/arotkhata/internal/sacktypes"
	"github.com/arotkhata/arotkhata/internal/season"
	"github.com/arotkhata/arotkhata/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	seasonRepo := season.NewRepository(pool)
	seasonService := season.NewService(seasonRepo)
	seasonHandler := season.NewHandler(logger, seasonService)

	customerRepo := customers.NewRepository(pool)
	customerService := customers.NewService(customerRepo)
	customerHandler := customers.NewHandler(logger, customerService)

	sackTypeRepo := sacktypes.NewRepository(pool)
	sackTypeService := sacktypes.NewService(sackTypeRepo)
	sackTypeHandler := sacktypes.NewHandler(logger, sackTypeService)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, seasonService)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	cashbookRepo := cashbook.NewRepository(pool)
	cashbookService := cashbook.NewService(cashbookRepo, seasonService)
	cashbookHandler := cashbook.NewHandler(logger, cashbookService)

	reportRepo := reports.NewRepository(pool)
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(reportRepo, reportCache)
	reportHandler := reports.NewHandler(logger, reportService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SeasonHandler:   seasonHandler,
		CustomerHandler: customerHandler,
		SackTypeHandler: sackTypeHandler,
		LedgerHandler:   ledgerHandler,
		CashbookHandler: cashbookHandler,
		ReportHandler:   reportHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
