// Command worker sends the payment reminders queued in redis.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"kost-management/internal/app"
	"kost-management/internal/config"
	"kost-management/internal/core/services"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.Redis.Enabled() {
		logger.Fatal("REDIS_ADDR must be set to run the reminder worker")
	}

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatal("failed to initialise services", zap.Error(err))
	}
	defer container.Close()
	if container.Queue == nil {
		logger.Fatal("reminder queue unavailable, check REDIS_ADDR", zap.String("addr", cfg.Redis.Addr))
	}

	worker := services.NewReminderWorker(container.Queue, container.Reminders, logger)
	if err := worker.Run(ctx); err != nil {
		logger.Error("worker stopped with error", zap.Error(err))
	}
}
