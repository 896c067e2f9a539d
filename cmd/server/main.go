package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"kost-management/internal/adapters/http/middleware"
	"kost-management/internal/adapters/http/routes"
	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/app"
	"kost-management/internal/config"
	"kost-management/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "kost-management/docs" // Swagger docs
)

// @title Kost Management API
// @version 1.0
// @description Boarding house rooms, tenants, invoices and payments

// @contact.name API Support

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase(db)

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatal("failed to auto migrate", zap.Error(err))
	}
	logger.Info("database migration completed")

	ctx := context.Background()
	container, err := app.New(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatal("failed to initialise services", zap.Error(err))
	}
	defer container.Close()

	if err := config.NewSeeder(container.Store, logger).Run(ctx, cfg.Admin); err != nil {
		logger.Warn("failed to seed admin user", zap.Error(err))
	}

	if cfg.Cron.Enabled {
		cronService := services.NewCronService(container.Invoices, container.Reminders, cfg.Cron, logger)
		if err := cronService.Start(); err != nil {
			logger.Fatal("failed to start cron", zap.Error(err))
		}
		defer cronService.Stop()
	}

	server := fiber.New(fiber.Config{
		AppName:      "Kost Management API v1.0",
		ErrorHandler: middleware.NewErrorHandler(logger),
		BodyLimit:    8 * 1024 * 1024,
	})

	middleware.Setup(server, cfg)
	routes.Setup(server, cfg, container.Handlers())

	go gracefulShutdown(server, logger)

	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := server.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

// gracefulShutdown stops accepting requests on SIGINT/SIGTERM
func gracefulShutdown(server *fiber.App, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := server.Shutdown(); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
}
