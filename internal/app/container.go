// Package app wires configuration, adapters and services into one container
// shared by the API server, the reminder worker and the admin CLI.
package app

import (
	"context"

	"kost-management/internal/adapters/gateway"
	"kost-management/internal/adapters/http/handlers"
	"kost-management/internal/adapters/http/routes"
	"kost-management/internal/adapters/persistence/repositories"
	"kost-management/internal/adapters/queue"
	"kost-management/internal/adapters/storage"
	"kost-management/internal/adapters/whatsapp"
	"kost-management/internal/config"
	"kost-management/internal/core/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds the wired services
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Store  repositories.Store

	Rooms     *services.RoomService
	Tenants   *services.TenantService
	Auth      *services.AuthService
	Users     *services.UserService
	Invoices  *services.InvoiceService
	Payments  *services.PaymentService
	Issues    *services.IssueService
	Dashboard *services.DashboardService
	Reminders *services.ReminderService

	// Queue is nil when redis is not configured or unreachable
	Queue    *queue.ReminderQueue
	uploader handlers.Uploader
	redis    *redis.Client
}

// New builds every optional adapter that is configured and the services on
// top of them. Unconfigured adapters, and adapters that fail to start, stay
// nil interfaces and the services fall back to their inline behaviour.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
		Store:  repositories.NewStore(db),
	}

	var gw services.PaymentGateway
	if cfg.Gateway.Enabled() {
		gw = gateway.NewXenditClient(gateway.Config{
			BaseURL:         cfg.Gateway.BaseURL,
			APIKey:          cfg.Gateway.APIKey,
			InvoiceDuration: cfg.Gateway.InvoiceDuration,
			SuccessRedirect: cfg.Gateway.SuccessRedirect,
			FailureRedirect: cfg.Gateway.FailureRedirect,
			Timeout:         cfg.Gateway.RequestTimeout,
		})
	} else {
		logger.Warn("payment gateway disabled, XENDIT_API_KEY not set")
	}

	var proofs services.ProofStorage
	if cfg.Storage.Enabled() {
		s3, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
		}, logger)
		if err != nil {
			logger.Warn("proof storage disabled, s3 client failed", zap.Error(err))
		} else {
			proofs = s3
			c.uploader = s3
		}
	}

	var enqueuer services.ReminderEnqueuer
	if cfg.Redis.Enabled() {
		client, err := queue.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("reminder queue disabled, redis unreachable",
				zap.String("addr", cfg.Redis.Addr),
				zap.Error(err),
			)
		} else {
			c.redis = client
			c.Queue = queue.NewReminderQueue(client, cfg.Redis.Queue, logger)
			enqueuer = c.Queue
		}
	}

	sender := whatsapp.NewClient(whatsapp.Config{
		Enabled:       cfg.WhatsApp.Enabled,
		APIURL:        cfg.WhatsApp.APIURL,
		Token:         cfg.WhatsApp.Token,
		RatePerMinute: cfg.WhatsApp.RatePerMinute,
		Timeout:       cfg.WhatsApp.RequestTimeout,
	}, logger)

	c.Rooms = services.NewRoomService(c.Store, logger)
	c.Tenants = services.NewTenantService(c.Store, logger)
	c.Auth = services.NewAuthService(c.Store, c.Tenants, cfg, logger)
	c.Users = services.NewUserService(c.Store)
	c.Invoices = services.NewInvoiceService(c.Store, cfg.Location(), logger)
	c.Payments = services.NewPaymentService(c.Store, gw, proofs, logger)
	c.Issues = services.NewIssueService(c.Store, logger)
	c.Dashboard = services.NewDashboardService(c.Store, cfg.Now)
	c.Reminders = services.NewReminderService(c.Store, sender, enqueuer, cfg.Cron.ReminderDaysBefore, logger).
		WithClock(cfg.Now)

	return c, nil
}

// Handlers builds the HTTP handlers
func (c *Container) Handlers() *routes.Handlers {
	return &routes.Handlers{
		Health:    handlers.NewHealthHandler(c.Store, c.Config.AppMode),
		Auth:      handlers.NewAuthHandler(c.Auth, c.Config),
		User:      handlers.NewUserHandler(c.Users, c.Auth),
		Room:      handlers.NewRoomHandler(c.Rooms),
		Tenant:    handlers.NewTenantHandler(c.Tenants),
		Invoice:   handlers.NewInvoiceHandler(c.Invoices, c.Payments, c.Config.Cron.InvoiceDueDay),
		Payment:   handlers.NewPaymentHandler(c.Payments, c.Logger),
		Issue:     handlers.NewIssueHandler(c.Issues),
		Dashboard: handlers.NewDashboardHandler(c.Dashboard),
		Reminder:  handlers.NewReminderHandler(c.Reminders),
		Upload:    handlers.NewUploadHandler(c.uploader, c.Logger),
	}
}

// Close releases the redis connection
func (c *Container) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
