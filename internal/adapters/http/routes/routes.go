package routes

import (
	"time"

	"kost-management/internal/adapters/http/handlers"
	"kost-management/internal/adapters/http/middleware"
	"kost-management/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Handlers groups every HTTP handler the API exposes
type Handlers struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Room      *handlers.RoomHandler
	Tenant    *handlers.TenantHandler
	Invoice   *handlers.InvoiceHandler
	Payment   *handlers.PaymentHandler
	Issue     *handlers.IssueHandler
	Dashboard *handlers.DashboardHandler
	Reminder  *handlers.ReminderHandler
	Upload    *handlers.UploadHandler
}

// Operation is one API route and the access class that guards it.
// Before runs ahead of the gate (rate limits, cache headers).
type Operation struct {
	Method  string
	Path    string
	Access  middleware.Access
	Handler fiber.Handler
	Before  []fiber.Handler
}

// Operations returns the API v1 route table. Paths are relative to /api/v1.
// Static segments are listed before parameterized ones that could shadow them.
func Operations(h *Handlers) []Operation {
	const (
		public  = middleware.AccessPublic
		authed  = middleware.AccessAuthenticated
		admin   = middleware.AccessAdmin
		webhook = middleware.AccessWebhook
	)
	authLimit := middleware.AuthRateLimiter()
	noCache := middleware.NoCacheHeaders()
	shortCache := middleware.PrivateCacheHeaders(30 * time.Second)

	return []Operation{
		{fiber.MethodGet, "/", public, h.Health.APIInfo, nil},

		// Auth
		{fiber.MethodPost, "/auth/register", public, h.Auth.Register, []fiber.Handler{authLimit, noCache}},
		{fiber.MethodPost, "/auth/login", public, h.Auth.Login, []fiber.Handler{authLimit, noCache}},
		{fiber.MethodPost, "/auth/logout", public, h.Auth.Logout, []fiber.Handler{noCache}},
		{fiber.MethodGet, "/auth/me", authed, h.Auth.Me, []fiber.Handler{noCache}},

		// Profile
		{fiber.MethodGet, "/profile", authed, h.User.GetProfile, nil},
		{fiber.MethodPut, "/profile", authed, h.User.UpdateProfile, nil},
		{fiber.MethodPut, "/profile/password", authed, h.User.ChangePassword, []fiber.Handler{noCache}},

		// Rooms
		{fiber.MethodGet, "/rooms/availability", public, h.Room.CheckAvailability, nil},
		{fiber.MethodGet, "/rooms", admin, h.Room.List, nil},
		{fiber.MethodPost, "/rooms", admin, h.Room.Create, nil},
		{fiber.MethodGet, "/rooms/:id", admin, h.Room.Get, nil},
		{fiber.MethodPut, "/rooms/:id", admin, h.Room.Update, nil},
		{fiber.MethodDelete, "/rooms/:id", admin, h.Room.Delete, nil},
		{fiber.MethodPost, "/rooms/:id/assign", admin, h.Room.Assign, nil},
		{fiber.MethodPost, "/rooms/:id/release", admin, h.Room.Release, nil},

		// Tenants
		{fiber.MethodGet, "/tenants", admin, h.Tenant.List, nil},
		{fiber.MethodPost, "/tenants", admin, h.Tenant.Create, nil},
		{fiber.MethodGet, "/tenants/:id", admin, h.Tenant.Get, nil},

		// Invoices and payments
		{fiber.MethodPost, "/invoices/generate", admin, h.Invoice.Generate, nil},
		{fiber.MethodGet, "/invoices", authed, h.Invoice.List, nil},
		{fiber.MethodPost, "/invoices", admin, h.Invoice.Create, nil},
		{fiber.MethodGet, "/invoices/:id", authed, h.Invoice.Get, nil},
		{fiber.MethodPut, "/invoices/:id/status", admin, h.Invoice.OverrideStatus, nil},
		{fiber.MethodGet, "/invoices/:id/events", authed, h.Invoice.Events, nil},
		{fiber.MethodPost, "/invoices/:id/proof", authed, h.Payment.SubmitProof, nil},
		{fiber.MethodPost, "/invoices/:id/approve", admin, h.Payment.Approve, nil},
		{fiber.MethodPost, "/invoices/:id/reject", admin, h.Payment.Reject, nil},
		{fiber.MethodPost, "/invoices/:id/pay", authed, h.Payment.Pay, []fiber.Handler{noCache}},
		{fiber.MethodPost, "/invoices/:id/remind", admin, h.Reminder.Send, nil},
		{fiber.MethodPost, "/payments/webhook", webhook, h.Payment.Webhook, nil},

		// Issues
		{fiber.MethodGet, "/issues", authed, h.Issue.List, nil},
		{fiber.MethodPost, "/issues", authed, h.Issue.Create, nil},
		{fiber.MethodPut, "/issues/:id/status", admin, h.Issue.UpdateStatus, nil},

		// Dashboard
		{fiber.MethodGet, "/dashboard/stats", admin, h.Dashboard.Stats, []fiber.Handler{shortCache}},
		{fiber.MethodGet, "/dashboard/revenue", admin, h.Dashboard.Revenue, []fiber.Handler{shortCache}},
		{fiber.MethodGet, "/dashboard/notifications", admin, h.Dashboard.Notifications, nil},

		// Reminders
		{fiber.MethodPost, "/reminders/run", admin, h.Reminder.Run, nil},
		{fiber.MethodGet, "/whatsapp/status", admin, h.Reminder.Status, nil},

		// Uploads
		{fiber.MethodPost, "/uploads", authed, h.Upload.Upload, nil},
	}
}

// Setup configures all routes for the application
func Setup(app *fiber.App, cfg *config.Config, h *Handlers) {
	// Health check & root routes
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	apiV1 := app.Group("/api/v1")
	for _, op := range Operations(h) {
		chain := make([]fiber.Handler, 0, len(op.Before)+2)
		chain = append(chain, op.Before...)
		chain = append(chain, middleware.Gate(op.Access, cfg), op.Handler)
		apiV1.Add(op.Method, op.Path, chain...)
	}
}
