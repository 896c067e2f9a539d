package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and API info
type HealthHandler struct {
	db      Pinger
	appMode string
	timeout time.Duration
}

func NewHealthHandler(db Pinger, appMode string) *HealthHandler {
	return &HealthHandler{db: db, appMode: appMode, timeout: 2 * time.Second}
}

// Root reports that the server is up
// @Summary Server status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "kost-management",
		"mode":    h.appMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck pings the database
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	if h.db.Ping(ctx) != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "degraded",
			"database": "down",
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "database": "up"})
}

func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"name": "Kost Management API", "version": "v1"})
}
