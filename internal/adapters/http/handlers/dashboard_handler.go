package handlers

import (
	"kost-management/internal/core/services"
	"kost-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Stats returns occupancy, invoice counts and current-month revenue
// @Summary Dashboard stats
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Dashboard stats retrieved successfully", stats)
}

// Revenue returns paid revenue for the trailing months
// @Summary Revenue chart
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param months query int false "Number of months (1-12)" default(6)
// @Success 200 {object} response.Response
// @Router /dashboard/revenue [get]
func (h *DashboardHandler) Revenue(c *fiber.Ctx) error {
	points, err := h.dashboardService.RevenueChart(c.UserContext(), c.QueryInt("months", 6))
	if err != nil {
		return err
	}
	return response.Success(c, "Revenue chart retrieved successfully", points)
}

// Notifications returns counts of items waiting for the admin
// @Summary Admin notifications
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/notifications [get]
func (h *DashboardHandler) Notifications(c *fiber.Ctx) error {
	n, err := h.dashboardService.Notifications(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Notifications retrieved successfully", n)
}
