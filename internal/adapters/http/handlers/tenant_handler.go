package handlers

import (
	"kost-management/internal/core/services"
	"kost-management/internal/pkg/pagination"
	"kost-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TenantHandler handles admin tenant management
type TenantHandler struct {
	tenantService *services.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// List lists tenants with their room number
// @Summary List tenants
// @Tags Tenants
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /tenants [get]
func (h *TenantHandler) List(c *fiber.Ctx) error {
	params := pagination.FromQuery(c)

	tenants, total, err := h.tenantService.List(c.UserContext(), params.Offset(), params.Limit)
	if err != nil {
		return err
	}
	return response.Success(c, "Tenants retrieved successfully", pagination.NewPage(tenants, params, total))
}

// Get returns one tenant
// @Summary Get tenant
// @Tags Tenants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tenant ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tenants/{id} [get]
func (h *TenantHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid tenant ID")
	}

	tenant, err := h.tenantService.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Tenant retrieved successfully", tenant.ToResponse())
}

// Create registers a tenant on their behalf and assigns the room
// @Summary Create tenant
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RegisterTenantInput true "Tenant data; password optional"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /tenants [post]
func (h *TenantHandler) Create(c *fiber.Ctx) error {
	var req services.RegisterTenantInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	reg, err := h.tenantService.CreateByAdmin(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Tenant created successfully", fiber.Map{
		"user": reg.User.ToResponse(),
		"room": reg.Room,
	})
}
