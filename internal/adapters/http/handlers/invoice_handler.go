package handlers

import (
	"strconv"
	"time"

	"kost-management/internal/adapters/persistence/repositories"
	"kost-management/internal/core/domain"
	"kost-management/internal/core/services"
	"kost-management/internal/pkg/pagination"
	"kost-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// InvoiceHandler handles the invoice ledger endpoints
type InvoiceHandler struct {
	invoiceService *services.InvoiceService
	paymentService *services.PaymentService
	dueDay         int
	now            func() time.Time
}

// NewInvoiceHandler creates a new invoice handler. dueDay is the default
// day of month for generated invoices.
func NewInvoiceHandler(invoiceService *services.InvoiceService, paymentService *services.PaymentService, dueDay int) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
		dueDay:         dueDay,
		now:            time.Now,
	}
}

// GenerateRequest represents a monthly generation request
type GenerateRequest struct {
	BillingMonth string `json:"billing_month" example:"2025-03"`
	DueDate      string `json:"due_date" example:"2025-03-10"`
}

// CreateInvoiceRequest represents an ad hoc invoice
type CreateInvoiceRequest struct {
	TenantID     uint   `json:"tenant_id"`
	RoomID       uint   `json:"room_id"`
	BillingMonth string `json:"billing_month"`
	Amount       int64  `json:"amount"`
	DueDate      string `json:"due_date"`
}

// OverrideStatusRequest force-sets an invoice status
type OverrideStatusRequest struct {
	Status domain.InvoiceStatus `json:"status"`
}

// List lists invoices; tenants only see their own
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending or paid"
// @Param billing_month query string false "YYYY-MM"
// @Param tenant_id query int false "Tenant ID (admin only)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	filter := repositories.InvoiceFilter{
		Status:       domain.InvoiceStatus(c.Query("status")),
		BillingMonth: c.Query("billing_month"),
	}
	if raw := c.Query("tenant_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid tenant ID")
		}
		tenantID := uint(id)
		filter.TenantID = &tenantID
	}

	params := pagination.FromQuery(c)
	invoices, total, err := h.invoiceService.List(c.UserContext(), actor, filter, params.Offset(), params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invoices retrieved successfully", pagination.NewPage(invoices, params, total))
}

// Get returns one invoice
// @Summary Get invoice
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	invoice, err := h.invoiceService.Get(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invoice retrieved successfully", fiber.Map{
		"invoice":       invoice,
		"payment_state": invoice.PaymentState(),
	})
}

// Create adds a single invoice
// @Summary Create invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var req CreateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.TenantID == 0 || req.RoomID == 0 {
		return response.BadRequest(c, "tenant_id and room_id are required")
	}

	month, due, err := h.invoiceService.ResolvePeriod(req.BillingMonth, req.DueDate, h.now(), h.dueDay)
	if err != nil {
		return response.FromError(c, err)
	}

	invoice, err := h.invoiceService.Create(c.UserContext(), &services.CreateInvoiceInput{
		TenantID:     req.TenantID,
		RoomID:       req.RoomID,
		BillingMonth: month,
		Amount:       req.Amount,
		DueDate:      due,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Invoice created successfully", invoice)
}

// Generate creates this month's invoices for every tenant with a room
// @Summary Generate monthly invoices
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GenerateRequest false "Month and due date, both optional"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /invoices/generate [post]
func (h *InvoiceHandler) Generate(c *fiber.Ctx) error {
	var req GenerateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	month, due, err := h.invoiceService.ResolvePeriod(req.BillingMonth, req.DueDate, h.now(), h.dueDay)
	if err != nil {
		return response.FromError(c, err)
	}

	result, err := h.invoiceService.GenerateMonthly(c.UserContext(), month, due)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Generated "+strconv.Itoa(result.Count)+" invoices for "+month, result)
}

// OverrideStatus force-sets pending or paid
// @Summary Override invoice status
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Param body body OverrideStatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /invoices/{id}/status [put]
func (h *InvoiceHandler) OverrideStatus(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	var req OverrideStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	invoice, err := h.paymentService.OverrideStatus(c.UserContext(), actor, id, req.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invoice status updated", invoice)
}

// Events returns the payment audit trail
// @Summary Invoice payment events
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /invoices/{id}/events [get]
func (h *InvoiceHandler) Events(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	events, err := h.paymentService.ListEvents(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment events retrieved successfully", events)
}
