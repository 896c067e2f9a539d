package handlers

import (
	"kost-management/internal/adapters/gateway"
	"kost-management/internal/core/services"
	"kost-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PaymentHandler handles manual and gateway payments
type PaymentHandler struct {
	paymentService *services.PaymentService
	logger         *zap.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, logger *zap.Logger) *PaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentHandler{paymentService: paymentService, logger: logger}
}

// SubmitProofRequest carries a base64 proof of transfer
type SubmitProofRequest struct {
	Proof string `json:"payment_proof"`
}

// RejectRequest carries the rejection reason
type RejectRequest struct {
	Reason string `json:"reason"`
}

// SubmitProof uploads a transfer receipt for verification
// @Summary Submit payment proof
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Param body body SubmitProofRequest true "Base64 image or data URL"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /invoices/{id}/proof [post]
func (h *PaymentHandler) SubmitProof(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	var req SubmitProofRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	invoice, err := h.paymentService.SubmitProof(c.UserContext(), actor, id, req.Proof)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment proof submitted, waiting for verification", invoice)
}

// Approve confirms a manual payment
// @Summary Approve payment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /invoices/{id}/approve [post]
func (h *PaymentHandler) Approve(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	invoice, err := h.paymentService.Approve(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment approved", invoice)
}

// Reject refuses a manual payment
// @Summary Reject payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Param body body RejectRequest true "Reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /invoices/{id}/reject [post]
func (h *PaymentHandler) Reject(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	invoice, err := h.paymentService.Reject(c.UserContext(), actor, id, req.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment rejected", invoice)
}

// Pay opens a hosted checkout page at the payment gateway
// @Summary Create gateway payment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /invoices/{id}/pay [post]
func (h *PaymentHandler) Pay(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	invoice, err := h.paymentService.CreateGatewayPayment(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment link created", fiber.Map{
		"invoice":     invoice,
		"invoice_url": invoice.GatewayInvoiceURL,
	})
}

// Webhook receives gateway payment callbacks
// @Summary Payment gateway callback
// @Tags Payments
// @Accept json
// @Produce json
// @Param X-Callback-Token header string true "Shared webhook token"
// @Param body body gateway.Callback true "Callback payload"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	var cb gateway.Callback
	if err := c.BodyParser(&cb); err != nil {
		return response.BadRequest(c, "Invalid callback payload")
	}

	raw := append([]byte(nil), c.Body()...)
	result, err := h.paymentService.HandleWebhook(c.UserContext(), &cb, raw)
	if err != nil {
		h.logger.Warn("gateway callback refused",
			zap.String("external_id", cb.ExternalID),
			zap.String("ip", c.IP()),
			zap.Error(err),
		)
		return response.FromError(c, err)
	}
	return response.Success(c, result.Message, result)
}
