package handlers

import (
	"kost-management/internal/core/services"
	"kost-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReminderHandler handles WhatsApp payment reminders
type ReminderHandler struct {
	reminderService *services.ReminderService
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminderService *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

// Send sends a reminder for one invoice now
// @Summary Send payment reminder
// @Tags Reminders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /invoices/{id}/remind [post]
func (h *ReminderHandler) Send(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	if err := h.reminderService.SendReminder(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Reminder sent successfully", nil)
}

// Run reminds every tenant with an invoice due soon or overdue
// @Summary Run due reminders
// @Tags Reminders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reminders/run [post]
func (h *ReminderHandler) Run(c *fiber.Ctx) error {
	run, err := h.reminderService.EnqueueDueReminders(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Due reminders processed", run)
}

// Status reports whether the WhatsApp bridge is enabled and reachable
// @Summary WhatsApp status
// @Tags Reminders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /whatsapp/status [get]
func (h *ReminderHandler) Status(c *fiber.Ctx) error {
	return response.Success(c, "WhatsApp status", h.reminderService.Status(c.UserContext()))
}
