package handlers

import (
	"kost-management/internal/core/domain"
	"kost-management/internal/core/services"
	"kost-management/internal/pkg/pagination"
	"kost-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// IssueHandler handles tenant issue reports
type IssueHandler struct {
	issueService *services.IssueService
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(issueService *services.IssueService) *IssueHandler {
	return &IssueHandler{issueService: issueService}
}

// UpdateIssueStatusRequest carries the new issue status
type UpdateIssueStatusRequest struct {
	Status domain.IssueStatus `json:"status"`
}

// Create reports an issue for the caller's room
// @Summary Report issue
// @Tags Issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateIssueInput true "Issue"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /issues [post]
func (h *IssueHandler) Create(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.CreateIssueInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	issue, err := h.issueService.Create(c.UserContext(), actor, &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Issue reported successfully", issue)
}

// List lists issues, newest first
// @Summary List issues
// @Tags Issues
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /issues [get]
func (h *IssueHandler) List(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	params := pagination.FromQuery(c)
	issues, total, err := h.issueService.List(c.UserContext(), actor, params.Offset(), params.Limit)
	if err != nil {
		return err
	}
	return response.Success(c, "Issues retrieved successfully", pagination.NewPage(issues, params, total))
}

// UpdateStatus moves an issue through open, in_progress and resolved
// @Summary Update issue status
// @Tags Issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Issue ID"
// @Param body body UpdateIssueStatusRequest true "Status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /issues/{id}/status [put]
func (h *IssueHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid issue ID")
	}

	var req UpdateIssueStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	issue, err := h.issueService.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Issue status updated", issue)
}
