package handlers

import (
	"kost-management/internal/core/services"
	"kost-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RoomHandler handles room registry endpoints
type RoomHandler struct {
	roomService *services.RoomService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomService *services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// AssignRoomRequest represents the assign request body
type AssignRoomRequest struct {
	TenantID uint `json:"tenant_id"`
}

// List lists all rooms
// @Summary List rooms
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /rooms [get]
func (h *RoomHandler) List(c *fiber.Ctx) error {
	rooms, err := h.roomService.List(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Rooms retrieved successfully", rooms)
}

// Get returns one room
// @Summary Get room
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid room ID")
	}

	room, err := h.roomService.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Room retrieved successfully", room)
}

// Create adds a room
// @Summary Create room
// @Tags Rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRoomInput true "Room data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /rooms [post]
func (h *RoomHandler) Create(c *fiber.Ctx) error {
	var req services.CreateRoomInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	room, err := h.roomService.Create(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Room created successfully", room)
}

// Update changes a room's number or rent
// @Summary Update room
// @Tags Rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param body body services.UpdateRoomInput true "Room fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /rooms/{id} [put]
func (h *RoomHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid room ID")
	}

	var req services.UpdateRoomInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	room, err := h.roomService.Update(c.UserContext(), id, &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Room updated successfully", room)
}

// Delete removes a vacant room
// @Summary Delete room
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /rooms/{id} [delete]
func (h *RoomHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid room ID")
	}

	if err := h.roomService.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Room deleted successfully", nil)
}

// CheckAvailability tells a prospective tenant whether a room can be taken
// @Summary Check room availability
// @Tags Rooms
// @Produce json
// @Param number query string true "Room number"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /rooms/availability [get]
func (h *RoomHandler) CheckAvailability(c *fiber.Ctx) error {
	number := c.Query("number")
	if number == "" {
		return response.BadRequest(c, "Room number is required")
	}

	result, err := h.roomService.CheckAvailability(c.UserContext(), number)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Availability checked", result)
}

// Assign moves a tenant into a vacant room
// @Summary Assign room
// @Tags Rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param body body AssignRoomRequest true "Tenant"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /rooms/{id}/assign [post]
func (h *RoomHandler) Assign(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid room ID")
	}

	var req AssignRoomRequest
	if err := c.BodyParser(&req); err != nil || req.TenantID == 0 {
		return response.BadRequest(c, "tenant_id is required")
	}

	room, err := h.roomService.AssignRoom(c.UserContext(), id, req.TenantID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Room assigned successfully", room)
}

// Release moves the tenant out of a room
// @Summary Release room
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rooms/{id}/release [post]
func (h *RoomHandler) Release(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid room ID")
	}

	room, err := h.roomService.ReleaseRoom(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Room released successfully", room)
}
