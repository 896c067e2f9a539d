package response

import (
	"errors"

	"kost-management/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

var kindStatus = []struct {
	kind   error
	status int
}{
	{domain.ErrValidation, fiber.StatusBadRequest},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized},
	{domain.ErrForbidden, fiber.StatusForbidden},
	{domain.ErrNotFound, fiber.StatusNotFound},
	{domain.ErrConflict, fiber.StatusConflict},
	{domain.ErrExternal, fiber.StatusBadGateway},
}

// StatusOf returns the HTTP status for a domain error kind, or 500
func StatusOf(err error) int {
	for _, ks := range kindStatus {
		if errors.Is(err, ks.kind) {
			return ks.status
		}
	}
	return fiber.StatusInternalServerError
}

// FromError writes the error envelope for a domain error. Errors without a
// known kind are returned unchanged so the app error handler logs them and
// answers 500 without leaking details.
func FromError(c *fiber.Ctx, err error) error {
	status := StatusOf(err)
	if status == fiber.StatusInternalServerError {
		return err
	}
	return Error(c, status, err.Error())
}
