package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"kost-management/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrRoomOccupied, fiber.StatusConflict},
		{domain.ErrReasonRequired, fiber.StatusBadRequest},
		{domain.ErrInvoiceNotFound, fiber.StatusNotFound},
		{domain.ErrNotOwner, fiber.StatusForbidden},
		{domain.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{domain.ErrGatewayUnavailable, fiber.StatusBadGateway},
		{fmt.Errorf("wrapped: %w", domain.ErrInvoiceAlreadyPaid), fiber.StatusConflict},
		{errors.New("db down"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func TestFromError(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return Error(c, fiber.StatusInternalServerError, "internal server error")
		},
	})
	app.Get("/known", func(c *fiber.Ctx) error { return FromError(c, domain.ErrRoomOccupied) })
	app.Get("/unknown", func(c *fiber.Ctx) error { return FromError(c, errors.New("secret dsn")) })

	resp, err := app.Test(httptest.NewRequest("GET", "/known", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	var body Response
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.False(t, body.Success)
	assert.Equal(t, domain.ErrRoomOccupied.Error(), body.Error)

	resp, err = app.Test(httptest.NewRequest("GET", "/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	raw, _ = io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "secret dsn")
}
