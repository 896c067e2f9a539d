package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"kost-management/internal/config"
	"kost-management/internal/core/domain"
	"kost-management/internal/pkg/jwt"
	"kost-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testConfig(mode, webhookToken string) *config.Config {
	return &config.Config{
		AppMode: mode,
		JWT:     config.JWTConfig{Secret: testSecret, AccessTokenMins: 60},
		Gateway: config.GatewayConfig{WebhookToken: webhookToken},
	}
}

func gatedApp(access Access, cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/", Gate(access, cfg), func(c *fiber.Ctx) error {
		actor, _ := CurrentActor(c)
		return c.JSON(fiber.Map{"user_id": actor.UserID, "role": actor.Role})
	})
	return app
}

func token(t *testing.T, userID uint, role domain.Role) string {
	t.Helper()
	tok, err := jwt.GenerateAccessToken(userID, "user@example.com", string(role), testSecret, 60)
	require.NoError(t, err)
	return tok
}

func status(t *testing.T, app *fiber.App, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestGate_Public(t *testing.T) {
	app := gatedApp(AccessPublic, testConfig("dev", ""))
	assert.Equal(t, fiber.StatusOK, status(t, app, nil))
}

func TestGate_Authenticated(t *testing.T) {
	app := gatedApp(AccessAuthenticated, testConfig("dev", ""))

	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, nil))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, map[string]string{"Authorization": "Bearer garbage"}))
	assert.Equal(t, fiber.StatusOK, status(t, app, map[string]string{
		"Authorization": "Bearer " + token(t, 7, domain.RoleTenant),
	}))
	assert.Equal(t, fiber.StatusOK, status(t, app, map[string]string{
		"Cookie": "access_token=" + token(t, 7, domain.RoleTenant),
	}))
}

func TestGate_Admin(t *testing.T) {
	app := gatedApp(AccessAdmin, testConfig("dev", ""))

	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, nil))
	assert.Equal(t, fiber.StatusForbidden, status(t, app, map[string]string{
		"Authorization": "Bearer " + token(t, 7, domain.RoleTenant),
	}))

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 1, domain.RoleAdmin))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		UserID uint        `json:"user_id"`
		Role   domain.Role `json:"role"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, uint(1), body.UserID)
	assert.Equal(t, domain.RoleAdmin, body.Role)
}

func TestGate_Webhook(t *testing.T) {
	app := gatedApp(AccessWebhook, testConfig("prod", "s3cret"))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, nil))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, map[string]string{CallbackTokenHeader: "wrong"}))
	assert.Equal(t, fiber.StatusOK, status(t, app, map[string]string{CallbackTokenHeader: "s3cret"}))

	// a user token is not a substitute for the callback token
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, map[string]string{
		"Authorization": "Bearer " + token(t, 1, domain.RoleAdmin),
	}))
}

func TestGate_WebhookWithoutToken(t *testing.T) {
	assert.Equal(t, fiber.StatusOK, status(t, gatedApp(AccessWebhook, testConfig("dev", "")), nil))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, gatedApp(AccessWebhook, testConfig("prod", "")), nil))
}

func TestGate_UnknownAccessPanics(t *testing.T) {
	assert.Panics(t, func() { Gate("owner", testConfig("dev", "")) })
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(nil)})
	app.Get("/domain", func(c *fiber.Ctx) error { return domain.ErrRoomOccupied })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("dial tcp 10.0.0.1:3306: connection refused") })

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/domain", fiber.StatusConflict, "room is already occupied"},
		{"/fiber", fiber.StatusTeapot, "short and stout"},
		{"/boom", fiber.StatusInternalServerError, "internal server error"},
		{"/missing", fiber.StatusNotFound, "Cannot GET /missing"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var body response.Response
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Error)
		})
	}
}
