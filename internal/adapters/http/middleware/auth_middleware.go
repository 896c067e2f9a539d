package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"kost-management/internal/config"
	"kost-management/internal/core/domain"
	"kost-management/internal/pkg/jwt"
	"kost-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Access is the authorization class of a route
type Access string

const (
	AccessPublic        Access = "public"
	AccessAuthenticated Access = "authenticated"
	AccessAdmin         Access = "admin"
	AccessWebhook       Access = "webhook"
)

// CallbackTokenHeader carries the gateway's shared webhook token
const CallbackTokenHeader = "X-Callback-Token"

// Gate returns the single check that enforces a route's access class.
// It panics on an unknown class so a typo in the route table fails at startup.
func Gate(access Access, cfg *config.Config) fiber.Handler {
	switch access {
	case AccessPublic:
		return func(c *fiber.Ctx) error { return c.Next() }
	case AccessAuthenticated:
		return AuthMiddleware(cfg)
	case AccessAdmin:
		return func(c *fiber.Ctx) error {
			claims, msg := authenticate(c, cfg.JWT.Secret)
			if claims == nil {
				return response.Unauthorized(c, msg)
			}
			setLocals(c, claims)
			if claims.Role != string(domain.RoleAdmin) {
				return response.Forbidden(c, domain.ErrAdminRequired.Error())
			}
			return c.Next()
		}
	case AccessWebhook:
		return WebhookAuth(cfg)
	}
	panic(fmt.Sprintf("middleware: unknown access %q", access))
}

// AuthMiddleware requires a valid access token from the cookie or a Bearer header
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, msg := authenticate(c, cfg.JWT.Secret)
		if claims == nil {
			return response.Unauthorized(c, msg)
		}
		setLocals(c, claims)
		return c.Next()
	}
}

// WebhookAuth checks the shared callback token in constant time. Without a
// configured token, dev mode lets callbacks through and prod refuses them.
func WebhookAuth(cfg *config.Config) fiber.Handler {
	expected := []byte(cfg.Gateway.WebhookToken)
	return func(c *fiber.Ctx) error {
		if len(expected) == 0 {
			if cfg.IsProd() {
				return response.Unauthorized(c, "webhook token is not configured")
			}
			return c.Next()
		}

		got := []byte(c.Get(CallbackTokenHeader))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			return response.Unauthorized(c, "invalid callback token")
		}
		return c.Next()
	}
}

// authenticate returns the token claims, or nil and the reason
func authenticate(c *fiber.Ctx, secret string) (*jwt.Claims, string) {
	accessToken := c.Cookies("access_token")
	if accessToken == "" {
		authHeader := c.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			accessToken = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if accessToken == "" {
		return nil, "access token required"
	}

	claims, err := jwt.ValidateAccessToken(accessToken, secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, "access token expired"
		}
		return nil, "invalid access token"
	}
	return claims, ""
}

func setLocals(c *fiber.Ctx, claims *jwt.Claims) {
	c.Locals("userID", claims.UserID)
	c.Locals("email", claims.Email)
	c.Locals("role", claims.Role)
}

// CurrentActor returns the authenticated caller set by the gate
func CurrentActor(c *fiber.Ctx) (domain.Actor, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return domain.Actor{}, false
	}
	role, _ := c.Locals("role").(string)
	return domain.Actor{UserID: userID, Role: domain.Role(role)}, true
}
