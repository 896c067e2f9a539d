package handlers

import (
	"strconv"

	"kost-management/internal/adapters/http/middleware"
	"kost-management/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

var errUnauthenticated = domain.NewError(domain.ErrUnauthorized, "unauthorized")

// paramID parses a positive numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// actorOf returns the caller set by the route gate
func actorOf(c *fiber.Ctx) (domain.Actor, error) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return domain.Actor{}, errUnauthenticated
	}
	return actor, nil
}
