package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		if errors.Is(err, errUnauthenticated) {
			return apiError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		return handler.storageError(c, "authenticate request", err)
	}

	c.Locals(contextUserKey, user)
	return c.Next()
}
