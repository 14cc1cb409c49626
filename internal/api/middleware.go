package api

import (
	"github.com/gofiber/fiber/v2"

	"dayrate/internal/models"
)

const (
	refreshCookieName = "dayrate_refresh"
	contextUserKey    = "current_user"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}
