package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// storageError logs the underlying failure and hides it behind a generic 500;
// storage failures are never dressed up as validation or conflict errors.
func (handler *Handler) storageError(c *fiber.Ctx, operation string, err error) error {
	handler.ensureDependencies()
	handler.log.Error("storage operation failed",
		zap.String("operation", operation),
		zap.Error(err),
	)
	return apiError(c, fiber.StatusInternalServerError, "internal server error")
}
