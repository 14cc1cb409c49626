package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"dayrate/internal/models"
	"dayrate/internal/services"
)

type ratingPayload struct {
	Date   string      `json:"date"`
	Rating json.Number `json:"rating"`
}

type ratingDTO struct {
	ID     uint    `json:"id"`
	Date   string  `json:"date"`
	Rating float64 `json:"rating"`
}

type windowSummaryDTO struct {
	Avg   *float64 `json:"avg"`
	Count int64    `json:"count"`
}

func (handler *Handler) SaveRating(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := ratingPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if payload.Date == "" || payload.Rating == "" {
		return apiError(c, fiber.StatusBadRequest, "date and rating are required")
	}

	validated, err := services.ValidateRatingSubmission(payload.Date, payload.Rating.String(), time.Now().UTC())
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	handler.ensureDependencies()
	saved, err := handler.ratingService.SaveRating(user.ID, validated)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateRating) {
			return apiError(c, fiber.StatusConflict, "you already rated this day")
		}
		return handler.storageError(c, "save rating", err)
	}

	return c.Status(fiber.StatusCreated).JSON(ratingToDTO(saved))
}

func (handler *Handler) ListRatings(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	ratings, err := handler.ratingService.ListRatings(user.ID)
	if err != nil {
		return handler.storageError(c, "list ratings", err)
	}

	response := make([]ratingDTO, 0, len(ratings))
	for _, rating := range ratings {
		response = append(response, ratingToDTO(rating))
	}
	return c.JSON(response)
}

func (handler *Handler) GetStats(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	stats, err := handler.statsService.ComputeStats(user.ID, time.Now().UTC())
	if err != nil {
		return handler.storageError(c, "compute stats", err)
	}

	return c.JSON(fiber.Map{
		"weekly":  windowToDTO(stats.Weekly),
		"monthly": windowToDTO(stats.Monthly),
		"yearly":  windowToDTO(stats.Yearly),
		"overall": windowToDTO(stats.Overall),
	})
}

func ratingToDTO(rating models.DailyRating) ratingDTO {
	return ratingDTO{
		ID:     rating.ID,
		Date:   rating.Date.Format("2006-01-02"),
		Rating: rating.Rating(),
	}
}

func windowToDTO(summary services.WindowSummary) windowSummaryDTO {
	return windowSummaryDTO{Avg: summary.Avg, Count: summary.Count}
}
