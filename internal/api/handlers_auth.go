package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dayrate/internal/models"
	"dayrate/internal/services"
)

type registerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	payload := registerPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" || strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		return apiError(c, fiber.StatusBadRequest, "name, email and password are required")
	}

	handler.ensureDependencies()
	exists, err := handler.authService.EmailExists(payload.Email)
	if err != nil {
		return handler.storageError(c, "check email", err)
	}
	if exists {
		return apiError(c, fiber.StatusConflict, "email already in use")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return handler.storageError(c, "hash password", err)
	}

	user := models.User{
		Name:         payload.Name,
		Email:        services.NormalizeEmail(payload.Email),
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := handler.authService.CreateUser(&user); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return apiError(c, fiber.StatusConflict, "email already in use")
		}
		return handler.storageError(c, "create user", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": fiber.Map{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"createdAt": user.CreatedAt,
		},
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	payload := loginPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		return apiError(c, fiber.StatusBadRequest, "email and password are required")
	}

	handler.ensureDependencies()
	user, err := handler.authService.FindByEmail(payload.Email)
	if err != nil {
		// Only a missing account is an auth failure; a broken store is not.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return handler.storageError(c, "load account", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	return handler.respondWithSession(c, user)
}

func (handler *Handler) Refresh(c *fiber.Ctx) error {
	presented := strings.TrimSpace(c.Cookies(refreshCookieName))
	if presented == "" {
		return apiError(c, fiber.StatusUnauthorized, "no refresh token")
	}

	handler.ensureDependencies()
	rotated, err := handler.authService.RotateRefreshToken(presented, time.Now().UTC())
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			return apiError(c, fiber.StatusUnauthorized, "invalid or expired refresh token")
		}
		return handler.storageError(c, "rotate refresh token", err)
	}

	user, err := handler.authService.FindByID(rotated.UserID)
	if err != nil {
		return handler.storageError(c, "load session user", err)
	}

	handler.setRefreshCookie(c, rotated)
	accessToken, err := handler.buildAccessToken(user.ID, time.Now().UTC())
	if err != nil {
		return handler.storageError(c, "sign access token", err)
	}
	return c.JSON(sessionResponse(accessToken, user))
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	presented := strings.TrimSpace(c.Cookies(refreshCookieName))

	handler.ensureDependencies()
	if err := handler.authService.RevokeRefreshToken(presented); err != nil {
		return handler.storageError(c, "revoke refresh token", err)
	}

	handler.clearRefreshCookie(c)
	return c.JSON(fiber.Map{"message": "logged out"})
}

func (handler *Handler) respondWithSession(c *fiber.Ctx, user models.User) error {
	now := time.Now().UTC()
	refreshToken, err := handler.authService.IssueRefreshToken(user.ID, now)
	if err != nil {
		return handler.storageError(c, "issue refresh token", err)
	}
	accessToken, err := handler.buildAccessToken(user.ID, now)
	if err != nil {
		return handler.storageError(c, "sign access token", err)
	}

	handler.setRefreshCookie(c, refreshToken)
	return c.JSON(sessionResponse(accessToken, user))
}

func sessionResponse(accessToken string, user models.User) fiber.Map {
	return fiber.Map{
		"accessToken": accessToken,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	}
}
