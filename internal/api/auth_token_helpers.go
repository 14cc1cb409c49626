package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"dayrate/internal/models"
)

const accessTokenTTL = 15 * time.Minute

// errUnauthenticated marks request-side auth failures (bad or missing
// credentials). Anything else out of authenticateRequest is a storage
// failure and must not collapse into a 401.
var errUnauthenticated = errors.New("unauthenticated")

type authClaims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

func (handler *Handler) buildAccessToken(userID uint, now time.Time) (string, error) {
	claims := authClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}

// authenticateRequest validates the bearer access token and loads its user.
func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, fmt.Errorf("%w: missing bearer token", errUnauthenticated)
	}
	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", errUnauthenticated)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, fmt.Errorf("%w: token expired", errUnauthenticated)
	}

	handler.ensureDependencies()
	user, err := handler.authService.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown user", errUnauthenticated)
		}
		return nil, err
	}
	return &user, nil
}

func (handler *Handler) setRefreshCookie(c *fiber.Ctx, token models.RefreshToken) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token.Token,
		Expires:  token.ExpiresAt,
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Path:     "/",
	})
}

func (handler *Handler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Path:     "/",
	})
}
