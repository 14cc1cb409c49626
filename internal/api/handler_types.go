package api

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dayrate/internal/db"
	"dayrate/internal/services"
)

// Handler is the shared dependency container for the HTTP surface: the
// database handle, the token signing key, the logger, and the services the
// route handlers delegate to.
type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	log          *zap.Logger
	cookieSecure bool

	repositories  *db.Repositories
	authService   *services.AuthService
	ratingService *services.RatingService
	statsService  *services.StatsService
	groupService  *services.GroupService
}

func NewHandler(database *gorm.DB, secretKey string, logger *zap.Logger, cookieSecure bool) *Handler {
	handler := &Handler{
		db:           database,
		secretKey:    []byte(secretKey),
		log:          logger,
		cookieSecure: cookieSecure,
	}
	return handler.withDependencies(database)
}
