package api

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dayrate/internal/db"
	"dayrate/internal/services"
)

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.authService = services.NewAuthService(handler.repositories.Users, handler.repositories.Tokens)
	handler.ratingService = services.NewRatingService(handler.repositories.Ratings)
	handler.statsService = services.NewStatsService(handler.repositories.Ratings)
	handler.groupService = services.NewGroupService(handler.repositories.Groups, handler.repositories.Ratings)
	return handler
}

// ensureDependencies lazily wires services for handlers constructed directly
// in tests with only a db handle.
func (handler *Handler) ensureDependencies() {
	if handler.repositories == nil {
		if handler.db == nil {
			return
		}
		handler.repositories = db.NewRepositories(handler.db)
	}
	if handler.log == nil {
		handler.log = zap.NewNop()
	}

	if handler.authService == nil {
		handler.authService = services.NewAuthService(handler.repositories.Users, handler.repositories.Tokens)
	}
	if handler.ratingService == nil {
		handler.ratingService = services.NewRatingService(handler.repositories.Ratings)
	}
	if handler.statsService == nil {
		handler.statsService = services.NewStatsService(handler.repositories.Ratings)
	}
	if handler.groupService == nil {
		handler.groupService = services.NewGroupService(handler.repositories.Groups, handler.repositories.Ratings)
	}
}
