package services

import (
	"errors"
	"time"

	"dayrate/internal/models"
	"gorm.io/gorm"
)

var ErrDuplicateRating = errors.New("you already rated this day")

type RatingRepository interface {
	Create(rating *models.DailyRating) error
	ExistsForUserOnDate(userID uint, date time.Time) (bool, error)
	ListByUser(userID uint) ([]models.DailyRating, error)
}

type RatingService struct {
	ratings RatingRepository
}

func NewRatingService(ratings RatingRepository) *RatingService {
	return &RatingService{ratings: ratings}
}

// SaveRating persists a validated submission. The existence pre-check only
// buys a fast error; the unique index on (user_id, date) is what actually
// closes the race, so a constraint violation from Create is translated the
// same way.
func (service *RatingService) SaveRating(userID uint, submission ValidatedRating) (models.DailyRating, error) {
	exists, err := service.ratings.ExistsForUserOnDate(userID, submission.Date)
	if err != nil {
		return models.DailyRating{}, err
	}
	if exists {
		return models.DailyRating{}, ErrDuplicateRating
	}

	rating := models.DailyRating{
		UserID:       userID,
		Date:         submission.Date,
		RatingTenths: submission.Tenths,
	}
	if err := service.ratings.Create(&rating); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.DailyRating{}, ErrDuplicateRating
		}
		return models.DailyRating{}, err
	}
	return rating, nil
}

// ListRatings returns the user's ratings, newest day first.
func (service *RatingService) ListRatings(userID uint) ([]models.DailyRating, error) {
	return service.ratings.ListByUser(userID)
}
