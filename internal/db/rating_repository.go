package db

import (
	"time"

	"dayrate/internal/models"
	"gorm.io/gorm"
)

type RatingRepository struct {
	database *gorm.DB
}

func NewRatingRepository(database *gorm.DB) *RatingRepository {
	return &RatingRepository{database: database}
}

// RatingAggregate carries AVG/COUNT over a rating set. AvgTenths is nil when
// the set is empty (SQL AVG over zero rows is NULL).
type RatingAggregate struct {
	AvgTenths *float64 `gorm:"column:avg_tenths"`
	Count     int64    `gorm:"column:rating_count"`
}

// UserRatingAggregate is one row of a per-user GROUP BY average. Users with
// no ratings produce no row at all.
type UserRatingAggregate struct {
	UserID    uint    `gorm:"column:user_id"`
	AvgTenths float64 `gorm:"column:avg_tenths"`
}

// Create inserts the rating. The uidx_user_date unique index is the final
// arbiter for one-rating-per-day; a violation comes back as
// gorm.ErrDuplicatedKey regardless of any pre-check the caller ran.
func (repo *RatingRepository) Create(rating *models.DailyRating) error {
	return repo.database.Create(rating).Error
}

func (repo *RatingRepository) ExistsForUserOnDate(userID uint, date time.Time) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.DailyRating{}).
		Where("user_id = ? AND date = ?", userID, date).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *RatingRepository) ListByUser(userID uint) ([]models.DailyRating, error) {
	ratings := make([]models.DailyRating, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

// FindForUsersOnDate returns at most one rating per listed user, for the
// exact given day. All stored dates are normalized to midnight UTC, so plain
// equality is the whole match.
func (repo *RatingRepository) FindForUsersOnDate(userIDs []uint, date time.Time) ([]models.DailyRating, error) {
	ratings := make([]models.DailyRating, 0)
	if len(userIDs) == 0 {
		return ratings, nil
	}
	if err := repo.database.
		Where("user_id IN ? AND date = ?", userIDs, date).
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

// AggregateForUser computes AVG and COUNT of one user's ratings with
// date >= from; a nil from means all of them.
func (repo *RatingRepository) AggregateForUser(userID uint, from *time.Time) (RatingAggregate, error) {
	query := repo.database.Model(&models.DailyRating{}).Where("user_id = ?", userID)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}

	aggregate := RatingAggregate{}
	if err := query.
		Select("AVG(rating_tenths) AS avg_tenths, COUNT(*) AS rating_count").
		Scan(&aggregate).Error; err != nil {
		return RatingAggregate{}, err
	}
	return aggregate, nil
}

// AggregateByUser computes each listed user's overall average in a single
// GROUP BY query.
func (repo *RatingRepository) AggregateByUser(userIDs []uint) ([]UserRatingAggregate, error) {
	aggregates := make([]UserRatingAggregate, 0)
	if len(userIDs) == 0 {
		return aggregates, nil
	}
	if err := repo.database.Model(&models.DailyRating{}).
		Select("user_id, AVG(rating_tenths) AS avg_tenths").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&aggregates).Error; err != nil {
		return nil, err
	}
	return aggregates, nil
}
