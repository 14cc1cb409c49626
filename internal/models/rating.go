package models

import "time"

const (
	// Ratings live on the 0.0..10.0 grid with one fractional digit. They are
	// stored as integer tenths so comparisons and averages never touch binary
	// floating point.
	MinRatingTenths = 0
	MaxRatingTenths = 100
)

type DailyRating struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uint      `gorm:"not null;uniqueIndex:uidx_user_date"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:uidx_user_date"`
	RatingTenths int       `gorm:"not null"`
	CreatedAt    time.Time
}

// Rating converts the stored tenths back to the decimal value callers see.
func (rating DailyRating) Rating() float64 {
	return float64(rating.RatingTenths) / 10
}
