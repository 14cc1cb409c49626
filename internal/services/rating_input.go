package services

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidRating     = errors.New("rating must be a number")
	ErrRatingOutOfRange  = errors.New("rating must be between 0 and 10")
	ErrTooManyDecimals   = errors.New("rating must have at most 1 decimal place")
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrFutureDate        = errors.New("cannot rate a future date")
)

// ValidatedRating is a submission that passed validation: the calendar day at
// midnight UTC and the rating on the integer ×10 scale.
type ValidatedRating struct {
	Date   time.Time
	Tenths int
}

// ValidateRatingSubmission checks a raw (date, rating) submission against the
// caller-supplied current day. It is pure: "today" is injected, never read
// from a clock.
func ValidateRatingSubmission(dateRaw string, ratingRaw string, today time.Time) (ValidatedRating, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(ratingRaw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return ValidatedRating{}, ErrInvalidRating
	}
	if value < 0 || value > 10 {
		return ValidatedRating{}, ErrRatingOutOfRange
	}

	// The one-decimal check works on the ×10 integer scale; a value is on the
	// grid iff rounding its tenths reproduces it exactly.
	tenths := math.Round(value * 10)
	if tenths/10 != value {
		return ValidatedRating{}, ErrTooManyDecimals
	}

	day, err := time.Parse("2006-01-02", strings.TrimSpace(dateRaw))
	if err != nil {
		return ValidatedRating{}, ErrInvalidDateFormat
	}
	day = UTCDate(day)
	if day.After(UTCDate(today)) {
		return ValidatedRating{}, ErrFutureDate
	}

	return ValidatedRating{Date: day, Tenths: int(tenths)}, nil
}
