package services

import (
	"time"

	"dayrate/internal/db"
)

type StatsRatingReader interface {
	AggregateForUser(userID uint, from *time.Time) (db.RatingAggregate, error)
}

// WindowSummary is the average and count over one time window. Avg is nil
// when the window holds no ratings; it is never substituted with zero.
type WindowSummary struct {
	Avg   *float64
	Count int64
}

type RatingStats struct {
	Weekly  WindowSummary
	Monthly WindowSummary
	Yearly  WindowSummary
	Overall WindowSummary
}

type StatsService struct {
	ratings StatsRatingReader
}

func NewStatsService(ratings StatsRatingReader) *StatsService {
	return &StatsService{ratings: ratings}
}

// ComputeStats builds the four standard summaries for one user as of the
// injected now: the last 7 UTC days, the current UTC month, the current UTC
// year, and everything. Each window is a single aggregate query.
func (service *StatsService) ComputeStats(userID uint, now time.Time) (RatingStats, error) {
	today := UTCDate(now)
	weekStart := WeekWindowStart(today)
	monthStart := MonthWindowStart(today)
	yearStart := YearWindowStart(today)

	weekly, err := service.windowSummary(userID, &weekStart)
	if err != nil {
		return RatingStats{}, err
	}
	monthly, err := service.windowSummary(userID, &monthStart)
	if err != nil {
		return RatingStats{}, err
	}
	yearly, err := service.windowSummary(userID, &yearStart)
	if err != nil {
		return RatingStats{}, err
	}
	overall, err := service.windowSummary(userID, nil)
	if err != nil {
		return RatingStats{}, err
	}

	return RatingStats{
		Weekly:  weekly,
		Monthly: monthly,
		Yearly:  yearly,
		Overall: overall,
	}, nil
}

func (service *StatsService) windowSummary(userID uint, from *time.Time) (WindowSummary, error) {
	aggregate, err := service.ratings.AggregateForUser(userID, from)
	if err != nil {
		return WindowSummary{}, err
	}

	summary := WindowSummary{Count: aggregate.Count}
	if aggregate.AvgTenths != nil {
		avg := RoundTenthsAvg(*aggregate.AvgTenths)
		summary.Avg = &avg
	}
	return summary, nil
}
