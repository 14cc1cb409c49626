package services

import "time"

// UTCDate normalizes a moment to midnight UTC of its calendar day. Every
// stored rating date and every window bound goes through this.
func UTCDate(value time.Time) time.Time {
	year, month, day := value.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// WeekWindowStart returns the first day of the 7-day window ending on today,
// inclusive on both ends.
func WeekWindowStart(today time.Time) time.Time {
	return today.AddDate(0, 0, -6)
}

func MonthWindowStart(today time.Time) time.Time {
	return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func YearWindowStart(today time.Time) time.Time {
	return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}
