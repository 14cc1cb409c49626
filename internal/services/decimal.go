package services

import "math"

// RoundTenthsAvg converts an average expressed in tenths (as the storage
// layer aggregates it) to a decimal value rounded to one fractional digit.
// math.Round settles halves away from zero.
func RoundTenthsAvg(avgTenths float64) float64 {
	return math.Round(avgTenths) / 10
}
