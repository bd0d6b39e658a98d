package schedule

import "math"

// RoundCents rounds a money amount to two decimals, half away from zero.
// Amounts are rounded at the point of computation so repeated runs over the
// same inputs stay stable.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Fee converts worked minutes at an hourly rate into a rounded amount.
func Fee(minutes int, hourlyRate float64) float64 {
	return RoundCents(float64(minutes) / 60 * hourlyRate)
}
