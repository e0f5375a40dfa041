package utils

import (
	"math"
	"strconv"
)

// ParseFloat converts a string to a float64, treating empty as zero
func ParseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	return value, nil
}

// Round2 rounds a monetary amount to two decimal places. Commission amounts
// are rounded exactly once, when an order is recorded; everything downstream
// reuses the stored figure.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
