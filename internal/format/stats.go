// Package format turns backend figures into display strings.
package format

import "math"

// GetPercentage returns value as a whole percentage of total, or 0 when
// total is 0. Results above 100 are allowed.
func GetPercentage(value, total float64) int {
	if total == 0 {
		return 0
	}
	return int(roundHalfUp(value / total * 100))
}

// RoundDecimal rounds value to the nearest multiple of increment. A nil
// value stays nil and a non-positive increment rounds to whole numbers.
func RoundDecimal(value *float64, increment float64) *float64 {
	if value == nil {
		return nil
	}
	if increment <= 0 {
		increment = 1
	}
	rounded := roundHalfUp(*value/increment) * increment
	// keep 0.1 steps from printing as 0.30000000000000004
	rounded = math.Round(rounded*1e9) / 1e9
	return &rounded
}

// roundHalfUp rounds halves towards positive infinity
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
