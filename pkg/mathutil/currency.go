// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"
)

// FloorYen drops any fractional yen from val.
func FloorYen(val float64) int64 {
	return int64(math.Floor(val))
}

// NonNegative clamps val at zero.
func NonNegative(val int64) int64 {
	if val < 0 {
		return 0
	}
	return val
}
