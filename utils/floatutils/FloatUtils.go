// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// Lerp linearly interpolates between a and b. Values of t outside
// [0, 1] extrapolate beyond a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Remap linearly maps value from the interval [-1, 1] onto the
// interval [low, high]. Values outside [-1, 1] are extrapolated.
func Remap(value, low, high float64) float64 {
	return Lerp(low, high, (value+1)*0.5)
}
