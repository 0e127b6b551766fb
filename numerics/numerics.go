// SPDX-License-Identifier: MIT
// Package: lvconnect/numerics
//
// numerics.go - deterministic rounding and floating-point classification.
//
// Contract:
//   - Rounding is "half up": [n-1/2, n+1/2) -> n, for every integer n,
//     including negative ones (-2.5 -> -2, -2.6 -> -3).
//   - No function in this file panics or allocates.

package numerics

import (
	"math"
)

// integerTolerance scales machine epsilon for IsInteger.
const integerTolerance = 10.0

// LdRound rounds x to the nearest integer, midpoints upwards, and returns it
// as int64. Values outside the int64 range saturate.
// Complexity: O(1).
func LdRound(x float64) int64 {
	r := math.Floor(x + 0.5)
	switch {
	case r >= math.MaxInt64:
		return math.MaxInt64
	case r <= math.MinInt64:
		return math.MinInt64
	case math.IsNaN(r):
		return 0
	}

	return int64(r)
}

// DRound is LdRound returning a float64. NaN and ±Inf are passed through.
func DRound(x float64) float64 {
	return math.Floor(x + 0.5)
}

// DTruncate returns the integer part of x (towards zero).
func DTruncate(x float64) float64 {
	return math.Trunc(x)
}

// IsInteger reports whether x equals an integer up to rounding error.
func IsInteger(x float64) bool {
	if !IsFinite(x) {
		return false
	}
	tol := integerTolerance * epsilon
	if ax := math.Abs(x); ax > 1 {
		tol *= ax
	}

	return math.Abs(x-math.Round(x)) <= tol
}

// IsNaN reports whether x is an IEEE 754 "not-a-number" value.
func IsNaN(x float64) bool {
	return math.IsNaN(x)
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Expm1 returns e^x - 1, accurate also for |x| near zero.
func Expm1(x float64) float64 {
	return math.Expm1(x)
}

// epsilon is the distance from 1.0 to the next representable float64.
var epsilon = math.Nextafter(1, 2) - 1
