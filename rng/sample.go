// SPDX-License-Identifier: MIT
// Package: lvconnect/rng
//
// sample.go - discrete samplers missing from math/rand/v2.

package rng

import (
	"math"
	"math/rand/v2"
)

// poissonKnuthLimit is the mean below which Knuth's multiplication method
// is used; above it the PTRS rejection sampler takes over.
const poissonKnuthLimit = 30.0

// Binomial draws from Binomial(n, p) by summing geometric waiting times.
// Expected cost O(n·min(p,1-p) + 1).
func Binomial(r *rand.Rand, n int, p float64) int {
	switch {
	case n <= 0 || p <= 0:
		return 0
	case p >= 1:
		return n
	case p > 0.5:
		return n - Binomial(r, n, 1-p)
	}

	logQ := math.Log1p(-p)
	count, pos := 0, 0
	for {
		// 1-Float64() lies in (0, 1], so the logarithm is finite.
		skip := math.Floor(math.Log(1-r.Float64()) / logQ)
		if skip >= float64(n-pos) {
			return count
		}
		pos += int(skip) + 1
		count++
		if pos >= n {
			return count
		}
	}
}

// Poisson draws from Poisson(lambda).
func Poisson(r *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	if lambda < poissonKnuthLimit {
		limit := math.Exp(-lambda)
		k, prod := 0, r.Float64()
		for prod > limit {
			k++
			prod *= r.Float64()
		}
		return k
	}

	return poissonPTRS(r, lambda)
}

// poissonPTRS is Hörmann's transformed rejection with squeeze (1993).
func poissonPTRS(r *rand.Rand, lambda float64) int {
	var (
		slam     = math.Sqrt(lambda)
		logLam   = math.Log(lambda)
		b        = 0.931 + 2.53*slam
		a        = -0.059 + 0.02483*b
		invAlpha = 1.1239 + 1.1328/(b-3.4)
		vr       = 0.9277 - 3.6224/(b-2)
	)
	for {
		u := r.Float64() - 0.5
		v := r.Float64()
		us := 0.5 - math.Abs(u)
		k := math.Floor((2*a/us+b)*u + lambda + 0.43)
		if us >= 0.07 && v <= vr {
			return int(k)
		}
		if k < 0 || (us < 0.013 && v > us) {
			continue
		}
		lg, _ := math.Lgamma(k + 1)
		if math.Log(v)+math.Log(invAlpha)-math.Log(a/(us*us)+b) <= -lambda+k*logLam-lg {
			return int(k)
		}
	}
}
