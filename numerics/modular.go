// SPDX-License-Identifier: MIT
// Package: lvconnect/numerics
//
// modular.go - number-theoretic helpers used by the VP partitioning.
//
// FirstIndex considers an infinite container whose entries map to phases
// with a given period (e.g. node id -> virtual process). The phase of the
// first entry is phase0, the container is traversed with a given step, and
// we want the first traversal index whose entry has the requested phase:
//
//	idx 0 1 2 3 4 5 6 7 8 9  10 11 | 12 13 14 15 16 17 18
//	gid 1 2 3 4 5 6 7 8 9 10 11 12 | 13 14 15 16 17 18 19
//	vp  1 2 3 0 1 2 3 0 1 2  3  0  | 1  2  3  0  1  2  3
//	    *     *     *     *        | *        *        *
//	    1     0     3     2        |
//
// With period=4 and phase0=1, a traversal with step=3 visits the entries
// marked by asterisks; phases 1, 0, 3, 2 are reached at traversal indices
// 0, 1, 2, 3. With step=1, phase 0 is first reached at index 3. | marks
// where the pattern repeats. The caller must check the returned index
// against the real container length.

package numerics

import (
	"errors"
	"fmt"
	"math/bits"
)

// InvalidIndex is returned by FirstIndex when no traversal index maps to
// the requested phase. It is an expected outcome, not an error.
const InvalidIndex int64 = -1

var (
	// ErrInvalidModulus indicates a modulus (or period) that is not positive.
	ErrInvalidModulus = errors.New("numerics: modulus must be positive")

	// ErrNotInvertible indicates gcd(a, m) != 1 in ModInverse.
	ErrNotInvertible = errors.New("numerics: value not invertible")
)

// GCD returns the greatest common divisor of |a| and |b|; GCD(0,0) == 0.
func GCD(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// Mod returns a mod m in [0, m). m must be positive.
func Mod(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}

	return r
}

// MulMod returns (a*b) mod m for a, b in [0, m) without overflow.
func MulMod(a, b, m int64) int64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))

	return int64(bits.Rem64(hi, lo, uint64(m)))
}

// ModInverse returns x in [0, m) with a*x ≡ 1 (mod m), computed with the
// extended Euclidean algorithm in O(log m).
func ModInverse(a, m int64) (int64, error) {
	if m <= 0 {
		return 0, fmt.Errorf("ModInverse: m=%d: %w", m, ErrInvalidModulus)
	}
	if m == 1 {
		return 0, nil
	}

	var (
		oldR, r = Mod(a, m), m
		oldS, s = int64(1), int64(0)
		q       int64
	)
	for r != 0 {
		q = oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
	}
	if oldR != 1 {
		return 0, fmt.Errorf("ModInverse: gcd(%d,%d)=%d: %w", a, m, oldR, ErrNotInvertible)
	}

	return Mod(oldS, m), nil
}

// FirstIndex returns the smallest idx >= 0 with
//
//	(phase0 + idx*step) mod period == phase
//
// or InvalidIndex if the congruence has no solution (gcd(step, period) does
// not divide phase-phase0) or the arguments are out of domain.
// Complexity: O(log period).
func FirstIndex(period, phase0, step, phase int64) int64 {
	if period <= 0 || phase < 0 || phase >= period {
		return InvalidIndex
	}

	delta := Mod(phase-phase0, period)
	if delta == 0 {
		return 0
	}

	s := Mod(step, period)
	g := GCD(s, period) // GCD(0, period) == period
	if delta%g != 0 {
		return InvalidIndex
	}

	// Reduce to a coprime congruence: (s/g)*idx ≡ delta/g (mod period/g).
	m := period / g
	inv, err := ModInverse(s/g, m)
	if err != nil {
		return InvalidIndex
	}

	return MulMod(delta/g, inv, m)
}

// Period returns the distance between consecutive traversal indices that
// map to the same phase: period / gcd(step, period).
func Period(period, step int64) int64 {
	if period <= 0 {
		return 0
	}

	return period / GCD(Mod(step, period), period)
}
