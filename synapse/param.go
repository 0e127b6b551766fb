// SPDX-License-Identifier: MIT
// Package: lvconnect/synapse
//
// param.go - synapse parameter values: constants, per-edge arrays and
// random distributions.
//
// A decoded value maps to a Parameter as follows:
//
//	2.5                                   -> Constant
//	[1.0, 2.0, ...]                       -> Array (indexed per edge)
//	{distribution: normal, mu: 1, sigma}  -> Distribution

package synapse

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/katalvlaran/lvconnect/conf"
)

// Parameter yields the value of one synapse parameter for one edge.
type Parameter interface {
	// Value returns the value for the edge with array index idx; random
	// parameters draw from r.
	Value(r *rand.Rand, idx int) float64
	// Random reports whether Value consumes random numbers.
	Random() bool
	// Len returns the array length, or -1 for scalar parameters.
	Len() int
}

// Constant is a scalar parameter.
type Constant float64

// Value implements Parameter.
func (c Constant) Value(*rand.Rand, int) float64 { return float64(c) }

// Random implements Parameter.
func (Constant) Random() bool { return false }

// Len implements Parameter.
func (Constant) Len() int { return -1 }

// Array holds one value per edge; the owning rule defines the indexing.
type Array []float64

// Value implements Parameter.
func (a Array) Value(_ *rand.Rand, idx int) float64 { return a[idx] }

// Random implements Parameter.
func (Array) Random() bool { return false }

// Len implements Parameter.
func (a Array) Len() int { return len(a) }

// Distribution draws a fresh value for every edge.
type Distribution struct {
	Name string
	draw func(r *rand.Rand) float64
}

// Value implements Parameter.
func (d Distribution) Value(r *rand.Rand, _ int) float64 { return d.draw(r) }

// Random implements Parameter.
func (Distribution) Random() bool { return true }

// Len implements Parameter.
func (Distribution) Len() int { return -1 }

// distributionFactories maps distribution names to their constructors.
var distributionFactories = map[string]func(d *conf.Dict) (func(*rand.Rand) float64, error){
	"uniform": func(d *conf.Dict) (func(*rand.Rand) float64, error) {
		low, high, err := bounds(d, 0, 1)
		if err != nil {
			return nil, err
		}
		return func(r *rand.Rand) float64 { return low + (high-low)*r.Float64() }, nil
	},
	"uniform_int": func(d *conf.Dict) (func(*rand.Rand) float64, error) {
		low, err := d.Int("low", 0)
		if err != nil {
			return nil, err
		}
		high, err := d.Int("high", 1)
		if err != nil {
			return nil, err
		}
		if high < low {
			return nil, fmt.Errorf("uniform_int: high=%d < low=%d: %w", high, low, ErrBadParameter)
		}
		span := int64(high - low + 1)
		return func(r *rand.Rand) float64 { return float64(int64(low) + r.Int64N(span)) }, nil
	},
	"normal": func(d *conf.Dict) (func(*rand.Rand) float64, error) {
		mu, sigma, err := muSigma(d)
		if err != nil {
			return nil, err
		}
		return func(r *rand.Rand) float64 { return mu + sigma*r.NormFloat64() }, nil
	},
	"normal_clipped": func(d *conf.Dict) (func(*rand.Rand) float64, error) {
		mu, sigma, err := muSigma(d)
		if err != nil {
			return nil, err
		}
		low, high, err := bounds(d, math.Inf(-1), math.Inf(1))
		if err != nil {
			return nil, err
		}
		return clipped(func(r *rand.Rand) float64 { return mu + sigma*r.NormFloat64() }, low, high), nil
	},
	"lognormal": func(d *conf.Dict) (func(*rand.Rand) float64, error) {
		mu, sigma, err := muSigma(d)
		if err != nil {
			return nil, err
		}
		return func(r *rand.Rand) float64 { return math.Exp(mu + sigma*r.NormFloat64()) }, nil
	},
	"lognormal_clipped": func(d *conf.Dict) (func(*rand.Rand) float64, error) {
		mu, sigma, err := muSigma(d)
		if err != nil {
			return nil, err
		}
		low, high, err := bounds(d, 0, math.Inf(1))
		if err != nil {
			return nil, err
		}
		return clipped(func(r *rand.Rand) float64 { return math.Exp(mu + sigma*r.NormFloat64()) }, low, high), nil
	},
	"exponential": func(d *conf.Dict) (func(*rand.Rand) float64, error) {
		beta, err := d.Float("beta", 1)
		if err != nil {
			return nil, err
		}
		if beta <= 0 {
			return nil, fmt.Errorf("exponential: beta=%v <= 0: %w", beta, ErrBadParameter)
		}
		return func(r *rand.Rand) float64 { return beta * r.ExpFloat64() }, nil
	},
	"gamma": func(d *conf.Dict) (func(*rand.Rand) float64, error) {
		k, err := d.Float("k", 1)
		if err != nil {
			return nil, err
		}
		theta, err := d.Float("theta", 1)
		if err != nil {
			return nil, err
		}
		if k <= 0 || theta <= 0 {
			return nil, fmt.Errorf("gamma: k=%v theta=%v: %w", k, theta, ErrBadParameter)
		}
		return func(r *rand.Rand) float64 { return theta * gammaDraw(r, k) }, nil
	},
}

// maxClipRedraws bounds redraws of clipped distributions before the value
// is clamped to the nearest bound.
const maxClipRedraws = 1000

// Distributions returns the supported distribution names, sorted.
func Distributions() []string {
	names := make([]string, 0, len(distributionFactories))
	for n := range distributionFactories {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

// ParseParameter converts a decoded value into a Parameter.
func ParseParameter(name string, v any) (Parameter, error) {
	if f, err := conf.ToFloat(v); err == nil {
		return Constant(f), nil
	}
	if xs, ok := conf.AsFloats(v); ok {
		return Array(xs), nil
	}
	m, ok := conf.AsMap(v)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported value %T: %w", name, v, ErrBadParameter)
	}

	d := conf.New(m)
	dist, err := d.RequireString("distribution")
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, ErrBadParameter, err)
	}
	factory, ok := distributionFactories[dist]
	if !ok {
		return nil, fmt.Errorf("%s: unknown distribution %q (known: %s): %w",
			name, dist, strings.Join(Distributions(), ", "), ErrBadParameter)
	}
	draw, err := factory(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, ErrBadParameter, err)
	}
	if extra := d.Unaccessed(); len(extra) > 0 {
		return nil, fmt.Errorf("%s: %s: unknown keys %v: %w", name, dist, extra, ErrBadParameter)
	}

	return Distribution{Name: dist, draw: draw}, nil
}

func muSigma(d *conf.Dict) (float64, float64, error) {
	mu, err := d.Float("mu", 0)
	if err != nil {
		return 0, 0, err
	}
	sigma, err := d.Float("sigma", 1)
	if err != nil {
		return 0, 0, err
	}
	if sigma < 0 {
		return 0, 0, fmt.Errorf("sigma=%v < 0: %w", sigma, ErrBadParameter)
	}

	return mu, sigma, nil
}

func bounds(d *conf.Dict, defLow, defHigh float64) (float64, float64, error) {
	low, err := d.Float("low", defLow)
	if err != nil {
		return 0, 0, err
	}
	high, err := d.Float("high", defHigh)
	if err != nil {
		return 0, 0, err
	}
	if high < low {
		return 0, 0, fmt.Errorf("high=%v < low=%v: %w", high, low, ErrBadParameter)
	}

	return low, high, nil
}

func clipped(draw func(*rand.Rand) float64, low, high float64) func(*rand.Rand) float64 {
	return func(r *rand.Rand) float64 {
		x := draw(r)
		for i := 0; i < maxClipRedraws && (x < low || x > high); i++ {
			x = draw(r)
		}
		return math.Min(math.Max(x, low), high)
	}
}

// gammaDraw samples Gamma(k, 1) with Marsaglia–Tsang.
func gammaDraw(r *rand.Rand, k float64) float64 {
	if k < 1 {
		u := r.Float64()
		return gammaDraw(r, k+1) * math.Pow(u, 1/k)
	}
	d := k - 1.0/3
	c := 1 / math.Sqrt(9*d)
	for {
		x := r.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := r.Float64()
		if math.Log(u) < 0.5*x*x+d-d*v+d*math.Log(v) {
			return d * v
		}
	}
}
