// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// impl_third_bernoulli_pool.go - third_factor_bernoulli_with_pool.
//
// Model:
//   Bound to (primary targets T, third collection M). For each primary
//   edge s -> t, with probability p a mediator m is chosen uniformly from
//   the pool of t, and two edges are installed:
//     s -> m  on channel third_in,
//     m -> t  on channel third_out.
//
// Pools:
//   - random: pool_size distinct members of M drawn from a stream keyed
//     by t. Every VP that needs the pool of t draws the same one.
//   - block: either pool_size*|T| == |M| and t at position i gets the
//     contiguous block [i*pool_size, (i+1)*pool_size), or pool_size == 1
//     and |T| is a multiple of |M|, and t gets M[i / (|T|/|M|)].
//
// Contract:
//   - The decision, the mediator choice and the mediator edge parameters
//     come from a stream keyed by (s, t, ordinal), so the result does not
//     depend on which worker calls Connect.
//   - Pools are cached per VP; a cache is touched only by its own VP.

package connect

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/rng"
	"github.com/katalvlaran/lvconnect/synapse"
)

const (
	defaultPoolType = PoolRandom
	defaultPoolSize = 1
	thirdChannels   = 2 // third_in, third_out
)

type thirdBernoulliPool struct {
	targets nodes.Collection // primary targets
	third   nodes.Collection
	in, out synapse.Spec
	env     Env

	p        float64
	poolType string
	poolSize int

	pools []map[uint64][]uint64 // per VP: primary target -> pool
}

func newThirdBernoulliPool(
	sources, targets nodes.Collection,
	spec *conf.Dict,
	syns []synapse.Spec,
	env Env,
) (ThirdFactorBuilder, error) {
	const rule = RuleThirdBernoulliWithPool
	if sources == nil || targets == nil {
		return nil, fmt.Errorf("%s: %w", rule, ErrMissingCollection)
	}
	if len(syns) != thirdChannels {
		return nil, fmt.Errorf("%s: %d synapse specifications, want %d: %w",
			rule, len(syns), thirdChannels, ErrSynapseChannels)
	}
	for _, s := range syns {
		if s.HasArrays() {
			return nil, fmt.Errorf("%s: array parameters: %w", rule, synapse.ErrBadParameter)
		}
	}
	if env.Installer == nil {
		return nil, fmt.Errorf("%s: nil installer: %w", rule, ErrBadParameter)
	}

	b := &thirdBernoulliPool{
		targets: sources,
		third:   targets,
		in:      syns[0],
		out:     syns[1],
		env:     env,
		pools:   make([]map[uint64][]uint64, env.Layout.NumVPs()),
	}
	var err error
	if b.p, err = probability(rule, spec); err != nil {
		return nil, err
	}
	if b.poolType, err = spec.String(KeyPoolType, defaultPoolType); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", rule, ErrBadParameter, err)
	}
	if b.poolSize, err = spec.Int(KeyPoolSize, defaultPoolSize); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", rule, ErrBadParameter, err)
	}

	nT, nM := b.targets.Size(), b.third.Size()
	if b.poolSize < 1 || b.poolSize > nM {
		return nil, fmt.Errorf("%s: pool_size=%d outside [1,%d]: %w", rule, b.poolSize, nM, ErrBadParameter)
	}
	switch b.poolType {
	case PoolRandom:
	case PoolBlock:
		if b.poolSize*nT != nM && !(b.poolSize == 1 && nT%nM == 0) {
			return nil, fmt.Errorf("%s: block pools need pool_size*|T| == |M| or pool_size == 1 and |M| | |T| (|T|=%d, |M|=%d): %w",
				rule, nT, nM, ErrBadParameter)
		}
	default:
		return nil, fmt.Errorf("%s: pool_type %q: %w", rule, b.poolType, ErrBadParameter)
	}

	return b, nil
}

// Rule implements ThirdFactorBuilder.
func (b *thirdBernoulliPool) Rule() string { return RuleThirdBernoulliWithPool }

// Collection returns the third collection.
func (b *thirdBernoulliPool) Collection() nodes.Collection { return b.third }

// Connect implements ThirdFactorBuilder.
// Complexity: O(1) with a cached or block pool, O(pool_size) on first use.
func (b *thirdBernoulliPool) Connect(_ context.Context, w *Worker, source, target uint64, ordinal int) error {
	// 1) Bernoulli gate on the edge's own stream.
	r := w.Aux(rng.RoleThird, source, target, uint64(ordinal))
	if r.Float64() >= b.p {
		return nil
	}
	// 2) Mediator from the target's pool.
	pool, err := b.pool(w.VP(), target)
	if err != nil {
		return err
	}
	mediator := pool[r.IntN(len(pool))]

	// 3) source -> mediator -> target.
	if err = w.Install(source, mediator, ChannelThirdIn, b.in, 0, r); err != nil {
		return fmt.Errorf("%w: %w", ErrMediationFailed, err)
	}
	if err = w.Install(mediator, target, ChannelThirdOut, b.out, 0, r); err != nil {
		return fmt.Errorf("%w: %w", ErrMediationFailed, err)
	}

	return nil
}

// pool returns the mediator pool of target, caching random pools per VP.
func (b *thirdBernoulliPool) pool(vp int, target uint64) ([]uint64, error) {
	pos := b.targets.Find(target)
	if pos < 0 {
		return nil, fmt.Errorf("target %d not in primary targets: %w", target, ErrMediationFailed)
	}

	if b.poolType == PoolBlock {
		return b.blockPool(pos)
	}

	cache := b.pools[vp]
	if cache == nil {
		cache = make(map[uint64][]uint64)
		b.pools[vp] = cache
	}
	if pool, ok := cache[target]; ok {
		return pool, nil
	}
	pool, err := b.randomPool(target)
	if err != nil {
		return nil, err
	}
	cache[target] = pool

	return pool, nil
}

// randomPool draws poolSize distinct members of the third collection by a
// partial Fisher-Yates shuffle over a sparse swap map.
// Complexity: O(pool_size) time and space.
func (b *thirdBernoulliPool) randomPool(target uint64) ([]uint64, error) {
	r := b.env.Streams.Stream(rng.RolePool, target)
	n := b.third.Size()
	swaps := make(map[int]int, b.poolSize)
	get := func(i int) int {
		if v, ok := swaps[i]; ok {
			return v
		}
		return i
	}

	pool := make([]uint64, b.poolSize)
	for i := range pool {
		j := i + r.IntN(n-i)
		vi, vj := get(i), get(j)
		swaps[j] = vi
		id, err := b.third.At(vj)
		if err != nil {
			return nil, err
		}
		pool[i] = id
	}

	return pool, nil
}

// blockPool returns the contiguous block of mediators of the target at pos.
func (b *thirdBernoulliPool) blockPool(pos int) ([]uint64, error) {
	nT, nM := b.targets.Size(), b.third.Size()
	start := pos * b.poolSize
	if b.poolSize*nT != nM {
		start = pos / (nT / nM)
	}

	pool := make([]uint64, b.poolSize)
	for i := range pool {
		id, err := b.third.At(start + i)
		if err != nil {
			return nil, err
		}
		pool[i] = id
	}

	return pool, nil
}
