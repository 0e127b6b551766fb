// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// impl_symmetric_bernoulli.go - each unordered pair {a, b} with probability
// p, installed in both directions.
//
// Contract:
//   - Sources and targets must be the same collection.
//   - allow_autapses=false, allow_multapses=true and make_symmetric=true
//     are required; any other combination is ErrUnsupported.
//   - The decision for {a, b} is a counter-based uniform keyed by
//     (min, max), so the VPs owning a and b agree without a shared stream.
//     Parameter draws are keyed the same way, so a -> b and b -> a carry
//     identical values.

package connect

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/rng"
	"github.com/katalvlaran/lvconnect/synapse"
)

type symmetricBernoulli struct {
	*bipartite
	p float64
}

func newSymmetricBernoulli(
	sources, targets nodes.Collection,
	third ThirdFactorBuilder,
	spec *conf.Dict,
	syns []synapse.Spec,
	env Env,
) (BipartiteBuilder, error) {
	const rule = RuleSymmetricPairwiseBernoulli
	base, err := newBipartite(rule, sources, targets, third, spec, syns, env)
	if err != nil {
		return nil, err
	}
	p, err := probability(rule, spec)
	if err != nil {
		return nil, err
	}
	switch {
	case !nodes.Equal(sources, targets):
		return nil, fmt.Errorf("%s: sources and targets differ: %w", rule, ErrUnsupported)
	case base.autapses:
		return nil, fmt.Errorf("%s: requires %s=false: %w", rule, KeyAllowAutapses, ErrUnsupported)
	case !base.multapses:
		return nil, fmt.Errorf("%s: requires %s=true: %w", rule, KeyAllowMultapses, ErrUnsupported)
	case !base.symmetric:
		return nil, fmt.Errorf("%s: requires %s=true: %w", rule, KeyMakeSymmetric, ErrUnsupported)
	}
	if err = base.rejectArrays(); err != nil {
		return nil, err
	}

	return &symmetricBernoulli{bipartite: base, p: p}, nil
}

// Execute implements BipartiteBuilder.
func (b *symmetricBernoulli) Execute(ctx context.Context) (Stats, error) {
	return b.run(ctx, b.generate)
}

// generate decides each unordered pair from its counter-based uniform, so
// both directions agree without communication.
// Complexity: O(|S|) per owned target.
func (b *symmetricBernoulli) generate(ctx context.Context, w *Worker, p pass) error {
	if b.p == 0 {
		return nil
	}
	streams := b.env.Streams

	return b.eachTarget(ctx, w, p, func(_ int, target uint64) error {
		ordinal := 0

		return eachMember(p.sources, func(_ int, source uint64) error {
			if source == target {
				return nil
			}
			if streams.Uniform(rng.RolePair, min(source, target), max(source, target)) >= b.p {
				return nil
			}
			if err := b.connect(ctx, w, source, target, ordinal, 0); err != nil {
				return err
			}
			ordinal++

			return nil
		})
	})
}
