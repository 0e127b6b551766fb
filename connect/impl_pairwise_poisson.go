// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// impl_pairwise_poisson.go - a Poisson number of edges per pair.
//
// Contract:
//   - Each owned target draws Poisson(pairwise_avg_num_conns) edges from
//     every eligible source, in source order, on a stream keyed by the
//     target.
//   - allow_multapses must be true (ErrUnsupported otherwise).
//   - Arrays and make_symmetric are not supported.

package connect

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/rng"
	"github.com/katalvlaran/lvconnect/synapse"
)

type pairwisePoisson struct {
	*bipartite
	lambda float64
}

func newPairwisePoisson(
	sources, targets nodes.Collection,
	third ThirdFactorBuilder,
	spec *conf.Dict,
	syns []synapse.Spec,
	env Env,
) (BipartiteBuilder, error) {
	base, err := newBipartite(RulePairwisePoisson, sources, targets, third, spec, syns, env)
	if err != nil {
		return nil, err
	}
	lambda, err := spec.RequireFloat(KeyAvgNumConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", RulePairwisePoisson, ErrBadParameter, err)
	}
	if !(lambda >= 0) || math.IsInf(lambda, 1) {
		return nil, fmt.Errorf("%s: %s=%v: %w", RulePairwisePoisson, KeyAvgNumConn, lambda, ErrBadParameter)
	}
	if !base.multapses {
		return nil, fmt.Errorf("%s: %s=false: %w", RulePairwisePoisson, KeyAllowMultapses, ErrUnsupported)
	}
	if err = base.rejectSymmetric(); err != nil {
		return nil, err
	}
	if err = base.rejectArrays(); err != nil {
		return nil, err
	}

	return &pairwisePoisson{bipartite: base, lambda: lambda}, nil
}

// Execute implements BipartiteBuilder.
func (b *pairwisePoisson) Execute(ctx context.Context) (Stats, error) {
	return b.run(ctx, b.generate)
}

// generate draws a Poisson edge count for every pair.
// Complexity: O(|S| + edges) per owned target.
func (b *pairwisePoisson) generate(ctx context.Context, w *Worker, p pass) error {
	if b.lambda == 0 {
		return nil
	}

	return b.eachTarget(ctx, w, p, func(_ int, target uint64) error {
		r := w.unitStream(rng.RoleTarget, target)
		ordinal := 0

		return eachMember(p.sources, func(_ int, source uint64) error {
			if !b.autapses && source == target {
				return nil
			}
			for n := rng.Poisson(r, b.lambda); n > 0; n-- {
				if err := b.connect(ctx, w, source, target, ordinal, 0); err != nil {
					return err
				}
				ordinal++
			}

			return nil
		})
	})
}
