// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// impl_pairwise_bernoulli.go - each (source, target) pair independently
// with probability p.
//
// Contract:
//   - Each owned target draws one uniform per eligible source, in source
//     order, from a stream keyed by the target.
//   - A pair is drawn at most once, so allow_multapses has no effect.
//   - Arrays and make_symmetric are not supported; symmetric random
//     networks use symmetric_pairwise_bernoulli.

package connect

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/rng"
	"github.com/katalvlaran/lvconnect/synapse"
)

type pairwiseBernoulli struct {
	*bipartite
	p float64
}

func newPairwiseBernoulli(
	sources, targets nodes.Collection,
	third ThirdFactorBuilder,
	spec *conf.Dict,
	syns []synapse.Spec,
	env Env,
) (BipartiteBuilder, error) {
	base, err := newBipartite(RulePairwiseBernoulli, sources, targets, third, spec, syns, env)
	if err != nil {
		return nil, err
	}
	p, err := probability(RulePairwiseBernoulli, spec)
	if err != nil {
		return nil, err
	}
	if err = base.rejectSymmetric(); err != nil {
		return nil, err
	}
	if err = base.rejectArrays(); err != nil {
		return nil, err
	}

	return &pairwiseBernoulli{bipartite: base, p: p}, nil
}

// probability reads the required key p and checks 0 <= p <= 1.
func probability(rule string, spec *conf.Dict) (float64, error) {
	p, err := spec.RequireFloat(KeyP)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", rule, ErrBadParameter, err)
	}
	if !(p >= 0 && p <= 1) {
		return 0, fmt.Errorf("%s: p=%v outside [0,1]: %w", rule, p, ErrBadParameter)
	}

	return p, nil
}

// Execute implements BipartiteBuilder.
func (b *pairwiseBernoulli) Execute(ctx context.Context) (Stats, error) {
	return b.run(ctx, b.generate)
}

// generate tests every (source, owned target) pair.
// Complexity: O(|S|) per owned target.
func (b *pairwiseBernoulli) generate(ctx context.Context, w *Worker, p pass) error {
	if b.p == 0 {
		return nil
	}

	return b.eachTarget(ctx, w, p, func(_ int, target uint64) error {
		r := w.unitStream(rng.RoleTarget, target)
		ordinal := 0

		return eachMember(p.sources, func(_ int, source uint64) error {
			if !b.autapses && source == target {
				return nil
			}
			if r.Float64() >= b.p {
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
