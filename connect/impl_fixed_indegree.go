// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// impl_fixed_indegree.go - exactly k sources per target.
//
// Contract:
//   - Every target receives exactly k incoming edges, sources drawn
//     uniformly from a stream keyed by the target.
//   - Without multapses the draw is without replacement and k must not
//     exceed the eligible sources (ErrInfeasible); k > 0 with no eligible
//     source is infeasible either way.
//   - Arrays and make_symmetric are not supported.

package connect

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/rng"
	"github.com/katalvlaran/lvconnect/synapse"
)

type fixedIndegree struct {
	*bipartite
	indegree int
}

func newFixedIndegree(
	sources, targets nodes.Collection,
	third ThirdFactorBuilder,
	spec *conf.Dict,
	syns []synapse.Spec,
	env Env,
) (BipartiteBuilder, error) {
	base, err := newBipartite(RuleFixedIndegree, sources, targets, third, spec, syns, env)
	if err != nil {
		return nil, err
	}
	k, err := spec.RequireInt(KeyIndegree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", RuleFixedIndegree, ErrBadParameter, err)
	}
	if err = checkDegree(base, RuleFixedIndegree, k, sources, targets); err != nil {
		return nil, err
	}

	return &fixedIndegree{bipartite: base, indegree: k}, nil
}

// checkDegree runs the validation shared by the fixed-degree rules: the
// partner pool must be able to supply k distinct-enough partners to every
// unit.
func checkDegree(b *bipartite, rule string, k int, pool, units nodes.Collection) error {
	if k < 0 {
		return fmt.Errorf("%s: degree %d < 0: %w", rule, k, ErrBadParameter)
	}
	if err := b.rejectSymmetric(); err != nil {
		return err
	}
	if err := b.rejectArrays(); err != nil {
		return err
	}
	if k == 0 || units.Size() == 0 {
		return nil
	}
	m := b.minEligible(pool, units)
	if m <= 0 {
		return fmt.Errorf("%s: degree %d with no eligible partner: %w", rule, k, ErrInfeasible)
	}
	if !b.multapses && k > m {
		return fmt.Errorf("%s: degree %d > %d eligible partners without multapses: %w",
			rule, k, m, ErrInfeasible)
	}

	return nil
}

// Execute implements BipartiteBuilder.
func (b *fixedIndegree) Execute(ctx context.Context) (Stats, error) {
	return b.run(ctx, b.generate)
}

// generate draws indegree sources for each owned target.
// Complexity: O(indegree) expected draws per owned target.
func (b *fixedIndegree) generate(ctx context.Context, w *Worker, p pass) error {
	if b.indegree == 0 {
		return nil
	}

	return b.eachTarget(ctx, w, p, func(_ int, target uint64) error {
		r := w.unitStream(rng.RoleTarget, target)

		return b.drawPartners(w, r, b.indegree, p.sources, target, func(ordinal, _ int, source uint64) error {
			return b.connect(ctx, w, source, target, ordinal, 0)
		})
	})
}
