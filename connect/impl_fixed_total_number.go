// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// impl_fixed_total_number.go - exactly N edges between S and T.
//
// Algorithm:
//   1) Target i has e_i eligible sources: |S|, less one when autapses are
//      off and the target is itself a source. N is split over the targets by
//      a multinomial draw with probabilities e_i/E, E = sum(e_i), realized
//      as sequential binomials on one global stream:
//        c_i ~ Binomial(N - sum(c_<i), e_i / (E - sum(e_<i))).
//      Every VP computes the same split without communicating. Targets with
//      e_i = 0 receive nothing, so every eligible pair is equally likely.
//   2) Each owned target draws its c_i sources from its own stream.
//
// Contract:
//   - allow_multapses must be true (ErrUnsupported otherwise).
//   - N > 0 with no eligible pair is ErrInfeasible.
//   - Arrays and make_symmetric are not supported.
//
// Complexity: O(|T|) per VP for the split, O(c_i) per owned target.

package connect

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/rng"
	"github.com/katalvlaran/lvconnect/synapse"
)

type fixedTotalNumber struct {
	*bipartite
	total int
	pairs int64 // eligible (source, target) pairs
}

func newFixedTotalNumber(
	sources, targets nodes.Collection,
	third ThirdFactorBuilder,
	spec *conf.Dict,
	syns []synapse.Spec,
	env Env,
) (BipartiteBuilder, error) {
	base, err := newBipartite(RuleFixedTotalNumber, sources, targets, third, spec, syns, env)
	if err != nil {
		return nil, err
	}
	n, err := spec.RequireInt(KeyTotal)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", RuleFixedTotalNumber, ErrBadParameter, err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%s: N=%d < 0: %w", RuleFixedTotalNumber, n, ErrBadParameter)
	}
	if !base.multapses {
		return nil, fmt.Errorf("%s: %s=false: %w", RuleFixedTotalNumber, KeyAllowMultapses, ErrUnsupported)
	}
	if err = base.rejectSymmetric(); err != nil {
		return nil, err
	}
	if err = base.rejectArrays(); err != nil {
		return nil, err
	}

	b := &fixedTotalNumber{bipartite: base, total: n}
	if n > 0 {
		if b.pairs, err = b.eligiblePairs(); err != nil {
			return nil, err
		}
		if b.pairs == 0 {
			return nil, fmt.Errorf("%s: N=%d with no eligible pair: %w", RuleFixedTotalNumber, n, ErrInfeasible)
		}
	}

	return b, nil
}

// eligiblePairs sums the eligible source counts of all targets.
// Complexity: O(|T|) membership tests.
func (b *fixedTotalNumber) eligiblePairs() (int64, error) {
	var sum int64
	err := eachMember(b.targets, func(_ int, target uint64) error {
		sum += int64(b.eligible(b.sources, target))
		return nil
	})

	return sum, err
}

// Execute implements BipartiteBuilder.
func (b *fixedTotalNumber) Execute(ctx context.Context) (Stats, error) {
	return b.run(ctx, b.generate)
}

func (b *fixedTotalNumber) generate(ctx context.Context, w *Worker, p pass) error {
	if b.total == 0 {
		return nil
	}
	global := b.env.Streams.Stream(rng.RoleGlobal)
	remaining, weight := b.total, b.pairs

	return eachMember(p.targets, func(_ int, target uint64) error {
		// 1) This target's share of the remaining edges.
		if remaining == 0 {
			return nil
		}
		e := int64(b.eligible(p.sources, target))
		if e == 0 {
			return nil
		}
		count := rng.Binomial(global, remaining, float64(e)/float64(weight))
		remaining -= count
		weight -= e
		if count == 0 || b.env.Layout.VPOf(target) != w.vp {
			return nil
		}

		// 2) Its sources, drawn by the owning VP.
		if err := ctx.Err(); err != nil {
			return err
		}
		r := w.unitStream(rng.RoleTarget, target)

		return b.drawPartners(w, r, count, p.sources, target, func(ordinal, _ int, source uint64) error {
			return b.connect(ctx, w, source, target, ordinal, 0)
		})
	})
}
