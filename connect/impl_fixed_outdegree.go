// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// impl_fixed_outdegree.go - exactly k targets per source.
//
// Contract:
//   - Every source sends exactly k edges, targets drawn uniformly from a
//     stream keyed by the source.
//   - Ownership stays with the target: every VP replays the draws of every
//     source and installs only the edges whose target it owns. The replay
//     costs O(|S| * k) per VP and needs no communication.
//   - Feasibility mirrors fixed_indegree with the roles swapped.

package connect

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/rng"
	"github.com/katalvlaran/lvconnect/synapse"
)

type fixedOutdegree struct {
	*bipartite
	outdegree int
}

func newFixedOutdegree(
	sources, targets nodes.Collection,
	third ThirdFactorBuilder,
	spec *conf.Dict,
	syns []synapse.Spec,
	env Env,
) (BipartiteBuilder, error) {
	base, err := newBipartite(RuleFixedOutdegree, sources, targets, third, spec, syns, env)
	if err != nil {
		return nil, err
	}
	k, err := spec.RequireInt(KeyOutdegree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", RuleFixedOutdegree, ErrBadParameter, err)
	}
	if err = checkDegree(base, RuleFixedOutdegree, k, targets, sources); err != nil {
		return nil, err
	}

	return &fixedOutdegree{bipartite: base, outdegree: k}, nil
}

// Execute implements BipartiteBuilder.
func (b *fixedOutdegree) Execute(ctx context.Context) (Stats, error) {
	return b.run(ctx, b.generate)
}

// generate replays the target draws of every source and keeps the owned
// targets.
// Complexity: O(|S|·outdegree) draws per VP.
func (b *fixedOutdegree) generate(ctx context.Context, w *Worker, p pass) error {
	if b.outdegree == 0 {
		return nil
	}
	layout := b.env.Layout

	return eachMember(p.sources, func(_ int, source uint64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		// 1) Replay the source's draws.
		r := w.unitStream(rng.RoleSource, source)
		redraws := w.stats.Redraws
		err := b.drawPartners(w, r, b.outdegree, p.targets, source, func(ordinal, _ int, target uint64) error {
			if layout.VPOf(target) != w.vp {
				return nil
			}

			return b.connect(ctx, w, source, target, ordinal, 0)
		})
		// 2) Redraws are replayed everywhere; only the source's VP reports them.
		if layout.VPOf(source) != w.vp {
			w.stats.Redraws = redraws
		}

		return err
	})
}
