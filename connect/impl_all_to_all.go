// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// impl_all_to_all.go - every source to every target.
//
// Contract:
//   - Each owned target receives one edge from every source, in source
//     order; without autapses the target itself is skipped.
//   - Array parameters have |T|*|S| entries, row-major target x source.
//   - make_symmetric adds the reverse pass unless the forward set is
//     already symmetric (identical collections, no arrays).
//
// Complexity: O(|S| * owned targets) per VP.

package connect

import (
	"context"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/synapse"
)

type allToAll struct {
	*bipartite
}

func newAllToAll(
	sources, targets nodes.Collection,
	third ThirdFactorBuilder,
	spec *conf.Dict,
	syns []synapse.Spec,
	env Env,
) (BipartiteBuilder, error) {
	base, err := newBipartite(RuleAllToAll, sources, targets, third, spec, syns, env)
	if err != nil {
		return nil, err
	}
	if base.arrays {
		if err = base.checkArrays(sources.Size() * targets.Size()); err != nil {
			return nil, err
		}
	}
	base.reversePass = base.symmetric && !(nodes.Equal(sources, targets) && !base.arrays)

	return &allToAll{bipartite: base}, nil
}

// Execute implements BipartiteBuilder.
func (b *allToAll) Execute(ctx context.Context) (Stats, error) {
	return b.run(ctx, b.generate)
}

// generate connects every source of p to each owned target.
// Complexity: O(|S|) per owned target.
func (b *allToAll) generate(ctx context.Context, w *Worker, p pass) error {
	nSrc := b.sources.Size()

	return b.eachTarget(ctx, w, p, func(tpos int, target uint64) error {
		ordinal := 0

		return eachMember(p.sources, func(spos int, source uint64) error {
			if source == target && (!b.autapses || p.reverse) {
				return nil
			}
			// index of the forward edge in the row-major target x source array
			idx := tpos*nSrc + spos
			if p.reverse {
				idx = spos*nSrc + tpos
			}
			if err := b.connect(ctx, w, source, target, ordinal, idx); err != nil {
				return err
			}
			ordinal++

			return nil
		})
	})
}
