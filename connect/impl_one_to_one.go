// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// impl_one_to_one.go - the i-th source to the i-th target.
//
// Contract:
//   - |S| == |T| (else ErrSizeMismatch).
//   - Array parameters have |S| entries, indexed by pair position.
//   - Without autapses, positions holding the same id are skipped.
//   - make_symmetric reverses every non-autapse pair.

package connect

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/synapse"
)

type oneToOne struct {
	*bipartite
}

func newOneToOne(
	sources, targets nodes.Collection,
	third ThirdFactorBuilder,
	spec *conf.Dict,
	syns []synapse.Spec,
	env Env,
) (BipartiteBuilder, error) {
	base, err := newBipartite(RuleOneToOne, sources, targets, third, spec, syns, env)
	if err != nil {
		return nil, err
	}
	if sources.Size() != targets.Size() {
		return nil, fmt.Errorf("%s: |S|=%d, |T|=%d: %w",
			RuleOneToOne, sources.Size(), targets.Size(), ErrSizeMismatch)
	}
	if base.arrays {
		if err = base.checkArrays(sources.Size()); err != nil {
			return nil, err
		}
	}
	// identical collections pair every node with itself only
	base.reversePass = base.symmetric && !nodes.Equal(sources, targets)

	return &oneToOne{bipartite: base}, nil
}

// Execute implements BipartiteBuilder.
func (b *oneToOne) Execute(ctx context.Context) (Stats, error) {
	return b.run(ctx, b.generate)
}

// generate pairs each owned target with the source at its position.
// Complexity: O(owned targets).
func (b *oneToOne) generate(ctx context.Context, w *Worker, p pass) error {
	return b.eachTarget(ctx, w, p, func(pos int, target uint64) error {
		source, err := p.sources.At(pos)
		if err != nil {
			return err
		}
		if source == target && (!b.autapses || p.reverse) {
			return nil
		}

		return b.connect(ctx, w, source, target, 0, pos)
	})
}
