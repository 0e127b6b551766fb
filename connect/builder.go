// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// builder.go - behavior shared by every bipartite rule.
//
// Contract:
//   - The edge source -> target is generated and installed by the VP owning
//     target. Each local VP runs in its own goroutine (errgroup); workers
//     share nothing but the installer.
//   - Random draws come from streams keyed by the unit they belong to, so
//     the edge set does not depend on the process/thread grid.
//   - make_symmetric is realized as a second pass with source and target
//     roles swapped. Autapses are never reversed.
//   - Collections are checked for validity before and after enumeration.
//
// Ordinals:
//   Every generated edge carries the ordinal of its draw within its unit
//   (the target for target-driven rules, the source for fixed_outdegree).
//   It keys the parameter stream of the edge and drives round_robin.

package connect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"math/rand/v2"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/partition"
	"github.com/katalvlaran/lvconnect/synapse"
)

// pass is one enumeration over (sources, targets). The reverse pass of
// make_symmetric swaps the two collections.
type pass struct {
	sources, targets nodes.Collection
	reverse          bool
}

// generateFunc produces the edges of one pass owned by w.
type generateFunc func(ctx context.Context, w *Worker, p pass) error

// bipartite holds the bound state common to all rules.
type bipartite struct {
	rule             string
	sources, targets nodes.Collection
	third            ThirdFactorBuilder
	syns             []synapse.Spec
	env              Env

	autapses  bool
	multapses bool
	symmetric bool
	selection string

	randomParams bool // some channel draws parameters per edge
	arrays       bool // some channel has per-edge arrays
	pairKeyed    bool // parameter streams keyed by the unordered pair
	reversePass  bool

	executed atomic.Bool
}

// newBipartite validates the arguments and reads the common flags.
// Complexity: O(channels), plus O(parts) for the overlap test of
// make_symmetric.
func newBipartite(
	rule string,
	sources, targets nodes.Collection,
	third ThirdFactorBuilder,
	spec *conf.Dict,
	syns []synapse.Spec,
	env Env,
) (*bipartite, error) {
	if sources == nil || targets == nil {
		return nil, fmt.Errorf("%s: %w", rule, ErrMissingCollection)
	}
	if len(syns) == 0 {
		return nil, fmt.Errorf("%s: %w", rule, ErrNoSynapseSpec)
	}
	if env.Installer == nil {
		return nil, fmt.Errorf("%s: nil installer: %w", rule, ErrBadParameter)
	}

	b := &bipartite{
		rule:    rule,
		sources: sources,
		targets: targets,
		third:   third,
		syns:    syns,
		env:     env,
	}

	// 1) Common flags.
	var err error
	if b.autapses, err = spec.Bool(KeyAllowAutapses, defaultAllowAutapses); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", rule, ErrBadParameter, err)
	}
	if b.multapses, err = spec.Bool(KeyAllowMultapses, defaultAllowMultapses); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", rule, ErrBadParameter, err)
	}
	if b.symmetric, err = spec.Bool(KeyMakeSymmetric, defaultMakeSymmetric); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", rule, ErrBadParameter, err)
	}
	if b.selection, err = spec.String(KeySynSelection, SelectAll); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", rule, ErrBadParameter, err)
	}
	switch b.selection {
	case SelectAll, SelectRoundRobin, SelectRandom:
	default:
		return nil, fmt.Errorf("%s: syn_selection %q: %w", rule, b.selection, ErrBadParameter)
	}

	// 2) What the channels need per edge.
	for _, s := range syns {
		b.randomParams = b.randomParams || s.Random()
		b.arrays = b.arrays || s.HasArrays()
	}

	// 3) make_symmetric constraints.
	if b.symmetric {
		if b.selection != SelectAll {
			return nil, fmt.Errorf("%s: make_symmetric with syn_selection %q: %w", rule, b.selection, ErrUnsupported)
		}
		if !nodes.Equal(sources, targets) && nodes.Overlaps(sources, targets) && !b.multapses {
			return nil, fmt.Errorf("%s: make_symmetric on overlapping collections requires %s: %w",
				rule, KeyAllowMultapses, ErrUnsupported)
		}
		b.pairKeyed = true
	}

	return b, nil
}

// Rule implements BipartiteBuilder.
func (b *bipartite) Rule() string { return b.rule }

// rejectSymmetric is called by rules that cannot honor make_symmetric.
func (b *bipartite) rejectSymmetric() error {
	if b.symmetric {
		return fmt.Errorf("%s: %s: %w", b.rule, KeyMakeSymmetric, ErrUnsupported)
	}

	return nil
}

// rejectArrays is called by rules without a defined edge order.
func (b *bipartite) rejectArrays() error {
	if b.arrays {
		return fmt.Errorf("%s: array parameters: %w", b.rule, synapse.ErrBadParameter)
	}

	return nil
}

// checkArrays verifies every array parameter has n entries.
func (b *bipartite) checkArrays(n int) error {
	for ch, s := range b.syns {
		if err := s.CheckArrayLen(n); err != nil {
			return fmt.Errorf("%s: channel %d: %w", b.rule, ch, err)
		}
	}

	return nil
}

// eligible returns how many members of pool may pair with self.
func (b *bipartite) eligible(pool nodes.Collection, self uint64) int {
	n := pool.Size()
	if !b.autapses && pool.Contains(self) {
		n--
	}

	return n
}

// minEligible is the smallest eligible count over all members of units.
func (b *bipartite) minEligible(pool, units nodes.Collection) int {
	n := pool.Size()
	if !b.autapses && nodes.Overlaps(pool, units) {
		n--
	}

	return n
}

// maxDraws is the redraw ceiling for k accepted draws among m candidates:
// RetryFactor * (k+1) * (1 + ceil(log2(m+1))).
// Complexity: O(1).
func (b *bipartite) maxDraws(k, m int) int {
	return b.env.RetryFactor * (k + 1) * (1 + bits.Len(uint(m)))
}

// run executes gen for each pass on every local VP.
// Complexity: one goroutine per local VP; time is that of gen.
func (b *bipartite) run(ctx context.Context, gen generateFunc) (Stats, error) {
	// 1) Single use and validity gate.
	if !b.executed.CompareAndSwap(false, true) {
		return Stats{}, fmt.Errorf("%s(%s): %w", methodExecute, b.rule, ErrAlreadyExecuted)
	}
	if err := b.valid(); err != nil {
		return Stats{}, err
	}

	// 2) Passes: forward, plus the swapped one for make_symmetric.
	passes := []pass{{sources: b.sources, targets: b.targets}}
	if b.reversePass {
		passes = append(passes, pass{sources: b.targets, targets: b.sources, reverse: true})
	}

	// 3) Fan out over the local VPs.
	vps := b.env.Layout.LocalVPs()
	workers := make([]*Worker, len(vps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(vps))
	for i, vp := range vps {
		w := newWorker(vp, b.env)
		workers[i] = w
		g.Go(func() error {
			for _, p := range passes {
				if err := gen(gctx, w, p); err != nil {
					return fmt.Errorf("%s(%s) vp %d: %w", methodExecute, b.rule, w.vp, err)
				}
			}
			b.env.Logger.Debug("vp done", slog.String("rule", b.rule), slog.Int("vp", w.vp),
				slog.Int64("edges", w.stats.Edges))

			return nil
		})
	}
	err := g.Wait()

	// 4) Aggregate, then re-check validity.
	var st Stats
	for _, w := range workers {
		st.Installed += w.stats.Installed
		st.Edges += w.stats.Edges
		st.Redraws += w.stats.Redraws
		st.MediationFailures = append(st.MediationFailures, w.stats.MediationFailures...)
	}
	if err != nil {
		return st, err
	}

	return st, b.valid()
}

// valid checks every bound collection, the third one included.
func (b *bipartite) valid() error {
	colls := []nodes.Collection{b.sources, b.targets}
	if v, ok := b.third.(interface{ Collection() nodes.Collection }); ok {
		colls = append(colls, v.Collection())
	}
	for _, c := range colls {
		if err := c.Valid(); err != nil {
			return fmt.Errorf("%s: %w: %w", b.rule, ErrInvalidCollection, err)
		}
	}

	return nil
}

// eachTarget calls fn for every target of p owned by w.
// Complexity: O(parts + owned).
func (b *bipartite) eachTarget(ctx context.Context, w *Worker, p pass, fn func(pos int, id uint64) error) error {
	return partition.Each(p.targets, b.env.Layout, w.vp, func(pos int, id uint64) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		return fn(pos, id)
	})
}

// eachMember calls fn for every member of c in order, stopping on error.
// Complexity: O(|c|).
func eachMember(c nodes.Collection, fn func(pos int, id uint64) error) error {
	for _, part := range c.Parts() {
		for k := 0; k < part.Len; k++ {
			if err := fn(part.Offset+k, part.At(k)); err != nil {
				return err
			}
		}
	}

	return nil
}

// connect installs the edge source -> target on every selected channel and
// hands it to the third-factor builder. idx indexes array parameters.
// Complexity: O(channels) installs plus the third-factor call.
func (b *bipartite) connect(ctx context.Context, w *Worker, source, target uint64, ordinal, idx int) error {
	// 1) Parameter stream of the edge, only when something draws from it.
	var r *rand.Rand
	if b.randomParams || b.selection == SelectRandom {
		if b.pairKeyed {
			lo, hi := min(source, target), max(source, target)
			r = w.edgeStream(lo, hi)
		} else {
			r = w.edgeStream(source, target, uint64(ordinal))
		}
	}

	// 2) Channel selection and installation.
	switch b.selection {
	case SelectRoundRobin:
		ch := ordinal % len(b.syns)
		if err := w.Install(source, target, ch, b.syns[ch], idx, r); err != nil {
			return err
		}
	case SelectRandom:
		ch := r.IntN(len(b.syns))
		if err := w.Install(source, target, ch, b.syns[ch], idx, r); err != nil {
			return err
		}
	default:
		for ch, s := range b.syns {
			if err := w.Install(source, target, ch, s, idx, r); err != nil {
				return err
			}
		}
	}
	w.stats.Edges++

	// 3) Third factor; failures are recorded, not returned.
	if b.third == nil {
		return nil
	}
	if err := b.third.Connect(ctx, w, source, target, ordinal); err != nil {
		if !errors.Is(err, ErrMediationFailed) {
			err = fmt.Errorf("%w: %w", ErrMediationFailed, err)
		}
		w.stats.MediationFailures = append(w.stats.MediationFailures, err)
		b.env.Logger.Warn("third-factor edge not installed",
			slog.String("rule", b.third.Rule()), slog.Int("vp", w.vp),
			slog.Uint64("source", source), slog.Uint64("target", target),
			slog.Any("error", err))
	}

	return nil
}

// drawPartners draws k members of pool for the unit self using r, rejecting
// autapses and, without multapses, repeats. fn receives each accepted
// member with its ordinal. Rejections count as redraws; exceeding maxDraws
// fails with ErrRetryExhausted.
// Complexity: expected O(k·m/(m-k+1)) draws without multapses, O(k) with.
func (b *bipartite) drawPartners(
	w *Worker,
	r *rand.Rand,
	k int,
	pool nodes.Collection,
	self uint64,
	fn func(ordinal int, pos int, id uint64) error,
) error {
	// 1) Ceiling and repeat tracking.
	n := pool.Size()
	limit := b.maxDraws(k, b.eligible(pool, self))
	var seen map[int]struct{}
	if !b.multapses {
		seen = make(map[int]struct{}, k)
	}

	// 2) Draw until k partners are accepted or the ceiling is hit.
	for accepted, draws := 0, 0; accepted < k; draws++ {
		if draws >= limit {
			return fmt.Errorf("unit %d: %d of %d partners after %d draws: %w",
				self, accepted, k, draws, ErrRetryExhausted)
		}
		pos := r.IntN(n)
		id, err := pool.At(pos)
		if err != nil {
			return err
		}
		if !b.autapses && id == self {
			w.stats.Redraws++
			continue
		}
		if seen != nil {
			if _, dup := seen[pos]; dup {
				w.stats.Redraws++
				continue
			}
			seen[pos] = struct{}{}
		}
		if err = fn(accepted, pos, id); err != nil {
			return err
		}
		accepted++
	}

	return nil
}
