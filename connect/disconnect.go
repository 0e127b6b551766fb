// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// disconnect.go - removal of existing connections.
//
// Contract:
//   - Only the deterministic rules one_to_one and all_to_all describe a
//     disconnection; any other rule is ErrUnsupported.
//   - Each enumerated pair loses one connection of the requested model,
//     removed by the VP owning the target, which is where it was stored.
//   - All local VPs are checked before any connection is removed: one pair
//     without a matching connection fails the call with ErrNotConnected
//     and leaves the installer untouched on this rank.
//   - The installer must implement synapse.Remover.

package connect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/partition"
	"github.com/katalvlaran/lvconnect/synapse"
)

// Disconnect removes, for every pair that the one_to_one or all_to_all rule
// in spec enumerates between sources and targets, one connection of the
// model named by syn (static_synapse when syn is nil). spec may also carry
// allow_autapses=false to skip pairs whose endpoints coincide.
func (m *Manager) Disconnect(
	ctx context.Context,
	sources, targets nodes.Collection,
	spec, syn *conf.Dict,
) (res Result, err error) {
	m.calls.Add(1)
	res.RunID = uuid.NewString()
	log := m.cfg.logger.With(slog.String("run_id", res.RunID))
	ctx, span := m.tracer.Start(ctx, methodDisconnect, trace.WithAttributes(
		attribute.String("lvconnect.run_id", res.RunID),
		attribute.Int("lvconnect.rank", m.cfg.layout.Rank),
	))
	defer span.End()
	defer func() { recordFailure(span, log, res.Rule, err) }()

	// 1) Arguments.
	remover, ok := m.cfg.installer.(synapse.Remover)
	if !ok {
		return res, fmt.Errorf("%s: installer %T cannot remove: %w", methodDisconnect, m.cfg.installer, ErrUnsupported)
	}
	if sources == nil || targets == nil {
		return res, fmt.Errorf("%s: %w", methodDisconnect, ErrMissingCollection)
	}
	if spec == nil {
		return res, fmt.Errorf("%s: %w", methodDisconnect, ErrMissingRule)
	}
	plan, err := m.disconnectPlan(sources, targets, spec, syn)
	if err != nil {
		return res, err
	}
	res.Rule = plan.rule
	for _, c := range []nodes.Collection{sources, targets} {
		if err = c.Valid(); err != nil {
			return res, fmt.Errorf("%s: %w: %w", methodDisconnect, ErrInvalidCollection, err)
		}
	}

	// 2) Pairs per local VP, checked against the installer.
	vps := m.cfg.layout.LocalVPs()
	pairs := make([][]synapse.Pair, len(vps))
	g, gctx := errgroup.WithContext(ctx)
	for i, vp := range vps {
		g.Go(func() error {
			ps, err := plan.pairs(gctx, m.cfg.layout, vp)
			if err != nil {
				return err
			}
			if missing := remover.Missing(vp, plan.model, ps); len(missing) > 0 {
				return fmt.Errorf("%s(%s): %d pairs on vp %d, first %d->%d: %w", methodDisconnect, plan.rule,
					len(missing), vp, missing[0].Source, missing[0].Target, ErrNotConnected)
			}
			pairs[i] = ps

			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return res, err
	}

	// 3) Removal.
	for i, vp := range vps {
		res.Removed += int64(remover.Remove(vp, plan.model, pairs[i]))
	}
	connectionsRemoved.WithLabelValues(res.Rule).Add(float64(res.Removed))
	span.SetAttributes(attribute.String("lvconnect.rule", res.Rule), attribute.Int64("lvconnect.removed", res.Removed))
	log.Info("disconnected", slog.String("rule", res.Rule), slog.Int64("removed", res.Removed))

	return res, nil
}

// disconnection is a validated Disconnect request.
type disconnection struct {
	rule             string
	model            string
	autapses         bool
	sources, targets nodes.Collection
}

// disconnectPlan reads spec and syn, rejecting unread keys in both.
func (m *Manager) disconnectPlan(sources, targets nodes.Collection, spec, syn *conf.Dict) (disconnection, error) {
	spec = spec.Clone()
	rule, err := ruleName(methodDisconnect, spec)
	if err != nil {
		return disconnection{}, err
	}
	d := disconnection{rule: rule, model: synapse.DefaultModel, sources: sources, targets: targets}
	switch rule {
	case RuleOneToOne:
		if sources.Size() != targets.Size() {
			return d, fmt.Errorf("%s(%s): |S|=%d, |T|=%d: %w", methodDisconnect, rule,
				sources.Size(), targets.Size(), ErrSizeMismatch)
		}
	case RuleAllToAll:
	default:
		return d, fmt.Errorf("%s: rule %q: %w", methodDisconnect, rule, ErrUnsupported)
	}
	if d.autapses, err = spec.Bool(KeyAllowAutapses, defaultAllowAutapses); err != nil {
		return d, fmt.Errorf("%s: %w: %w", methodDisconnect, ErrBadParameter, err)
	}
	if extra := spec.Unaccessed(); len(extra) > 0 {
		return d, fmt.Errorf("%s(%s): %v: %w", methodDisconnect, rule, extra, ErrUnknownParameter)
	}

	if syn != nil {
		syn = syn.Clone()
		if d.model, err = syn.String(synapse.ParamModel, synapse.DefaultModel); err != nil {
			return d, fmt.Errorf("%s: %w: %w", methodDisconnect, synapse.ErrBadParameter, err)
		}
		if extra := syn.Unaccessed(); len(extra) > 0 {
			return d, fmt.Errorf("%s: synapse keys %v: %w", methodDisconnect, extra, ErrUnknownParameter)
		}
	}
	if _, err = m.cfg.catalog.Lookup(d.model); err != nil {
		return d, fmt.Errorf("%s: %w", methodDisconnect, err)
	}

	return d, nil
}

// pairs enumerates the pairs whose target vp owns.
// Complexity: O(owned) for one_to_one, O(|S|·owned) for all_to_all.
func (d disconnection) pairs(ctx context.Context, layout nodes.Layout, vp int) ([]synapse.Pair, error) {
	var out []synapse.Pair
	add := func(source, target uint64) {
		if source != target || d.autapses {
			out = append(out, synapse.Pair{Source: source, Target: target})
		}
	}
	err := partition.Each(d.targets, layout, vp, func(pos int, target uint64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.rule == RuleOneToOne {
			source, err := d.sources.At(pos)
			if err != nil {
				return err
			}
			add(source, target)

			return nil
		}

		return eachMember(d.sources, func(_ int, source uint64) error {
			add(source, target)
			return nil
		})
	})

	return out, err
}
