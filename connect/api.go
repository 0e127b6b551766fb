// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// api.go - builder interfaces, factories and the per-run environment.
//
// Contract:
//   - A BipartiteBuilder is bound at construction to exactly one
//     (sources, targets, third, spec, syns) tuple and executed once.
//   - A ThirdFactorBuilder is owned by the bipartite builder it was passed to
//     and is invoked once per generated primary edge, from the goroutine of
//     the VP generating that edge.
//   - Factories read every key they understand from spec; the registry
//     rejects the keys they leave unread.

package connect

import (
	"context"
	"log/slog"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/rng"
	"github.com/katalvlaran/lvconnect/synapse"
)

// Stats summarizes one executed builder on this process.
type Stats struct {
	Installed         int64   // connections installed, all channels
	Edges             int64   // primary edges generated
	Redraws           int64   // draws rejected by the autapse/multapse policy
	MediationFailures []error // third-factor edges that could not be installed
}

// BipartiteBuilder generates edges between a source and a target collection.
type BipartiteBuilder interface {
	// Rule returns the registered rule name.
	Rule() string
	// Execute generates and installs the edges owned by the local VPs.
	Execute(ctx context.Context) (Stats, error)
}

// ThirdFactorBuilder attaches mediator edges to primary edges. It is bound
// to (primary targets, third collection).
type ThirdFactorBuilder interface {
	// Rule returns the registered rule name.
	Rule() string
	// Connect is called for the primary edge source -> target with its
	// per-target ordinal. It must not assume that w owns target.
	Connect(ctx context.Context, w *Worker, source, target uint64, ordinal int) error
}

// BipartiteFactory constructs a bound bipartite builder. third may be nil.
type BipartiteFactory func(
	sources, targets nodes.Collection,
	third ThirdFactorBuilder,
	spec *conf.Dict,
	syns []synapse.Spec,
	env Env,
) (BipartiteBuilder, error)

// ThirdFactorFactory constructs a bound third-factor builder.
type ThirdFactorFactory func(
	sources, targets nodes.Collection,
	spec *conf.Dict,
	syns []synapse.Spec,
	env Env,
) (ThirdFactorBuilder, error)

// Env carries what a builder needs from its process: the VP layout, the
// random streams of this run, the installation collaborator and a logger.
type Env struct {
	Layout      nodes.Layout
	Streams     rng.Streams
	Installer   synapse.Installer
	Logger      *slog.Logger
	RetryFactor int
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = slog.New(slog.DiscardHandler)
	}
	if e.RetryFactor <= 0 {
		e.RetryFactor = DefaultRetryFactor
	}
	if e.Layout.NumProcesses == 0 {
		e.Layout = nodes.SingleLayout
	}

	return e
}
