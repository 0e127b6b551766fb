// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// options.go - functional options for the connection manager.
//
// Contract:
//   - Options are functional (type Option func(*managerConfig)).
//   - Option constructors panic on meaningless inputs (nil collaborators,
//     non-positive factors). Runs themselves never panic.
//   - Determinism is explicit: the master seed is set with WithSeed and
//     must be the same on every rank of a run.

package connect

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/synapse"
)

// Option customizes a Manager.
type Option func(*managerConfig)

// WithLayout sets the process/thread grid and this process's rank.
// The layout is validated by NewManager.
func WithLayout(l nodes.Layout) Option {
	return func(c *managerConfig) {
		c.layout = l
	}
}

// WithSeed sets the master seed of all random streams.
func WithSeed(seed uint64) Option {
	return func(c *managerConfig) {
		c.seed = seed
	}
}

// WithRegistry replaces the default, frozen registry of built-in rules.
func WithRegistry(r *Registry) Option {
	if r == nil {
		panic("connect: WithRegistry(nil)")
	}
	return func(c *managerConfig) {
		c.registry = r
	}
}

// WithStore sets the installation collaborator. Several managers may share
// one installer to emulate several processes.
func WithStore(in synapse.Installer) Option {
	if in == nil {
		panic("connect: WithStore(nil)")
	}
	return func(c *managerConfig) {
		c.installer = in
	}
}

// WithCatalog sets the synapse model catalog used to parse synapse
// specifications.
func WithCatalog(cat *synapse.Catalog) Option {
	if cat == nil {
		panic("connect: WithCatalog(nil)")
	}
	return func(c *managerConfig) {
		c.catalog = cat
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("connect: WithLogger(nil)")
	}
	return func(c *managerConfig) {
		c.logger = l
	}
}

// WithRetryFactor scales the redraw ceiling of the rejection samplers.
// Panics if f < 1.
func WithRetryFactor(f int) Option {
	if f < 1 {
		panic("connect: WithRetryFactor(f<1)")
	}
	return func(c *managerConfig) {
		c.retryFactor = f
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider; the global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	if tp == nil {
		panic("connect: WithTracerProvider(nil)")
	}
	return func(c *managerConfig) {
		c.tracerProvider = tp
	}
}
