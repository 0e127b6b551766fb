// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// config.go - resolved manager configuration and its defaults.
//
// Defaults:
//   - layout      = nodes.SingleLayout (one process, one thread)
//   - seed        = DefaultSeed
//   - registry    = DefaultRegistry() (built-in rules, frozen)
//   - installer   = a fresh *synapse.Store
//   - catalog     = synapse.NewCatalog() (built-in models)
//   - logger      = discard
//   - retryFactor = DefaultRetryFactor
//   - tracer      = otel global provider

package connect

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/synapse"
)

const tracerName = "github.com/katalvlaran/lvconnect/connect"

// managerConfig is the single source of truth for manager knobs. It is
// resolved once by NewManager and never mutated afterwards.
type managerConfig struct {
	layout         nodes.Layout
	seed           uint64
	registry       *Registry
	installer      synapse.Installer
	catalog        *synapse.Catalog
	logger         *slog.Logger
	retryFactor    int
	tracerProvider trace.TracerProvider
}

// newManagerConfig applies opts in order over the defaults.
func newManagerConfig(opts ...Option) managerConfig {
	cfg := managerConfig{
		layout:      nodes.SingleLayout,
		seed:        DefaultSeed,
		retryFactor: DefaultRetryFactor,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	// collaborators are built lazily so that overriding them costs nothing
	if cfg.registry == nil {
		cfg.registry = DefaultRegistry()
	}
	if cfg.installer == nil {
		cfg.installer = synapse.NewStore()
	}
	if cfg.catalog == nil {
		cfg.catalog = synapse.NewCatalog()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}

	return cfg
}
