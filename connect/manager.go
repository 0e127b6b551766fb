// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// manager.go - the entry points of the connection machinery.
//
// A Manager plays one rank of a run. Connect and ConnectTripartite are
// collective: every rank must issue the same calls in the same order with
// the same arguments, because each call derives its random streams from
// the master seed and the call's sequence number.
//
// Flow of one call:
//   1) validate collections and parse the synapse specifications,
//   2) create the third-factor builder (tripartite calls only),
//   3) create the bipartite builder through the registry,
//   4) execute it on the local VPs,
//   5) report: Result, metrics, span, log record.

package connect

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/rng"
	"github.com/katalvlaran/lvconnect/synapse"
)

// Result reports one connect call on this process.
type Result struct {
	RunID             string
	Rule              string
	ThirdRule         string // empty for bipartite calls
	Installed         int64
	Edges             int64
	Redraws           int64
	Removed           int64 // Disconnect only
	MediationFailures []error
}

// Manager executes connection specifications for one rank.
type Manager struct {
	cfg    managerConfig
	tracer trace.Tracer
	calls  atomic.Uint64
}

// NewManager resolves opts and validates the layout.
func NewManager(opts ...Option) (*Manager, error) {
	cfg := newManagerConfig(opts...)
	if err := cfg.layout.Validate(); err != nil {
		return nil, fmt.Errorf("NewManager: %w: %w", ErrBadParameter, err)
	}

	return &Manager{
		cfg:    cfg,
		tracer: cfg.tracerProvider.Tracer(tracerName),
	}, nil
}

// Layout returns the process/thread grid of this manager.
func (m *Manager) Layout() nodes.Layout { return m.cfg.layout }

// Installer returns the installation collaborator.
func (m *Manager) Installer() synapse.Installer { return m.cfg.installer }

// Catalog returns the synapse model catalog.
func (m *Manager) Catalog() *synapse.Catalog { return m.cfg.catalog }

// Rules returns the registered bipartite rule names.
func (m *Manager) Rules() []string { return m.cfg.registry.Rules() }

// ThirdRules returns the registered third-factor rule names.
func (m *Manager) ThirdRules() []string { return m.cfg.registry.ThirdRules() }

// Connect creates the edges described by spec from sources to targets.
// syns lists one synapse specification per channel.
func (m *Manager) Connect(
	ctx context.Context,
	sources, targets nodes.Collection,
	spec *conf.Dict,
	syns []*conf.Dict,
) (Result, error) {
	return m.connect(ctx, methodConnect, sources, targets, nil, spec, nil, syns)
}

// ConnectTripartite creates the primary edges described by spec and lets
// the third-factor builder described by thirdSpec attach mediators from
// third. syns must hold exactly [primary, third_in, third_out].
func (m *Manager) ConnectTripartite(
	ctx context.Context,
	sources, targets, third nodes.Collection,
	spec, thirdSpec *conf.Dict,
	syns []*conf.Dict,
) (Result, error) {
	if third == nil {
		return Result{}, fmt.Errorf("%s: third: %w", methodConnectTripartite, ErrMissingCollection)
	}
	if len(syns) != tripartiteChannels {
		return Result{}, fmt.Errorf("%s: %d synapse specifications, want %d: %w",
			methodConnectTripartite, len(syns), tripartiteChannels, ErrSynapseChannels)
	}

	return m.connect(ctx, methodConnectTripartite, sources, targets, third, spec, thirdSpec, syns)
}

func (m *Manager) connect(
	ctx context.Context,
	method string,
	sources, targets, third nodes.Collection,
	spec, thirdSpec *conf.Dict,
	syns []*conf.Dict,
) (res Result, err error) {
	call := m.calls.Add(1)
	res.RunID = uuid.NewString()
	log := m.cfg.logger.With(slog.String("run_id", res.RunID))

	ctx, span := m.tracer.Start(ctx, method, trace.WithAttributes(
		attribute.String("lvconnect.run_id", res.RunID),
		attribute.Int64("lvconnect.call", int64(call)),
		attribute.Int("lvconnect.rank", m.cfg.layout.Rank),
	))
	defer span.End()
	start := time.Now()

	defer func() { recordFailure(span, log, res.Rule, err) }()

	// 1) Arguments.
	if sources == nil || targets == nil {
		return res, fmt.Errorf("%s: %w", method, ErrMissingCollection)
	}
	if spec == nil {
		return res, fmt.Errorf("%s: %w", method, ErrMissingRule)
	}
	parsed, err := m.parseSyns(method, syns)
	if err != nil {
		return res, err
	}

	env := Env{
		Layout:      m.cfg.layout,
		Streams:     rng.New(m.cfg.seed).Derive(call),
		Installer:   m.cfg.installer,
		Logger:      log,
		RetryFactor: m.cfg.retryFactor,
	}

	// 2) Third-factor builder.
	var tb ThirdFactorBuilder
	primary := parsed
	if third != nil {
		if thirdSpec == nil {
			return res, fmt.Errorf("%s: third: %w", method, ErrMissingRule)
		}
		tb, err = m.cfg.registry.CreateThird(thirdSpec, targets, third, parsed[ChannelThirdIn:], env)
		if err != nil {
			return res, fmt.Errorf("%s: %w", method, err)
		}
		primary = parsed[:ChannelThirdIn]
		res.ThirdRule = tb.Rule()
	}

	// 3) Bipartite builder.
	b, err := m.cfg.registry.Create(spec, sources, targets, tb, primary, env)
	if err != nil {
		return res, fmt.Errorf("%s: %w", method, err)
	}
	res.Rule = b.Rule()
	span.SetAttributes(
		attribute.String("lvconnect.rule", res.Rule),
		attribute.Int("lvconnect.sources", sources.Size()),
		attribute.Int("lvconnect.targets", targets.Size()),
	)

	// 4) Execution.
	st, err := b.Execute(ctx)
	res.Installed, res.Edges, res.Redraws = st.Installed, st.Edges, st.Redraws
	res.MediationFailures = st.MediationFailures

	// 5) Reporting; partial runs are counted too.
	connectionsInstalled.WithLabelValues(res.Rule).Add(float64(st.Installed))
	policyRedraws.WithLabelValues(res.Rule).Add(float64(st.Redraws))
	if n := len(st.MediationFailures); n > 0 {
		mediationFailures.WithLabelValues(res.ThirdRule).Add(float64(n))
	}
	if err != nil {
		return res, fmt.Errorf("%s: %w", method, err)
	}
	elapsed := time.Since(start)
	connectDuration.WithLabelValues(res.Rule).Observe(elapsed.Seconds())
	span.SetAttributes(
		attribute.Int64("lvconnect.installed", res.Installed),
		attribute.Int("lvconnect.mediation_failures", len(res.MediationFailures)),
	)
	log.Info("connected",
		slog.String("rule", res.Rule),
		slog.Int64("edges", res.Edges),
		slog.Int64("installed", res.Installed),
		slog.Duration("elapsed", elapsed),
	)

	return res, nil
}

// recordFailure reports a failed call on its span, in metrics and in the log.
func recordFailure(span trace.Span, log *slog.Logger, rule string, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	connectErrors.WithLabelValues(errorClass(err)).Inc()
	log.Error("connect failed", slog.String("rule", rule), slog.Any("error", err))
}

// parseSyns validates the synapse specifications against the catalog.
func (m *Manager) parseSyns(method string, syns []*conf.Dict) ([]synapse.Spec, error) {
	if len(syns) == 0 {
		return nil, fmt.Errorf("%s: %w", method, ErrNoSynapseSpec)
	}
	out := make([]synapse.Spec, len(syns))
	for i, d := range syns {
		s, err := synapse.ParseSpec(d, m.cfg.catalog)
		if err != nil {
			return nil, fmt.Errorf("%s: channel %d: %w", method, i, err)
		}
		out[i] = s
	}

	return out, nil
}
