// SPDX-License-Identifier: MIT
// Package: lvconnect/network
//
// run.go - executing a description on an in-process grid.
//
// Every rank of the layout is played by its own connect.Manager in its own
// goroutine; all ranks share the installer, as separate processes would
// share a distributed store. Ranks issue the connection calls in
// description order, which is what keeps their random streams aligned.

package network

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/connect"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/synapse"
)

// Report summarizes an executed description over all ranks.
type Report struct {
	Seed        uint64             `yaml:"seed"`
	Layout      nodes.Layout       `yaml:"layout"`
	Populations []PopulationReport `yaml:"populations"`
	Connections []ConnectionReport `yaml:"connections"`
	Installed   int64              `yaml:"installed"`
}

// PopulationReport is the id block assigned to a population.
type PopulationReport struct {
	Name  string `yaml:"name"`
	Model string `yaml:"model"`
	First uint64 `yaml:"first"`
	Last  uint64 `yaml:"last"`
	Size  int    `yaml:"size"`
}

// ConnectionReport aggregates one connection call over all ranks.
type ConnectionReport struct {
	Name              string `yaml:"name"`
	Rule              string `yaml:"rule"`
	ThirdRule         string `yaml:"third_rule,omitempty"`
	Edges             int64  `yaml:"edges"`
	Installed         int64  `yaml:"installed"`
	MediationFailures int    `yaml:"mediation_failures,omitempty"`
}

// RunOption customizes Run.
type RunOption func(*runConfig)

type runConfig struct {
	logger  *slog.Logger
	tracer  trace.TracerProvider
	catalog *synapse.Catalog
}

// WithLogger sets the logger handed to every rank's manager.
func WithLogger(l *slog.Logger) RunOption {
	if l == nil {
		panic("network: WithLogger(nil)")
	}
	return func(c *runConfig) { c.logger = l }
}

// WithTracerProvider sets the tracer provider of every rank's manager.
func WithTracerProvider(tp trace.TracerProvider) RunOption {
	if tp == nil {
		panic("network: WithTracerProvider(nil)")
	}
	return func(c *runConfig) { c.tracer = tp }
}

// WithCatalog sets the synapse model catalog.
func WithCatalog(cat *synapse.Catalog) RunOption {
	if cat == nil {
		panic("network: WithCatalog(nil)")
	}
	return func(c *runConfig) { c.catalog = cat }
}

// Run creates the populations of d and executes its connections on every
// rank of d.Layout, installing into store.
func Run(ctx context.Context, d *Description, store synapse.Installer, opts ...RunOption) (*Report, error) {
	if d.Layout == (nodes.Layout{}) {
		withLayout := *d
		withLayout.Layout = nodes.SingleLayout
		d = &withLayout
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	// 1) Populations, in declaration order.
	reg := nodes.NewRegistry()
	pops := make(map[string]*nodes.Primitive, len(d.Populations))
	rep := &Report{Seed: d.Seed, Layout: d.Layout}
	for _, p := range d.Populations {
		prim, err := reg.Create(p.Model, p.Size)
		if err != nil {
			return nil, fmt.Errorf("Run: population %q: %w", p.Name, err)
		}
		pops[p.Name] = prim
		r := prim.Range()
		rep.Populations = append(rep.Populations, PopulationReport{
			Name: p.Name, Model: p.Model, First: r.First, Last: r.Last(), Size: p.Size,
		})
	}

	// 2) Collections of every call.
	calls := make([]call, len(d.Connections))
	for i, c := range d.Connections {
		cl, err := c.bind(pops)
		if err != nil {
			return nil, fmt.Errorf("Run: %s: %w", c.Label(i), err)
		}
		calls[i] = cl
	}

	// 3) One goroutine per rank.
	perRank := make([][]connect.Result, d.Layout.NumProcesses)
	g, gctx := errgroup.WithContext(ctx)
	for rank := range perRank {
		m, err := connect.NewManager(cfg.managerOptions(d, rank, store)...)
		if err != nil {
			return nil, fmt.Errorf("Run: rank %d: %w", rank, err)
		}
		g.Go(func() error {
			results := make([]connect.Result, len(calls))
			for i, cl := range calls {
				res, err := cl.exec(gctx, m)
				if err != nil {
					return fmt.Errorf("rank %d: %s: %w", rank, d.Connections[i].Label(i), err)
				}
				results[i] = res
			}
			perRank[rank] = results

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	// 4) Aggregation.
	for i, c := range d.Connections {
		cr := ConnectionReport{Name: c.Label(i)}
		for _, results := range perRank {
			res := results[i]
			cr.Rule, cr.ThirdRule = res.Rule, res.ThirdRule
			cr.Edges += res.Edges
			cr.Installed += res.Installed
			cr.MediationFailures += len(res.MediationFailures)
		}
		rep.Connections = append(rep.Connections, cr)
		rep.Installed += cr.Installed
	}

	return rep, nil
}

func (c runConfig) managerOptions(d *Description, rank int, store synapse.Installer) []connect.Option {
	opts := []connect.Option{
		connect.WithLayout(d.Layout.WithRank(rank)),
		connect.WithSeed(d.Seed),
		connect.WithStore(store),
	}
	if c.logger != nil {
		opts = append(opts, connect.WithLogger(c.logger.With(slog.Int("rank", rank))))
	}
	if c.tracer != nil {
		opts = append(opts, connect.WithTracerProvider(c.tracer))
	}
	if c.catalog != nil {
		opts = append(opts, connect.WithCatalog(c.catalog))
	}

	return opts
}

// call is a connection with its collections resolved.
type call struct {
	conn                    Connection
	sources, targets, third nodes.Collection
}

func (c Connection) bind(pops map[string]*nodes.Primitive) (call, error) {
	cl := call{conn: c}
	var err error
	if cl.sources, err = c.Sources.resolve(pops); err != nil {
		return call{}, err
	}
	if cl.targets, err = c.Targets.resolve(pops); err != nil {
		return call{}, err
	}
	if c.Third != nil {
		if cl.third, err = c.Third.resolve(pops); err != nil {
			return call{}, err
		}
	}

	return cl, nil
}

func (cl call) exec(ctx context.Context, m *connect.Manager) (connect.Result, error) {
	syns := []*conf.Dict(cl.conn.SynSpec)
	if len(syns) == 0 {
		syns = defaultSynSpecs(cl.third != nil)
	}
	if cl.third != nil {
		return m.ConnectTripartite(ctx, cl.sources, cl.targets, cl.third, cl.conn.ConnSpec, cl.conn.ThirdSpec, syns)
	}

	return m.Connect(ctx, cl.sources, cl.targets, cl.conn.ConnSpec, syns)
}

// defaultSynSpecs is static_synapse on every channel.
func defaultSynSpecs(tripartite bool) []*conf.Dict {
	if tripartite {
		return []*conf.Dict{conf.New(nil), conf.New(nil), conf.New(nil)}
	}

	return []*conf.Dict{conf.New(nil)}
}
