package connect_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/connect"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/synapse"
)

// grid is a process x thread layout without a rank.
type grid struct {
	procs, threads int
}

func (g grid) layout() nodes.Layout {
	return nodes.Layout{NumProcesses: g.procs, ThreadsPerProcess: g.threads}
}

func (g grid) String() string { return fmt.Sprintf("%dx%d", g.procs, g.threads) }

var grids = []grid{{1, 1}, {2, 1}, {1, 4}, {2, 2}}

func newPop(t *testing.T, reg *nodes.Registry, n int) *nodes.Primitive {
	t.Helper()
	p, err := reg.Create("iaf_psc_alpha", n)
	require.NoError(t, err)

	return p
}

func slice(t *testing.T, p *nodes.Primitive, start, stop, step int) *nodes.Primitive {
	t.Helper()
	s, err := p.Slice(start, stop, step)
	require.NoError(t, err)

	return s
}

func dicts(ms ...map[string]any) []*conf.Dict {
	out := make([]*conf.Dict, len(ms))
	for i, m := range ms {
		out[i] = conf.New(m)
	}

	return out
}

// runRanks plays every rank of g against one shared store and returns the
// installed connections with the VP field cleared, so that results of
// different grids compare equal.
func runRanks(t *testing.T, g grid, seed uint64, call func(m *connect.Manager) error) ([]synapse.Connection, error) {
	t.Helper()
	store := synapse.NewStore()
	for rank := 0; rank < g.procs; rank++ {
		m, err := connect.NewManager(
			connect.WithLayout(g.layout().WithRank(rank)),
			connect.WithSeed(seed),
			connect.WithStore(store),
		)
		require.NoError(t, err)
		if err = call(m); err != nil {
			return nil, err
		}
	}

	all := store.All()
	for i := range all {
		all[i].VP = 0
	}

	return all, nil
}

// single returns a one-process manager bound to a fresh store.
func single(t *testing.T, g grid, opts ...connect.Option) (*connect.Manager, *synapse.Store) {
	t.Helper()
	store := synapse.NewStore()
	opts = append([]connect.Option{connect.WithLayout(g.layout()), connect.WithStore(store)}, opts...)
	m, err := connect.NewManager(opts...)
	require.NoError(t, err)

	return m, store
}

type pair struct{ src, tgt uint64 }

func countBy(conns []synapse.Connection, key func(synapse.Connection) uint64) map[uint64]int {
	out := make(map[uint64]int)
	for _, c := range conns {
		out[key(c)]++
	}

	return out
}

func bySource(c synapse.Connection) uint64 { return c.Source }
func byTarget(c synapse.Connection) uint64 { return c.Target }
