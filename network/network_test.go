package network_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvconnect/connect"
	"github.com/katalvlaran/lvconnect/network"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/synapse"
)

func TestLoad_Testdata(t *testing.T) {
	t.Parallel()

	d, err := network.Load("testdata/brunel.yaml")
	require.NoError(t, err)
	assert.EqualValues(t, 1234, d.Seed)
	assert.Equal(t, nodes.Layout{NumProcesses: 2, ThreadsPerProcess: 2}, d.Layout)
	require.Len(t, d.Populations, 3)
	require.Len(t, d.Connections, 4)

	assert.Len(t, d.Connections[0].Targets.Parts, 2)
	assert.Len(t, d.Connections[1].SynSpec, 1)
	sym := d.Connections[2]
	assert.Equal(t, 2, sym.Sources.Parts[0].Step)
	model, err := sym.SynSpec[0].String("synapse_model", "")
	require.NoError(t, err)
	assert.Equal(t, "stdp_synapse", model)
	assert.Len(t, d.Connections[3].SynSpec, 3)
	require.NotNil(t, d.Connections[3].Third)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		yaml string
		want error
	}{
		{"no populations", `connections: []`, network.ErrInvalidDescription},
		{"unknown population", `
populations: [{name: a, model: m, size: 3}]
connections: [{sources: a, targets: b, conn_spec: all_to_all}]`, network.ErrUnknownPopulation},
		{"duplicate population", `
populations: [{name: a, model: m, size: 3}, {name: a, model: m, size: 2}]`, network.ErrInvalidDescription},
		{"zero size", `populations: [{name: a, model: m, size: 0}]`, network.ErrInvalidDescription},
		{"missing conn_spec", `
populations: [{name: a, model: m, size: 3}]
connections: [{sources: a, targets: a}]`, network.ErrInvalidDescription},
		{"slice out of range", `
populations: [{name: a, model: m, size: 3}]
connections: [{sources: {population: a, stop: 4}, targets: a, conn_spec: all_to_all}]`, network.ErrInvalidDescription},
		{"rank outside grid", `
layout: {processes: 2, threads: 1, rank: 2}
populations: [{name: a, model: m, size: 3}]`, network.ErrInvalidDescription},
		{"third spec without third", `
populations: [{name: a, model: m, size: 3}]
connections: [{sources: a, targets: a, conn_spec: all_to_all, third_spec: {rule: x}}]`, network.ErrInvalidDescription},
		{"malformed yaml", `populations: [`, network.ErrInvalidDescription},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := network.Parse([]byte(tc.yaml))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParse_DefaultLayout(t *testing.T) {
	t.Parallel()

	d, err := network.Parse([]byte(`populations: [{name: a, model: m, size: 3}]`))
	require.NoError(t, err)
	assert.Equal(t, nodes.SingleLayout, d.Layout)
}

func TestRun_Testdata(t *testing.T) {
	t.Parallel()

	d, err := network.Load("testdata/brunel.yaml")
	require.NoError(t, err)
	store := synapse.NewStore()
	rep, err := network.Run(context.Background(), d, store)
	require.NoError(t, err)

	require.Len(t, rep.Populations, 3)
	assert.EqualValues(t, 1, rep.Populations[0].First)
	assert.EqualValues(t, 80, rep.Populations[0].Last)
	assert.EqualValues(t, 81, rep.Populations[1].First)

	require.Len(t, rep.Connections, 4)
	assert.Equal(t, connect.RuleFixedIndegree, rep.Connections[0].Rule)
	assert.EqualValues(t, 100*8, rep.Connections[0].Edges)
	assert.Equal(t, connect.RuleThirdBernoulliWithPool, rep.Connections[3].ThirdRule)
	assert.Zero(t, rep.Connections[3].MediationFailures)
	assert.EqualValues(t, store.Len(), rep.Installed)

	out, err := yaml.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(out), "exc_to_all")
}

// Running the same description on another grid installs the same network.
func TestRun_GridIndependent(t *testing.T) {
	t.Parallel()

	run := func(l nodes.Layout) []synapse.Connection {
		d, err := network.Load("testdata/brunel.yaml")
		require.NoError(t, err)
		d.Layout = l
		store := synapse.NewStore()
		_, err = network.Run(context.Background(), d, store)
		require.NoError(t, err)
		all := store.All()
		for i := range all {
			all[i].VP = 0
		}
		return all
	}

	want := run(nodes.SingleLayout)
	assert.Equal(t, want, run(nodes.Layout{NumProcesses: 3, ThreadsPerProcess: 2}))
	assert.Equal(t, want, run(nodes.Layout{NumProcesses: 1, ThreadsPerProcess: 5}))
}

func TestRun_FailingCall(t *testing.T) {
	t.Parallel()

	d, err := network.Parse([]byte(`
populations: [{name: a, model: m, size: 3}]
connections: [{sources: a, targets: a, conn_spec: {rule: fixed_indegree, indegree: 5, allow_multapses: false}}]`))
	require.NoError(t, err)
	_, err = network.Run(context.Background(), d, synapse.NewStore())
	require.ErrorIs(t, err, connect.ErrInfeasible)
}
