package connect_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/connect"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/synapse"
)

// ExampleManager_Connect wires 100 excitatory neurons onto 20 inhibitory
// ones, each inhibitory neuron receiving exactly 10 inputs.
func ExampleManager_Connect() {
	reg := nodes.NewRegistry()
	exc, _ := reg.Create("iaf_psc_alpha", 100)
	inh, _ := reg.Create("iaf_psc_alpha", 20)

	store := synapse.NewStore()
	m, err := connect.NewManager(
		connect.WithLayout(nodes.Layout{NumProcesses: 1, ThreadsPerProcess: 4}),
		connect.WithSeed(2024),
		connect.WithStore(store),
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	res, err := m.Connect(context.Background(), exc, inh,
		conf.New(map[string]any{"rule": "fixed_indegree", "indegree": 10, "allow_multapses": false}),
		[]*conf.Dict{conf.New(map[string]any{
			"weight": map[string]any{"distribution": "normal", "mu": 1.0, "sigma": 0.1},
			"delay":  1.5,
		})},
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Rule, res.Installed, store.Len(), len(store.VPCounts()))
	// Output: fixed_indegree 200 200 4
}
