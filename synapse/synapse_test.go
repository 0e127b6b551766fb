package synapse_test

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/synapse"
)

func TestParseSpec_Defaults(t *testing.T) {
	t.Parallel()

	cat := synapse.NewCatalog()
	spec, err := synapse.ParseSpec(conf.New(nil), cat)
	require.NoError(t, err)
	assert.Equal(t, synapse.DefaultModel, spec.Model)
	assert.False(t, spec.Random())
	assert.False(t, spec.HasArrays())

	res, err := spec.Resolve(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Weight)
	assert.Equal(t, 1.0, res.Delay)
	assert.Nil(t, res.Params)
}

func TestParseSpec_ModelParams(t *testing.T) {
	t.Parallel()

	cat := synapse.NewCatalog()
	spec, err := synapse.ParseSpec(conf.New(map[string]any{
		"synapse_model": "stdp_synapse",
		"weight":        2.5,
		"delay":         map[string]any{"distribution": "uniform", "low": 0.8, "high": 2.5},
		"alpha":         map[string]any{"distribution": "normal_clipped", "low": 0.5, "mu": 5.0, "sigma": 1.0},
		"receptor_type": 1,
	}), cat)
	require.NoError(t, err)
	assert.True(t, spec.Random())
	assert.Equal(t, 1, spec.Receptor)

	r := rand.New(rand.NewPCG(1, 1))
	for i := 0; i < 200; i++ {
		res, err := spec.Resolve(r, i)
		require.NoError(t, err)
		assert.Equal(t, 2.5, res.Weight)
		assert.GreaterOrEqual(t, res.Delay, 0.8)
		assert.LessOrEqual(t, res.Delay, 2.5)
		assert.GreaterOrEqual(t, res.Params["alpha"], 0.5)
	}
}

func TestParseSpec_Errors(t *testing.T) {
	t.Parallel()

	cat := synapse.NewCatalog()
	cases := []struct {
		name string
		in   map[string]any
		want error
	}{
		{"unknown model", map[string]any{"synapse_model": "nope"}, synapse.ErrUnknownModel},
		{"unknown param", map[string]any{"tau_plus": 3.0}, synapse.ErrBadParameter},
		{"zero delay", map[string]any{"delay": 0.0}, synapse.ErrBadParameter},
		{"negative delay in array", map[string]any{"delay": []any{1.0, -1.0}}, synapse.ErrBadParameter},
		{"unknown distribution", map[string]any{"weight": map[string]any{"distribution": "cauchy"}}, synapse.ErrBadParameter},
		{"distribution without name", map[string]any{"weight": map[string]any{"mu": 1.0}}, synapse.ErrBadParameter},
		{"extra distribution key", map[string]any{"weight": map[string]any{"distribution": "normal", "mean": 1.0}}, synapse.ErrBadParameter},
		{"bad bounds", map[string]any{"weight": map[string]any{"distribution": "uniform", "low": 2.0, "high": 1.0}}, synapse.ErrBadParameter},
		{"negative receptor", map[string]any{"receptor_type": -1}, synapse.ErrBadParameter},
		{"string weight", map[string]any{"weight": "heavy"}, synapse.ErrBadParameter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := synapse.ParseSpec(conf.New(tc.in), cat)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSpec_Arrays(t *testing.T) {
	t.Parallel()

	spec, err := synapse.ParseSpec(conf.New(map[string]any{"weight": []any{1.0, 2.0, 3.0}}), synapse.NewCatalog())
	require.NoError(t, err)
	require.True(t, spec.HasArrays())
	require.NoError(t, spec.CheckArrayLen(3))
	require.ErrorIs(t, spec.CheckArrayLen(4), synapse.ErrBadParameter)

	res, err := spec.Resolve(nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Weight)
}

func TestDistributions_Moments(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(9, 9))
	cases := []struct {
		spec map[string]any
		mean float64
	}{
		{map[string]any{"distribution": "uniform", "low": 1.0, "high": 3.0}, 2},
		{map[string]any{"distribution": "uniform_int", "low": 0, "high": 4}, 2},
		{map[string]any{"distribution": "normal", "mu": -1.0, "sigma": 0.5}, -1},
		{map[string]any{"distribution": "exponential", "beta": 2.0}, 2},
		{map[string]any{"distribution": "gamma", "k": 3.0, "theta": 0.5}, 1.5},
		{map[string]any{"distribution": "gamma", "k": 0.5, "theta": 2.0}, 1},
		{map[string]any{"distribution": "lognormal", "mu": 0.0, "sigma": 0.1}, 1.005},
	}
	for _, tc := range cases {
		p, err := synapse.ParseParameter("w", tc.spec)
		require.NoError(t, err)
		require.True(t, p.Random())
		const n = 20000
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += p.Value(r, i)
		}
		assert.InDelta(t, tc.mean, sum/n, 0.05, "%v", tc.spec)
	}
	assert.Contains(t, synapse.Distributions(), "normal_clipped")
}

func TestStore_ConcurrentInstall(t *testing.T) {
	t.Parallel()

	s := synapse.NewStore()
	var wg sync.WaitGroup
	for vp := 0; vp < 8; vp++ {
		wg.Add(1)
		go func(vp int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.NoError(t, s.Install(vp, synapse.Connection{Source: uint64(i), Target: uint64(vp)}))
			}
		}(vp)
	}
	wg.Wait()

	assert.Equal(t, 800, s.Len())
	assert.Len(t, s.VPCounts(), 8)

	all := s.All()
	require.Len(t, all, 800)
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		require.True(t, prev.Source < cur.Source || (prev.Source == cur.Source && prev.Target <= cur.Target))
	}

	ch := 0
	got := s.Connections(synapse.Filter{Targets: map[uint64]struct{}{3: {}}, Channel: &ch})
	assert.Len(t, got, 100)

	s.Reset()
	assert.Zero(t, s.Len())
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	cat := synapse.NewCatalog()
	assert.Contains(t, cat.Names(), "tsodyks2_synapse")
	cat.Register(synapse.Model{Name: "my_syn", Weight: 3, Delay: 2, Params: map[string]float64{"tau": 5}})
	spec, err := synapse.ParseSpec(conf.New(map[string]any{"synapse_model": "my_syn", "tau": 7.0}), cat)
	require.NoError(t, err)
	res, err := spec.Resolve(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Weight)
	assert.Equal(t, 7.0, res.Params["tau"])
}

func TestStore_MissingAndRemove(t *testing.T) {
	t.Parallel()

	s := synapse.NewStore()
	for _, c := range []synapse.Connection{
		{Source: 1, Target: 2, Model: "static_synapse", Weight: 1},
		{Source: 1, Target: 2, Model: "static_synapse", Weight: 2},
		{Source: 1, Target: 2, Model: "stdp_synapse"},
		{Source: 3, Target: 2, Model: "static_synapse"},
	} {
		require.NoError(t, s.Install(0, c))
	}
	var _ synapse.Remover = s

	want := []synapse.Pair{{Source: 1, Target: 2}, {Source: 4, Target: 2}}
	assert.Equal(t, []synapse.Pair{{Source: 4, Target: 2}}, s.Missing(0, "static_synapse", want))
	assert.Equal(t, want, s.Missing(1, "static_synapse", want))
	// three static 1->2 requested, two stored
	p12 := synapse.Pair{Source: 1, Target: 2}
	assert.Equal(t, []synapse.Pair{p12}, s.Missing(0, "static_synapse", []synapse.Pair{p12, p12, p12}))

	assert.Equal(t, 1, s.Remove(0, "static_synapse", want[:1]))
	left := s.All()
	require.Len(t, left, 3)
	assert.Equal(t, 2.0, left[0].Weight)
	assert.Equal(t, "stdp_synapse", left[1].Model)
	assert.Zero(t, s.Remove(0, "tsodyks_synapse", want))
}
