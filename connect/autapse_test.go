package connect_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/connect"
	"github.com/katalvlaran/lvconnect/nodes"
)

// autapseSpecs returns one specification per rule, feasible for n nodes
// connected to themselves without autapses.
func autapseSpecs(n int) map[string]map[string]any {
	k := min(3, n-1)
	p := min(1.0, 5/float64(n))

	specs := map[string]map[string]any{
		"all_to_all":           {"rule": connect.RuleAllToAll},
		"all_to_all_symmetric": {"rule": connect.RuleAllToAll, "make_symmetric": true},
		"one_to_one":           {"rule": connect.RuleOneToOne},
		"fixed_indegree":       {"rule": connect.RuleFixedIndegree, "indegree": k, "allow_multapses": false},
		"fixed_outdegree":      {"rule": connect.RuleFixedOutdegree, "outdegree": k, "allow_multapses": false},
		"fixed_total_number":   {"rule": connect.RuleFixedTotalNumber, "N": 5 * (n - 1)},
		"pairwise_bernoulli":   {"rule": connect.RulePairwiseBernoulli, "p": p},
		"pairwise_poisson":     {"rule": connect.RulePairwisePoisson, connect.KeyAvgNumConn: p},
		"symmetric_pairwise_bernoulli": {
			"rule": connect.RuleSymmetricPairwiseBernoulli, "p": p,
			"allow_multapses": true, "make_symmetric": true,
		},
	}
	for _, spec := range specs {
		spec["allow_autapses"] = false
	}

	return specs
}

func TestAutapseExclusion_Sizes(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 3, 17, 1000} {
		for name, spec := range autapseSpecs(n) {
			t.Run(fmt.Sprintf("%s/n=%d", name, n), func(t *testing.T) {
				reg := nodes.NewRegistry()
				s := newPop(t, reg, n)
				conns, err := runRanks(t, grid{2, 2}, 11, func(m *connect.Manager) error {
					_, err := m.Connect(context.Background(), s, s, conf.New(spec), dicts(nil))
					return err
				})
				require.NoError(t, err)
				for _, c := range conns {
					require.NotEqual(t, c.Source, c.Target, "autapse on %d", c.Source)
				}
			})
		}
	}
}

func TestAllToAll_SymmetricDistinct(t *testing.T) {
	t.Parallel()

	reg := nodes.NewRegistry()
	a := newPop(t, reg, 4)
	b := newPop(t, reg, 5)
	syn := map[string]any{"weight": map[string]any{"distribution": "uniform", "low": 0.0, "high": 1.0}}

	conns, err := runRanks(t, grid{2, 2}, 5, func(m *connect.Manager) error {
		_, err := m.Connect(context.Background(), a, b, conf.New(map[string]any{
			"rule": "all_to_all", "make_symmetric": true,
		}), dicts(syn))
		return err
	})
	require.NoError(t, err)
	require.Len(t, conns, 2*4*5)
	assertSymmetric(t, conns)
}

func TestAllToAll_SymmetricOverlapping(t *testing.T) {
	t.Parallel()

	reg := nodes.NewRegistry()
	pop := newPop(t, reg, 6)
	s := slice(t, pop, 0, 4, 1)
	tg := slice(t, pop, 2, 6, 1)
	spec := func(multapses bool) *conf.Dict {
		return conf.New(map[string]any{
			"rule": "all_to_all", "make_symmetric": true,
			"allow_autapses": false, "allow_multapses": multapses,
		})
	}

	conns, err := runRanks(t, grid{2, 2}, 5, func(m *connect.Manager) error {
		_, err := m.Connect(context.Background(), s, tg, spec(true), dicts(nil))
		return err
	})
	require.NoError(t, err)

	// 16 pairs less the 2 autapses, in both directions.
	require.Len(t, conns, 2*14)
	counts := make(map[pair]int)
	for _, c := range conns {
		require.NotEqual(t, c.Source, c.Target)
		counts[pair{c.Source, c.Target}]++
	}
	for p, n := range counts {
		assert.Equal(t, n, counts[pair{p.tgt, p.src}], "edge %d->%d", p.src, p.tgt)
	}

	m, _ := single(t, grid{1, 1})
	_, err = m.Connect(context.Background(), s, tg, spec(false), dicts(nil))
	require.ErrorIs(t, err, connect.ErrUnsupported)
}
