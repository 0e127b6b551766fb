package connect_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/connect"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/synapse"
)

// firstPair connects the first source to the first target.
type firstPair struct {
	sources, targets nodes.Collection
	syn              synapse.Spec
	env              connect.Env
}

func (f *firstPair) Rule() string { return "first_pair" }

func (f *firstPair) Execute(context.Context) (connect.Stats, error) {
	src, err := f.sources.At(0)
	if err != nil {
		return connect.Stats{}, err
	}
	tgt, err := f.targets.At(0)
	if err != nil {
		return connect.Stats{}, err
	}
	vp := f.env.Layout.VPOf(tgt)
	if !f.env.Layout.IsLocal(vp) {
		return connect.Stats{}, nil
	}
	err = f.env.Installer.Install(vp, synapse.Connection{Source: src, Target: tgt, Model: f.syn.Model, Weight: 1, Delay: 1})

	return connect.Stats{Installed: 1, Edges: 1}, err
}

func newFirstPair(
	sources, targets nodes.Collection,
	_ connect.ThirdFactorBuilder,
	_ *conf.Dict,
	syns []synapse.Spec,
	env connect.Env,
) (connect.BipartiteBuilder, error) {
	return &firstPair{sources: sources, targets: targets, syn: syns[0], env: env}, nil
}

func TestRegistry_RegisterAndFreeze(t *testing.T) {
	t.Parallel()

	r := connect.NewRegistry()
	assert.Empty(t, r.Rules())
	connect.RegisterBuiltins(r)
	assert.Len(t, r.Rules(), 8)
	assert.Equal(t, []string{connect.RuleThirdBernoulliWithPool}, r.ThirdRules())

	require.NoError(t, r.Register("first_pair", newFirstPair))
	require.NoError(t, r.Register(connect.RuleAllToAll, newFirstPair)) // last writer wins
	require.ErrorIs(t, r.Register("", newFirstPair), connect.ErrBadParameter)
	r.Freeze()
	require.ErrorIs(t, r.Register("late", newFirstPair), connect.ErrRegistryFrozen)
	require.ErrorIs(t, r.RegisterThird("late", nil), connect.ErrBadParameter)

	reg := nodes.NewRegistry()
	s := newPop(t, reg, 5)
	m, store := single(t, grid{1, 1}, connect.WithRegistry(r))
	res, err := m.Connect(context.Background(), s, s, conf.New(map[string]any{"rule": connect.RuleAllToAll}), dicts(nil))
	require.NoError(t, err)
	assert.Equal(t, "first_pair", res.Rule)
	assert.Equal(t, 1, store.Len())
}

func TestRegistry_BuiltinsOnFrozenPanics(t *testing.T) {
	t.Parallel()

	r := connect.NewRegistry()
	r.Freeze()
	assert.Panics(t, func() { connect.RegisterBuiltins(r) })
}

func TestBuilder_ExecuteOnce(t *testing.T) {
	t.Parallel()

	reg := nodes.NewRegistry()
	s := newPop(t, reg, 4)
	store := synapse.NewStore()
	b, err := connect.DefaultRegistry().Create(
		conf.New(map[string]any{"rule": connect.RuleOneToOne}),
		s, s, nil, []synapse.Spec{synapse.DefaultSpec()},
		connect.Env{Installer: store},
	)
	require.NoError(t, err)
	assert.Equal(t, connect.RuleOneToOne, b.Rule())

	st, err := b.Execute(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, st.Installed)

	_, err = b.Execute(context.Background())
	require.ErrorIs(t, err, connect.ErrAlreadyExecuted)
	assert.Equal(t, 4, store.Len())
}

func TestBuilder_NilInstaller(t *testing.T) {
	t.Parallel()

	reg := nodes.NewRegistry()
	s := newPop(t, reg, 4)
	_, err := connect.DefaultRegistry().Create(
		conf.New(map[string]any{"rule": connect.RuleAllToAll}),
		s, s, nil, []synapse.Spec{synapse.DefaultSpec()}, connect.Env{},
	)
	require.ErrorIs(t, err, connect.ErrBadParameter)
}
