package conf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvconnect/conf"
)

func TestDict_TypedGetters(t *testing.T) {
	t.Parallel()

	d := conf.New(map[string]any{
		"rule":     "fixed_indegree",
		"indegree": 10,
		"p":        0.5,
		"n_float":  4.0,
		"bad_int":  4.5,
		"flag":     true,
		"nested":   map[string]any{"a": 1},
	})

	s, err := d.String("rule", "")
	require.NoError(t, err)
	assert.Equal(t, "fixed_indegree", s)

	n, err := d.RequireInt("indegree")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = d.Int("n_float", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = d.Int("bad_int", 0)
	require.ErrorIs(t, err, conf.ErrWrongType)

	f, err := d.Float("p", 0)
	require.NoError(t, err)
	assert.Equal(t, 0.5, f)

	f, err = d.Float("indegree", 0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, f)

	b, err := d.Bool("missing", true)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = d.Bool("rule", false)
	require.ErrorIs(t, err, conf.ErrWrongType)

	_, err = d.RequireFloat("absent")
	require.ErrorIs(t, err, conf.ErrMissingKey)

	assert.Equal(t, []string{"flag", "nested"}, d.Unaccessed())

	sub, ok, err := d.Sub("nested")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, sub.Has("a"))
	assert.Equal(t, []string{"flag"}, d.Unaccessed())
}

func TestDict_CloneResetsAccess(t *testing.T) {
	t.Parallel()

	d := conf.New(map[string]any{"a": 1})
	_, _ = d.Int("a", 0)
	require.Empty(t, d.Unaccessed())

	c := d.Clone()
	assert.Equal(t, []string{"a"}, c.Unaccessed())

	w := d.With("b", 2)
	assert.Equal(t, []string{"a", "b"}, w.Keys())
	assert.False(t, d.Has("b"))
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	d, err := conf.ParseYAML([]byte("rule: pairwise_bernoulli\np: 0.1\nallow_autapses: false\nweights: [1, 2.5]\n"))
	require.NoError(t, err)

	rule, err := d.RequireString("rule")
	require.NoError(t, err)
	assert.Equal(t, "pairwise_bernoulli", rule)

	p, err := d.Float("p", 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, p, 1e-12)

	auto, err := d.Bool("allow_autapses", true)
	require.NoError(t, err)
	assert.False(t, auto)

	v, ok := d.Value("weights")
	require.True(t, ok)
	ws, ok := conf.AsFloats(v)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2.5}, ws)

	short, err := conf.ParseYAML([]byte("one_to_one"))
	require.NoError(t, err)
	rule, err = short.RequireString("rule")
	require.NoError(t, err)
	assert.Equal(t, "one_to_one", rule)

	empty, err := conf.ParseYAML(nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())

	_, err = conf.ParseYAML([]byte("[1, 2"))
	require.Error(t, err)
}
