package connect_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/connect"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/synapse"
)

// ManagerSuite exercises the entry points against one manager with
// recorded spans and captured logs.
type ManagerSuite struct {
	suite.Suite

	reg     *nodes.Registry
	a, b    *nodes.Primitive
	store   *synapse.Store
	spans   *tracetest.SpanRecorder
	logs    *bytes.Buffer
	manager *connect.Manager
}

func (s *ManagerSuite) SetupTest() {
	s.reg = nodes.NewRegistry()
	var err error
	s.a, err = s.reg.Create("iaf_psc_alpha", 20)
	s.Require().NoError(err)
	s.b, err = s.reg.Create("iaf_psc_exp", 10)
	s.Require().NoError(err)

	s.store = synapse.NewStore()
	s.spans = tracetest.NewSpanRecorder()
	s.logs = &bytes.Buffer{}
	s.manager, err = connect.NewManager(
		connect.WithLayout(nodes.Layout{NumProcesses: 1, ThreadsPerProcess: 2}),
		connect.WithSeed(12345),
		connect.WithStore(s.store),
		connect.WithLogger(slog.New(slog.NewJSONHandler(s.logs, nil))),
		connect.WithTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(s.spans))),
	)
	s.Require().NoError(err)
}

func (s *ManagerSuite) TestConnect_ResultAndTelemetry() {
	res, err := s.manager.Connect(context.Background(), s.a, s.b,
		conf.New(map[string]any{"rule": "fixed_indegree", "indegree": 4}), dicts(nil))
	s.Require().NoError(err)

	s.Equal(connect.RuleFixedIndegree, res.Rule)
	s.NotEmpty(res.RunID)
	s.EqualValues(40, res.Installed)
	s.EqualValues(40, res.Edges)
	s.Equal(40, s.store.Len())

	ended := s.spans.Ended()
	s.Require().Len(ended, 1)
	s.Equal("Connect", ended[0].Name())
	s.NotEqual(codes.Error, ended[0].Status().Code)
	s.Contains(ended[0].Attributes(), attribute.String("lvconnect.rule", connect.RuleFixedIndegree))
	s.Contains(ended[0].Attributes(), attribute.String("lvconnect.run_id", res.RunID))

	s.Contains(s.logs.String(), `"msg":"connected"`)
	s.Contains(s.logs.String(), res.RunID)
}

func (s *ManagerSuite) TestConnect_ErrorRecordedOnSpan() {
	_, err := s.manager.Connect(context.Background(), s.a, s.b,
		conf.New(map[string]any{"rule": "no_such_rule"}), dicts(nil))
	s.Require().ErrorIs(err, connect.ErrUnknownRule)

	ended := s.spans.Ended()
	s.Require().Len(ended, 1)
	s.Equal(codes.Error, ended[0].Status().Code)
	s.Contains(s.logs.String(), "connect failed")
}

func (s *ManagerSuite) TestConnect_ConfigErrors() {
	cases := []struct {
		name    string
		sources nodes.Collection
		spec    map[string]any
		syns    []*conf.Dict
		want    error
	}{
		{"missing rule", s.a, map[string]any{"indegree": 2}, dicts(nil), connect.ErrMissingRule},
		{"unknown rule", s.a, map[string]any{"rule": "fixed_degree"}, dicts(nil), connect.ErrUnknownRule},
		{"unknown parameter", s.a, map[string]any{"rule": "all_to_all", "indegree": 2}, dicts(nil), connect.ErrUnknownParameter},
		{"missing collection", nil, map[string]any{"rule": "all_to_all"}, dicts(nil), connect.ErrMissingCollection},
		{"no synapse spec", s.a, map[string]any{"rule": "all_to_all"}, nil, connect.ErrNoSynapseSpec},
		{"p out of range", s.a, map[string]any{"rule": "pairwise_bernoulli", "p": 1.5}, dicts(nil), connect.ErrBadParameter},
		{"missing indegree", s.a, map[string]any{"rule": "fixed_indegree"}, dicts(nil), connect.ErrBadParameter},
		{"negative outdegree", s.a, map[string]any{"rule": "fixed_outdegree", "outdegree": -1}, dicts(nil), connect.ErrBadParameter},
		{"fractional indegree", s.a, map[string]any{"rule": "fixed_indegree", "indegree": 2.5}, dicts(nil), connect.ErrBadParameter},
		{"indegree too large", s.a, map[string]any{"rule": "fixed_indegree", "indegree": 21, "allow_multapses": false},
			dicts(nil), connect.ErrInfeasible},
		{"total without multapses", s.a, map[string]any{"rule": "fixed_total_number", "N": 5, "allow_multapses": false},
			dicts(nil), connect.ErrUnsupported},
		{"poisson without multapses", s.a, map[string]any{"rule": "pairwise_poisson", "pairwise_avg_num_conns": 1, "allow_multapses": false},
			dicts(nil), connect.ErrUnsupported},
		{"symmetric indegree", s.a, map[string]any{"rule": "fixed_indegree", "indegree": 1, "make_symmetric": true},
			dicts(nil), connect.ErrUnsupported},
		{"bad selection", s.a, map[string]any{"rule": "all_to_all", "syn_selection": "first"}, dicts(nil), connect.ErrBadParameter},
		{"flag of wrong type", s.a, map[string]any{"rule": "all_to_all", "allow_autapses": "no"}, dicts(nil), connect.ErrBadParameter},
		{"array on bernoulli", s.a, map[string]any{"rule": "pairwise_bernoulli", "p": 0.5},
			dicts(map[string]any{"weight": []any{1.0, 2.0}}), synapse.ErrBadParameter},
		{"array length", s.a, map[string]any{"rule": "all_to_all"},
			dicts(map[string]any{"weight": []any{1.0, 2.0}}), synapse.ErrBadParameter},
		{"unknown model", s.a, map[string]any{"rule": "all_to_all"},
			dicts(map[string]any{"synapse_model": "gap_junction"}), synapse.ErrUnknownModel},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.store.Reset()
			_, err := s.manager.Connect(context.Background(), tc.sources, s.b, conf.New(tc.spec), tc.syns)
			s.Require().ErrorIs(err, tc.want)
			s.True(connect.IsConfigError(err))
			s.Zero(s.store.Len())
		})
	}
}

func (s *ManagerSuite) TestConnect_ZeroEligibleSources() {
	one, err := s.a.Slice(0, 1, 1)
	s.Require().NoError(err)
	_, err = s.manager.Connect(context.Background(), one, one,
		conf.New(map[string]any{"rule": "fixed_indegree", "indegree": 1, "allow_autapses": false}), dicts(nil))
	s.Require().ErrorIs(err, connect.ErrInfeasible)
}

func (s *ManagerSuite) TestConnect_DestroyedCollection() {
	s.reg.Destroy(s.b)
	_, err := s.manager.Connect(context.Background(), s.a, s.b,
		conf.New(map[string]any{"rule": "all_to_all"}), dicts(nil))
	s.Require().ErrorIs(err, connect.ErrInvalidCollection)
	s.ErrorIs(err, nodes.ErrDestroyed)
	s.False(connect.IsConfigError(err))
	s.Zero(s.store.Len())
}

func (s *ManagerSuite) TestConnect_Cancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.manager.Connect(ctx, s.a, s.b,
		conf.New(map[string]any{"rule": "all_to_all"}), dicts(nil))
	s.Require().ErrorIs(err, context.Canceled)
}

func (s *ManagerSuite) TestRules() {
	s.Equal([]string{
		"all_to_all", "fixed_indegree", "fixed_outdegree", "fixed_total_number",
		"one_to_one", "pairwise_bernoulli", "pairwise_poisson", "symmetric_pairwise_bernoulli",
	}, s.manager.Rules())
	s.Equal([]string{"third_factor_bernoulli_with_pool"}, s.manager.ThirdRules())
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func TestNewManager_InvalidLayout(t *testing.T) {
	t.Parallel()

	_, err := connect.NewManager(connect.WithLayout(nodes.Layout{NumProcesses: 2, ThreadsPerProcess: 1, Rank: 2}))
	require.ErrorIs(t, err, connect.ErrBadParameter)
}
