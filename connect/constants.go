// Package connect defines shared constants used by the connection builders,
// keeping rule names, parameter keys and defaults in one place.
package connect

//-----------------------------------------------------------------------------
// Rule names
//-----------------------------------------------------------------------------

const (
	// RuleAllToAll connects every source to every target.
	RuleAllToAll = "all_to_all"
	// RuleOneToOne connects the i-th source to the i-th target.
	RuleOneToOne = "one_to_one"
	// RuleFixedIndegree draws a fixed number of sources per target.
	RuleFixedIndegree = "fixed_indegree"
	// RuleFixedOutdegree draws a fixed number of targets per source.
	RuleFixedOutdegree = "fixed_outdegree"
	// RuleFixedTotalNumber draws a fixed total number of edges.
	RuleFixedTotalNumber = "fixed_total_number"
	// RulePairwiseBernoulli includes each pair independently with probability p.
	RulePairwiseBernoulli = "pairwise_bernoulli"
	// RulePairwisePoisson draws a Poisson number of edges per pair.
	RulePairwisePoisson = "pairwise_poisson"
	// RuleSymmetricPairwiseBernoulli includes each unordered pair with
	// probability p and installs both directions.
	RuleSymmetricPairwiseBernoulli = "symmetric_pairwise_bernoulli"

	// RuleThirdBernoulliWithPool attaches a mediator from a per-target pool
	// to each primary edge with probability p.
	RuleThirdBernoulliWithPool = "third_factor_bernoulli_with_pool"
)

//-----------------------------------------------------------------------------
// Specification keys
//-----------------------------------------------------------------------------

const (
	KeyRule           = "rule"
	KeyAllowAutapses  = "allow_autapses"
	KeyAllowMultapses = "allow_multapses"
	KeyMakeSymmetric  = "make_symmetric"
	KeySynSelection   = "syn_selection"

	KeyIndegree   = "indegree"
	KeyOutdegree  = "outdegree"
	KeyTotal      = "N"
	KeyP          = "p"
	KeyAvgNumConn = "pairwise_avg_num_conns"

	KeyPoolType = "pool_type"
	KeyPoolSize = "pool_size"
)

// Synapse selection modes for multi-channel specifications.
const (
	SelectAll        = "all"
	SelectRoundRobin = "round_robin"
	SelectRandom     = "random"
)

// Pool types of third_factor_bernoulli_with_pool.
const (
	PoolRandom = "random"
	PoolBlock  = "block"
)

// Channels of a tripartite call: the synapse specification list is
// [primary, third_in, third_out].
const (
	ChannelPrimary  = 0
	ChannelThirdIn  = 1
	ChannelThirdOut = 2

	tripartiteChannels = 3
)

//-----------------------------------------------------------------------------
// Defaults
//-----------------------------------------------------------------------------

const (
	// DefaultRetryFactor scales the redraw ceiling of the rejection samplers.
	DefaultRetryFactor = 10

	// DefaultSeed is the master seed when WithSeed is not given.
	DefaultSeed uint64 = 1

	defaultAllowAutapses  = true
	defaultAllowMultapses = true
	defaultMakeSymmetric  = false
)

// Method tags used as error prefixes.
const (
	methodConnect           = "Connect"
	methodConnectTripartite = "ConnectTripartite"
	methodCreate            = "Create"
	methodCreateThird       = "CreateThird"
	methodRegister          = "Register"
	methodExecute           = "Execute"
	methodDisconnect        = "Disconnect"
)
