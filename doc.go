// Package lvconnect builds the connectivity of large spiking networks on a
// grid of processes and threads.
//
// What
//
//   - Populations of nodes receive contiguous id blocks (nodes).
//   - Connection rules generate edges between a source and a target
//     collection: all_to_all, one_to_one, fixed_indegree, fixed_outdegree,
//     fixed_total_number, pairwise_bernoulli, pairwise_poisson and
//     symmetric_pairwise_bernoulli (connect).
//   - A third-factor rule attaches mediator edges from a third collection to
//     the generated primary edges (connect).
//   - Synapse specifications resolve model, weight, delay and extra
//     parameters per edge from constants, arrays or distributions (synapse).
//
// Distribution
//
//	Every node belongs to one virtual process (VP), and each edge is built
//	by the VP owning its target. Random draws come from streams keyed by the
//	unit they describe rather than by the worker (rng), so a network with a
//	given seed is identical on every process/thread grid.
//
// Layout
//
//	conf/       - parameter dictionaries with access tracking
//	nodes/      - collections, VP layout, population registry
//	numerics/   - rounding and modular arithmetic
//	partition/  - closed-form per-VP enumeration of collections
//	rng/        - identity-keyed streams and samplers
//	synapse/    - models, parameter values, in-memory store
//	connect/    - rule registry, builders, Manager
//	network/    - YAML network descriptions and multi-rank runs
//	cmd/lvconnect/ - command line front end
package lvconnect
