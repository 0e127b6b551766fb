// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// registry.go - name -> factory maps for both builder families.
//
// Contract:
//   - Registration is last-writer-wins until Freeze; afterwards it fails
//     with ErrRegistryFrozen, so lookups during runs never race with writes.
//   - Create reads the rule name, invokes the factory on a clone of the
//     specification and rejects keys the factory left unread.

package connect

import (
	"fmt"
	"sort"
	"sync"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/synapse"
)

// Registry maps rule names to builder factories. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	bipartite map[string]BipartiteFactory
	third     map[string]ThirdFactorFactory
	frozen    bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bipartite: make(map[string]BipartiteFactory),
		third:     make(map[string]ThirdFactorFactory),
	}
}

// DefaultRegistry returns a frozen registry holding the built-in rules.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	r.Freeze()

	return r
}

// RegisterBuiltins registers every built-in rule on r. It panics if r is
// already frozen.
func RegisterBuiltins(r *Registry) {
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(r.Register(RuleAllToAll, newAllToAll))
	must(r.Register(RuleOneToOne, newOneToOne))
	must(r.Register(RuleFixedIndegree, newFixedIndegree))
	must(r.Register(RuleFixedOutdegree, newFixedOutdegree))
	must(r.Register(RuleFixedTotalNumber, newFixedTotalNumber))
	must(r.Register(RulePairwiseBernoulli, newPairwiseBernoulli))
	must(r.Register(RulePairwisePoisson, newPairwisePoisson))
	must(r.Register(RuleSymmetricPairwiseBernoulli, newSymmetricBernoulli))
	must(r.RegisterThird(RuleThirdBernoulliWithPool, newThirdBernoulliPool))
}

// Register binds name to a bipartite factory, replacing any previous one.
func (r *Registry) Register(name string, f BipartiteFactory) error {
	if name == "" || f == nil {
		return fmt.Errorf("%s: empty name or nil factory: %w", methodRegister, ErrBadParameter)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%s(%s): %w", methodRegister, name, ErrRegistryFrozen)
	}
	r.bipartite[name] = f

	return nil
}

// RegisterThird binds name to a third-factor factory.
func (r *Registry) RegisterThird(name string, f ThirdFactorFactory) error {
	if name == "" || f == nil {
		return fmt.Errorf("%s: empty name or nil factory: %w", methodRegister, ErrBadParameter)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%s(%s): %w", methodRegister, name, ErrRegistryFrozen)
	}
	r.third[name] = f

	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Rules returns the bipartite rule names, sorted.
func (r *Registry) Rules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.bipartite)
}

// ThirdRules returns the third-factor rule names, sorted.
func (r *Registry) ThirdRules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.third)
}

// Create constructs the bipartite builder named by spec["rule"].
func (r *Registry) Create(
	spec *conf.Dict,
	sources, targets nodes.Collection,
	third ThirdFactorBuilder,
	syns []synapse.Spec,
	env Env,
) (BipartiteBuilder, error) {
	spec = spec.Clone()
	name, err := ruleName(methodCreate, spec)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	f, ok := r.bipartite[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", methodCreate, name, ErrUnknownRule)
	}

	b, err := f(sources, targets, third, spec, syns, env.withDefaults())
	if err != nil {
		return nil, err
	}
	if extra := spec.Unaccessed(); len(extra) > 0 {
		return nil, fmt.Errorf("%s(%s): %v: %w", methodCreate, name, extra, ErrUnknownParameter)
	}

	return b, nil
}

// CreateThird constructs the third-factor builder named by spec["rule"].
func (r *Registry) CreateThird(
	spec *conf.Dict,
	sources, targets nodes.Collection,
	syns []synapse.Spec,
	env Env,
) (ThirdFactorBuilder, error) {
	spec = spec.Clone()
	name, err := ruleName(methodCreateThird, spec)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	f, ok := r.third[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", methodCreateThird, name, ErrUnknownRule)
	}

	b, err := f(sources, targets, spec, syns, env.withDefaults())
	if err != nil {
		return nil, err
	}
	if extra := spec.Unaccessed(); len(extra) > 0 {
		return nil, fmt.Errorf("%s(%s): %v: %w", methodCreateThird, name, extra, ErrUnknownParameter)
	}

	return b, nil
}

func ruleName(method string, spec *conf.Dict) (string, error) {
	if !spec.Has(KeyRule) {
		return "", fmt.Errorf("%s: %w", method, ErrMissingRule)
	}
	name, err := spec.String(KeyRule, "")
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", method, ErrBadParameter, err)
	}
	if name == "" {
		return "", fmt.Errorf("%s: %w", method, ErrMissingRule)
	}

	return name, nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}
