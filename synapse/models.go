// SPDX-License-Identifier: MIT
// Package: lvconnect/synapse
//
// models.go - catalog of synapse models and their parameter sets.

package synapse

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Sentinel errors for synapse specifications.
var (
	// ErrUnknownModel indicates a synapse model missing from the catalog.
	ErrUnknownModel = errors.New("synapse: unknown model")

	// ErrBadParameter indicates an unknown, malformed or out-of-range
	// synapse parameter.
	ErrBadParameter = errors.New("synapse: bad parameter")
)

// Common parameter names shared by all models.
const (
	ParamWeight   = "weight"
	ParamDelay    = "delay"
	ParamReceptor = "receptor_type"
	ParamModel    = "synapse_model"
)

// DefaultModel is used when a specification names no model.
const DefaultModel = "static_synapse"

// Model describes one synapse model: defaults for weight and delay and the
// defaults of its model-specific parameters.
type Model struct {
	Name   string
	Weight float64
	Delay  float64
	Params map[string]float64
}

// Catalog maps model names to models. Safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	models map[string]Model
}

// NewCatalog returns a catalog holding the built-in models.
func NewCatalog() *Catalog {
	c := &Catalog{models: make(map[string]Model)}
	for _, m := range builtinModels() {
		c.Register(m)
	}

	return c
}

// Register adds or replaces a model.
func (c *Catalog) Register(m Model) {
	c.mu.Lock()
	defer c.mu.Unlock()

	params := make(map[string]float64, len(m.Params))
	for k, v := range m.Params {
		params[k] = v
	}
	m.Params = params
	c.models[m.Name] = m
}

// Lookup returns the named model.
func (c *Catalog) Lookup(name string) (Model, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.models[name]
	if !ok {
		return Model{}, fmt.Errorf("model %q: %w", name, ErrUnknownModel)
	}

	return m, nil
}

// Names returns the registered model names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.models))
	for n := range c.models {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

func builtinModels() []Model {
	return []Model{
		{Name: "static_synapse", Weight: 1, Delay: 1},
		{Name: "bernoulli_synapse", Weight: 1, Delay: 1, Params: map[string]float64{"p_transmit": 1}},
		{Name: "stdp_synapse", Weight: 1, Delay: 1, Params: map[string]float64{
			"tau_plus": 20, "lambda": 0.01, "alpha": 1, "mu_plus": 1, "mu_minus": 1, "Wmax": 100,
		}},
		{Name: "tsodyks_synapse", Weight: 1, Delay: 1, Params: map[string]float64{
			"U": 0.5, "tau_psc": 3, "tau_rec": 800, "tau_fac": 0, "x": 1, "y": 0, "u": 0,
		}},
		{Name: "tsodyks2_synapse", Weight: 1, Delay: 1, Params: map[string]float64{
			"U": 0.5, "tau_rec": 800, "tau_fac": 0, "x": 1, "u": 0.5,
		}},
		{Name: "sic_connection", Weight: 1, Delay: 1},
	}
}
