// SPDX-License-Identifier: MIT
// Package: lvconnect/synapse
//
// spec.go - parsed synapse specifications and per-edge resolution.

package synapse

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/katalvlaran/lvconnect/conf"
)

// Spec is one validated synapse specification (one channel).
type Spec struct {
	Model    string
	Weight   Parameter
	Delay    Parameter
	Receptor int
	Params   map[string]Parameter

	names []string // sorted keys of Params, fixes the draw order
}

// Resolved is a synapse specification evaluated for one edge.
type Resolved struct {
	Model    string
	Weight   float64
	Delay    float64
	Receptor int
	Params   map[string]float64
}

// DefaultSpec returns the static_synapse specification with default weight
// and delay.
func DefaultSpec() Spec {
	return Spec{Model: DefaultModel, Weight: Constant(1), Delay: Constant(1)}
}

// ParseSpec validates d against the catalog. Keys other than synapse_model,
// weight, delay, receptor_type and the model's own parameters are rejected.
func ParseSpec(d *conf.Dict, cat *Catalog) (Spec, error) {
	d = d.Clone()
	name, err := d.String(ParamModel, DefaultModel)
	if err != nil {
		return Spec{}, fmt.Errorf("ParseSpec: %w: %w", ErrBadParameter, err)
	}
	model, err := cat.Lookup(name)
	if err != nil {
		return Spec{}, fmt.Errorf("ParseSpec: %w", err)
	}

	spec := Spec{
		Model:  model.Name,
		Weight: Constant(model.Weight),
		Delay:  Constant(model.Delay),
		Params: make(map[string]Parameter),
	}
	if v, ok := d.Value(ParamWeight); ok {
		if spec.Weight, err = ParseParameter(ParamWeight, v); err != nil {
			return Spec{}, fmt.Errorf("ParseSpec(%s): %w", name, err)
		}
	}
	if v, ok := d.Value(ParamDelay); ok {
		if spec.Delay, err = ParseParameter(ParamDelay, v); err != nil {
			return Spec{}, fmt.Errorf("ParseSpec(%s): %w", name, err)
		}
	}
	if err = checkDelay(spec.Delay); err != nil {
		return Spec{}, fmt.Errorf("ParseSpec(%s): %w", name, err)
	}
	if spec.Receptor, err = d.Int(ParamReceptor, 0); err != nil || spec.Receptor < 0 {
		return Spec{}, fmt.Errorf("ParseSpec(%s): receptor_type: %w", name, ErrBadParameter)
	}

	for _, key := range d.Unaccessed() {
		if _, known := model.Params[key]; !known {
			return Spec{}, fmt.Errorf("ParseSpec(%s): parameter %q: %w", name, key, ErrBadParameter)
		}
		v, _ := d.Value(key)
		p, perr := ParseParameter(key, v)
		if perr != nil {
			return Spec{}, fmt.Errorf("ParseSpec(%s): %w", name, perr)
		}
		spec.Params[key] = p
	}
	spec.finalize()

	return spec, nil
}

func (s *Spec) finalize() {
	s.names = s.names[:0]
	for k := range s.Params {
		s.names = append(s.names, k)
	}
	sort.Strings(s.names)
}

// all returns every parameter, weight and delay first.
func (s Spec) all() []Parameter {
	out := []Parameter{s.Weight, s.Delay}
	for _, k := range s.names {
		out = append(out, s.Params[k])
	}

	return out
}

// Random reports whether resolving s consumes random numbers.
func (s Spec) Random() bool {
	for _, p := range s.all() {
		if p.Random() {
			return true
		}
	}

	return false
}

// HasArrays reports whether any parameter is a per-edge array.
func (s Spec) HasArrays() bool {
	for _, p := range s.all() {
		if p.Len() >= 0 {
			return true
		}
	}

	return false
}

// CheckArrayLen verifies that every array parameter has exactly n entries.
func (s Spec) CheckArrayLen(n int) error {
	check := func(name string, p Parameter) error {
		if l := p.Len(); l >= 0 && l != n {
			return fmt.Errorf("%s: array length %d, want %d: %w", name, l, n, ErrBadParameter)
		}
		return nil
	}
	if err := check(ParamWeight, s.Weight); err != nil {
		return err
	}
	if err := check(ParamDelay, s.Delay); err != nil {
		return err
	}
	for _, k := range s.names {
		if err := check(k, s.Params[k]); err != nil {
			return err
		}
	}

	return nil
}

// Resolve evaluates every parameter for the edge with array index idx.
// Draw order is weight, delay, then model parameters by name.
func (s Spec) Resolve(r *rand.Rand, idx int) (Resolved, error) {
	res := Resolved{
		Model:    s.Model,
		Weight:   s.Weight.Value(r, idx),
		Delay:    s.Delay.Value(r, idx),
		Receptor: s.Receptor,
	}
	if res.Delay <= 0 {
		return Resolved{}, fmt.Errorf("%s: delay %v <= 0: %w", s.Model, res.Delay, ErrBadParameter)
	}
	if len(s.names) > 0 {
		res.Params = make(map[string]float64, len(s.names))
		for _, k := range s.names {
			res.Params[k] = s.Params[k].Value(r, idx)
		}
	}

	return res, nil
}

func checkDelay(p Parameter) error {
	switch d := p.(type) {
	case Constant:
		if d <= 0 {
			return fmt.Errorf("delay %v <= 0: %w", float64(d), ErrBadParameter)
		}
	case Array:
		for i, v := range d {
			if v <= 0 {
				return fmt.Errorf("delay[%d]=%v <= 0: %w", i, v, ErrBadParameter)
			}
		}
	}

	return nil
}
