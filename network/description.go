// SPDX-License-Identifier: MIT
// Package: lvconnect/network
//
// description.go - declarative network descriptions (YAML).
//
// A description names populations and lists connection calls in order:
//
//	seed: 42
//	layout: {processes: 2, threads: 4}
//	populations:
//	  - {name: exc, model: iaf_psc_alpha, size: 800}
//	  - {name: inh, model: iaf_psc_alpha, size: 200}
//	connections:
//	  - sources: exc
//	    targets: [exc, inh]
//	    conn_spec: {rule: fixed_indegree, indegree: 80}
//	    syn_spec: {weight: {distribution: normal, mu: 1.0, sigma: 0.1}}
//
// Contract:
//   - Struct-level rules are checked with validator tags; references between
//     sections (population names) are checked by Validate.
//   - Specifications stay untyped conf.Dicts: rule and synapse parameters are
//     validated by the connect and synapse packages when the call runs.

package network

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/nodes"
)

// Sentinel errors for network descriptions.
var (
	// ErrInvalidDescription indicates a description failing validation.
	ErrInvalidDescription = errors.New("network: invalid description")

	// ErrUnknownPopulation indicates a selector naming no population.
	ErrUnknownPopulation = errors.New("network: unknown population")
)

// descValidate checks struct tags of descriptions.
var descValidate = validator.New()

// Description is a complete network: populations plus connection calls.
type Description struct {
	Seed        uint64       `yaml:"seed"`
	Layout      nodes.Layout `yaml:"layout"`
	Populations []Population `yaml:"populations" validate:"required,min=1,dive"`
	Connections []Connection `yaml:"connections" validate:"dive"`
}

// Population is one block of nodes of a single model.
type Population struct {
	Name  string `yaml:"name" validate:"required"`
	Model string `yaml:"model" validate:"required"`
	Size  int    `yaml:"size" validate:"min=1"`
}

// Connection is one Connect or ConnectTripartite call.
type Connection struct {
	Name      string     `yaml:"name"`
	Sources   Selector   `yaml:"sources"`
	Targets   Selector   `yaml:"targets"`
	Third     *Selector  `yaml:"third"`
	ConnSpec  *conf.Dict `yaml:"conn_spec" validate:"required"`
	ThirdSpec *conf.Dict `yaml:"third_spec" validate:"required_with=Third"`
	SynSpec   SynSpecs   `yaml:"syn_spec"`
}

// SynSpecs is the synapse specification list of a call. YAML accepts a
// single mapping, a model name or a sequence of either.
type SynSpecs []*conf.Dict

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *SynSpecs) UnmarshalYAML(node *yaml.Node) error {
	decodeOne := func(n *yaml.Node) (*conf.Dict, error) {
		if n.Kind == yaml.ScalarNode {
			var model string
			if err := n.Decode(&model); err != nil {
				return nil, err
			}
			return conf.New(map[string]any{"synapse_model": model}), nil
		}
		var m map[string]any
		if err := n.Decode(&m); err != nil {
			return nil, fmt.Errorf("syn_spec: %w", err)
		}
		return conf.New(m), nil
	}

	if node.Kind != yaml.SequenceNode {
		d, err := decodeOne(node)
		if err != nil {
			return err
		}
		*s = SynSpecs{d}
		return nil
	}

	out := make(SynSpecs, 0, len(node.Content))
	for _, n := range node.Content {
		d, err := decodeOne(n)
		if err != nil {
			return err
		}
		out = append(out, d)
	}
	*s = out

	return nil
}

// Parse decodes and validates a YAML description. An omitted layout means
// one process with one thread.
func Parse(data []byte) (*Description, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("Parse: %w: %w", ErrInvalidDescription, err)
	}
	if d.Layout == (nodes.Layout{}) {
		d.Layout = nodes.SingleLayout
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	return &d, nil
}

// Load reads and parses the description at path.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	return Parse(data)
}

// Validate checks struct rules, the layout and population references.
func (d *Description) Validate() error {
	if err := descValidate.Struct(d); err != nil {
		return fmt.Errorf("Validate: %w: %w", ErrInvalidDescription, err)
	}
	if err := d.Layout.Validate(); err != nil {
		return fmt.Errorf("Validate: %w: %w", ErrInvalidDescription, err)
	}

	names := make(map[string]int, len(d.Populations))
	for _, p := range d.Populations {
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("Validate: population %q defined twice: %w", p.Name, ErrInvalidDescription)
		}
		names[p.Name] = p.Size
	}
	for i, c := range d.Connections {
		sels := []Selector{c.Sources, c.Targets}
		if c.Third != nil {
			sels = append(sels, *c.Third)
		}
		for _, sel := range sels {
			if err := sel.check(names); err != nil {
				return fmt.Errorf("Validate: connection %d (%s): %w", i, c.Label(i), err)
			}
		}
		if c.ThirdSpec != nil && c.Third == nil {
			return fmt.Errorf("Validate: connection %d: third_spec without third: %w", i, ErrInvalidDescription)
		}
	}

	return nil
}

// Label returns the connection's name or a positional fallback.
func (c Connection) Label(i int) string {
	if c.Name != "" {
		return c.Name
	}

	return fmt.Sprintf("connection-%d", i)
}
