// SPDX-License-Identifier: MIT
// Package: lvconnect/network
//
// selector.go - population references in connection calls.

package network

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvconnect/nodes"
)

// Selector picks nodes from named populations. YAML forms:
//
//	exc                                   # whole population
//	{population: exc, start: 0, stop: 100, step: 2}
//	[exc, {population: inh, stop: 50}]    # concatenation
type Selector struct {
	Parts []SelectorPart
}

// SelectorPart is a strided slice of one population. Stop defaults to the
// population size and Step to 1.
type SelectorPart struct {
	Population string `yaml:"population"`
	Start      int    `yaml:"start"`
	Stop       *int   `yaml:"stop"`
	Step       int    `yaml:"step"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	decodePart := func(n *yaml.Node) (SelectorPart, error) {
		if n.Kind == yaml.ScalarNode {
			var name string
			err := n.Decode(&name)
			return SelectorPart{Population: name}, err
		}
		var p SelectorPart
		err := n.Decode(&p)
		return p, err
	}

	if node.Kind != yaml.SequenceNode {
		p, err := decodePart(node)
		if err != nil {
			return fmt.Errorf("selector: %w", err)
		}
		s.Parts = []SelectorPart{p}
		return nil
	}
	s.Parts = s.Parts[:0]
	for _, n := range node.Content {
		p, err := decodePart(n)
		if err != nil {
			return fmt.Errorf("selector: %w", err)
		}
		s.Parts = append(s.Parts, p)
	}

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Selector) MarshalYAML() (any, error) {
	if len(s.Parts) == 1 && s.Parts[0].whole() {
		return s.Parts[0].Population, nil
	}

	return s.Parts, nil
}

func (p SelectorPart) whole() bool {
	return p.Start == 0 && p.Stop == nil && p.Step <= 1
}

// bounds resolves the slice against a population of size n.
func (p SelectorPart) bounds(n int) (start, stop, step int) {
	start, stop, step = p.Start, n, p.Step
	if p.Stop != nil {
		stop = *p.Stop
	}
	if step == 0 {
		step = 1
	}

	return start, stop, step
}

// check verifies names and slice bounds against population sizes.
func (s Selector) check(sizes map[string]int) error {
	if len(s.Parts) == 0 {
		return fmt.Errorf("empty selector: %w", ErrInvalidDescription)
	}
	for _, p := range s.Parts {
		n, ok := sizes[p.Population]
		if !ok {
			return fmt.Errorf("%q: %w", p.Population, ErrUnknownPopulation)
		}
		start, stop, step := p.bounds(n)
		if start < 0 || stop > n || start > stop || step < 1 {
			return fmt.Errorf("%q[%d:%d:%d] outside [0,%d]: %w",
				p.Population, start, stop, step, n, ErrInvalidDescription)
		}
	}

	return nil
}

// resolve builds the node collection the selector denotes.
func (s Selector) resolve(pops map[string]*nodes.Primitive) (nodes.Collection, error) {
	colls := make([]nodes.Collection, 0, len(s.Parts))
	for _, p := range s.Parts {
		pop, ok := pops[p.Population]
		if !ok {
			return nil, fmt.Errorf("%q: %w", p.Population, ErrUnknownPopulation)
		}
		start, stop, step := p.bounds(pop.Size())
		sl, err := pop.Slice(start, stop, step)
		if err != nil {
			return nil, err
		}
		colls = append(colls, sl)
	}
	if len(colls) == 1 {
		return colls[0], nil
	}

	return nodes.Join(colls...)
}
