// SPDX-License-Identifier: MIT
// Package: lvconnect/nodes
//
// registry.go - population storage: contiguous id blocks handed out in
// creation order, starting at id 1.

package nodes

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// FirstNodeID is the id of the first node ever created.
const FirstNodeID uint64 = 1

// Population is a contiguous block of nodes of one model.
type Population struct {
	Model string
	First uint64
	Size  int

	destroyed atomic.Bool
}

// Destroyed reports whether the population has been destroyed.
func (p *Population) Destroyed() bool { return p.destroyed.Load() }

// Registry owns the populations of one network. Safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	next uint64
	pops []*Population
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{next: FirstNodeID}
}

// Create allocates n nodes of the given model and returns them as a
// primitive collection.
func (r *Registry) Create(model string, n int) (*Primitive, error) {
	if model == "" {
		return nil, fmt.Errorf("Create: %w", ErrEmptyModel)
	}
	if n < 1 {
		return nil, fmt.Errorf("Create(%s, %d): %w", model, n, ErrBadSize)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pop := &Population{Model: model, First: r.next, Size: n}
	r.next += uint64(n)
	r.pops = append(r.pops, pop)

	return &Primitive{pop: pop, rng: Range{First: pop.First, Step: 1, Len: n}}, nil
}

// Destroy marks every population referenced by c as destroyed. Collections
// built on them become invalid; ids are never reused.
func (r *Registry) Destroy(c Collection) {
	for _, part := range c.Parts() {
		if part.pop != nil {
			part.pop.destroyed.Store(true)
		}
	}
}

// Lookup returns the population holding id.
func (r *Registry) Lookup(id uint64) (*Population, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := sort.Search(len(r.pops), func(i int) bool {
		p := r.pops[i]
		return p.First+uint64(p.Size) > id
	})
	if i == len(r.pops) || id < r.pops[i].First {
		return nil, fmt.Errorf("Lookup(%d): %w", id, ErrUnknownID)
	}

	return r.pops[i], nil
}

// FromIDs builds a collection from explicit ids, kept in the given order.
// Consecutive ids of the same population are merged into one run.
func (r *Registry) FromIDs(ids ...uint64) (Collection, error) {
	var (
		c    Composite
		seen = make(map[uint64]struct{}, len(ids))
	)
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("FromIDs: id %d: %w", id, ErrDuplicateID)
		}
		seen[id] = struct{}{}

		pop, err := r.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("FromIDs: %w", err)
		}
		if n := len(c.parts); n > 0 {
			last := &c.parts[n-1]
			if last.pop == pop && last.Step == 1 && last.Last()+1 == id {
				last.Len++
				c.size++
				continue
			}
		}
		c.parts = append(c.parts, Part{Range: Range{First: id, Step: 1, Len: 1}, Offset: c.size, pop: pop})
		c.size++
	}

	return &c, nil
}
