// SPDX-License-Identifier: MIT
// Package: lvconnect/synapse
//
// store.go - the synapse installation boundary and an in-memory store.
//
// Design:
//   - Installer is the only thing the connection builders know about
//     storage: they hand it fully resolved connections.
//   - Store keeps one shard per virtual process, each behind its own lock,
//     so workers installing into different VPs never contend.
//   - Query results are sorted, so they do not depend on installation order.

package synapse

import (
	"cmp"
	"slices"
	"sync"
)

// Connection is one installed edge.
type Connection struct {
	Source   uint64
	Target   uint64
	Channel  int // position of the synapse specification in its list
	Model    string
	Weight   float64
	Delay    float64
	Receptor int
	Params   map[string]float64
	VP       int // virtual process storing the connection
}

// Installer receives resolved connections from the builders. Implementations
// must be safe for concurrent use by all workers of a run.
type Installer interface {
	Install(vp int, c Connection) error
}

// Pair keys an edge by its endpoints.
type Pair struct {
	Source, Target uint64
}

// Remover is an Installer that can also delete connections. Like Install,
// both methods are called concurrently for different VPs.
type Remover interface {
	Installer
	// Missing returns the pairs of want that have no connection of model
	// on vp. A pair listed twice needs two connections.
	Missing(vp int, model string, want []Pair) []Pair
	// Remove deletes one connection of model on vp per pair of want and
	// returns how many were deleted.
	Remove(vp int, model string, want []Pair) int
}

// Store is an in-memory Installer and Remover. The zero value is ready to use.
type Store struct {
	mu     sync.RWMutex
	shards map[int]*shard
}

type shard struct {
	mu    sync.Mutex
	conns []Connection
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{shards: make(map[int]*shard)}
}

// Install implements Installer.
func (s *Store) Install(vp int, c Connection) error {
	c.VP = vp
	sh := s.shard(vp)
	sh.mu.Lock()
	sh.conns = append(sh.conns, c)
	sh.mu.Unlock()

	return nil
}

func (s *Store) shard(vp int) *shard {
	s.mu.RLock()
	sh, ok := s.shards[vp]
	s.mu.RUnlock()
	if ok {
		return sh
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shards == nil {
		s.shards = make(map[int]*shard)
	}
	if sh, ok = s.shards[vp]; !ok {
		sh = &shard{}
		s.shards[vp] = sh
	}

	return sh
}

// Missing implements Remover.
// Complexity: O(len(want) + connections on vp).
func (s *Store) Missing(vp int, model string, want []Pair) []Pair {
	need := countPairs(want)
	sh := s.shard(vp)
	sh.mu.Lock()
	for _, c := range sh.conns {
		k := Pair{c.Source, c.Target}
		if c.Model == model && need[k] > 0 {
			need[k]--
		}
	}
	sh.mu.Unlock()

	var out []Pair
	for _, k := range want {
		if need[k] > 0 {
			out = append(out, k)
			need[k] = 0
		}
	}

	return out
}

// Remove implements Remover. The first matching connection of each pair,
// in installation order, is deleted.
// Complexity: O(len(want) + connections on vp).
func (s *Store) Remove(vp int, model string, want []Pair) int {
	need := countPairs(want)
	removed := 0
	sh := s.shard(vp)
	sh.mu.Lock()
	sh.conns = slices.DeleteFunc(sh.conns, func(c Connection) bool {
		k := Pair{c.Source, c.Target}
		if c.Model != model || need[k] == 0 {
			return false
		}
		need[k]--
		removed++

		return true
	})
	sh.mu.Unlock()

	return removed
}

func countPairs(ps []Pair) map[Pair]int {
	m := make(map[Pair]int, len(ps))
	for _, p := range ps {
		m[p]++
	}

	return m
}

// Len returns the number of installed connections.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.conns)
		sh.mu.Unlock()
	}

	return n
}

// VPCounts returns the number of connections installed per VP.
func (s *Store) VPCounts() map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]int, len(s.shards))
	for vp, sh := range s.shards {
		sh.mu.Lock()
		out[vp] = len(sh.conns)
		sh.mu.Unlock()
	}

	return out
}

// Filter selects connections; zero fields match everything.
type Filter struct {
	Sources map[uint64]struct{}
	Targets map[uint64]struct{}
	Model   string
	Channel *int
}

func (f Filter) match(c Connection) bool {
	if f.Sources != nil {
		if _, ok := f.Sources[c.Source]; !ok {
			return false
		}
	}
	if f.Targets != nil {
		if _, ok := f.Targets[c.Target]; !ok {
			return false
		}
	}
	if f.Model != "" && c.Model != f.Model {
		return false
	}
	if f.Channel != nil && c.Channel != *f.Channel {
		return false
	}

	return true
}

// Connections returns the matching connections sorted by
// (source, target, channel, weight, delay).
func (s *Store) Connections(f Filter) []Connection {
	s.mu.RLock()
	var out []Connection
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, c := range sh.conns {
			if f.match(c) {
				out = append(out, c)
			}
		}
		sh.mu.Unlock()
	}
	s.mu.RUnlock()

	slices.SortFunc(out, compareConnections)

	return out
}

// All returns every connection, sorted.
func (s *Store) All() []Connection {
	return s.Connections(Filter{})
}

// Reset drops all connections.
func (s *Store) Reset() {
	s.mu.Lock()
	s.shards = make(map[int]*shard)
	s.mu.Unlock()
}

func compareConnections(a, b Connection) int {
	return cmp.Or(
		cmp.Compare(a.Source, b.Source),
		cmp.Compare(a.Target, b.Target),
		cmp.Compare(a.Channel, b.Channel),
		cmp.Compare(a.Model, b.Model),
		cmp.Compare(a.Weight, b.Weight),
		cmp.Compare(a.Delay, b.Delay),
		cmp.Compare(a.Receptor, b.Receptor),
	)
}
