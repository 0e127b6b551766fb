// SPDX-License-Identifier: MIT
// Package: lvconnect/rng
//
// streams.go - reproducible random streams keyed by identity.
//
// Contract:
//   - A stream is fully determined by (seed, role, keys...). Two workers that
//     ask for the same key get bit-identical sequences, whichever worker they
//     are and however many workers exist.
//   - Builders key streams by the unit whose draws they produce (a target
//     node, a source node, one edge), never by the worker, so generated
//     networks do not depend on the process/thread grid.
//   - Uniform gives O(1) random access to a counter-based value for a key,
//     for decisions two workers must agree on without sharing a stream.

package rng

import (
	"math/rand/v2"
)

// Role separates independent stream families sharing one seed.
type Role uint64

// Stream roles used by the connection builders.
const (
	RoleTarget Role = iota + 1
	RoleSource
	RoleGlobal
	RoleEdge
	RolePool
	RolePair
	RoleThird
)

// Streams derives keyed random streams from a master seed. The zero value
// is usable and equivalent to New(0).
type Streams struct {
	seed uint64
}

// New returns stream factory for the master seed.
func New(seed uint64) Streams {
	return Streams{seed: seed}
}

// Seed returns the master seed.
func (s Streams) Seed() uint64 { return s.seed }

// Derive returns an independent factory for a sub-run, e.g. the n-th
// collective connect call. All workers must derive with the same key.
func (s Streams) Derive(key uint64) Streams {
	return Streams{seed: splitmix(splitmix(s.seed) ^ key)}
}

// Stream returns a fresh generator for (role, keys...).
func (s Streams) Stream(role Role, keys ...uint64) *rand.Rand {
	hi, lo := s.key(role, keys)

	return rand.New(rand.NewPCG(hi, lo))
}

// Reseed resets src to the stream for (role, keys...) without allocating.
func (s Streams) Reseed(src *rand.PCG, role Role, keys ...uint64) {
	hi, lo := s.key(role, keys)
	src.Seed(hi, lo)
}

// Uniform returns a value in [0, 1) determined only by (seed, role, keys).
func (s Streams) Uniform(role Role, keys ...uint64) float64 {
	_, lo := s.key(role, keys)

	return float64(lo>>11) * (1.0 / (1 << 53))
}

func (s Streams) key(role Role, keys []uint64) (uint64, uint64) {
	h := splitmix(s.seed ^ 0x6a09e667f3bcc908)
	h = splitmix(h ^ uint64(role))
	for _, k := range keys {
		h = splitmix(h ^ k)
	}

	return h, splitmix(h ^ 0xbb67ae8584caa73b)
}

// splitmix is the SplitMix64 finalizer.
func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb

	return x ^ (x >> 31)
}
