// SPDX-License-Identifier: MIT
// Package: lvconnect/nodes
//
// collection.go - ordered, immutable node collections.
//
// Design contract:
//   - A Collection is an ordered sequence of unique positive node ids.
//   - Collections are shared by reference and never mutated after creation;
//     slicing and joining return new values.
//   - Every collection is a concatenation of strided runs (Range). Callers
//     that need closed-form arithmetic (partitioning) work on Parts().
//   - Validity is delegated to the backing populations: once a population is
//     destroyed, every collection referencing it reports ErrDestroyed.

package nodes

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for collection and registry operations.
var (
	// ErrDestroyed indicates that a collection references a destroyed population.
	ErrDestroyed = errors.New("nodes: population destroyed")

	// ErrOutOfRange indicates a position outside [0, Size()).
	ErrOutOfRange = errors.New("nodes: position out of range")

	// ErrBadSize indicates a non-positive population size or invalid slice bounds.
	ErrBadSize = errors.New("nodes: invalid size")

	// ErrDuplicateID indicates that a composite would contain an id twice.
	ErrDuplicateID = errors.New("nodes: duplicate node id")

	// ErrUnknownID indicates an id that belongs to no population.
	ErrUnknownID = errors.New("nodes: unknown node id")

	// ErrEmptyModel indicates a population created without a model name.
	ErrEmptyModel = errors.New("nodes: empty model name")
)

// Collection is the read-only view the connection engine needs on a set of
// nodes: size, positional access, membership and the strided runs it is
// made of.
type Collection interface {
	// Size returns the number of nodes.
	Size() int
	// At returns the id at position i.
	At(i int) (uint64, error)
	// Find returns the position of id, or -1.
	Find(id uint64) int
	// Contains reports whether id is a member.
	Contains(id uint64) bool
	// Parts returns the strided runs in order; offsets are positions of
	// each run's first element within the collection.
	Parts() []Part
	// Valid returns ErrDestroyed (wrapped) if any backing population is gone.
	Valid() error
	// String returns a short human-readable description.
	String() string
}

// Range is a strided run of ids: First, First+Step, ..., Len elements.
type Range struct {
	First uint64
	Step  uint64
	Len   int
}

// At returns the i-th id of the run; i is not bounds-checked.
func (r Range) At(i int) uint64 { return r.First + uint64(i)*r.Step }

// Last returns the last id of a non-empty run.
func (r Range) Last() uint64 { return r.At(r.Len - 1) }

// Find returns the position of id within the run or -1.
func (r Range) Find(id uint64) int {
	if r.Len == 0 || id < r.First || id > r.Last() {
		return -1
	}
	d := id - r.First
	if d%r.Step != 0 {
		return -1
	}

	return int(d / r.Step)
}

// Part is one Range together with its offset in the owning collection.
type Part struct {
	Range
	Offset int
	pop    *Population
}

// Population returns the population the part belongs to.
func (p Part) Population() *Population { return p.pop }

// Primitive is a strided slice of a single population.
type Primitive struct {
	pop *Population
	rng Range
}

// Size implements Collection.
func (p *Primitive) Size() int { return p.rng.Len }

// At implements Collection.
func (p *Primitive) At(i int) (uint64, error) {
	if i < 0 || i >= p.rng.Len {
		return 0, fmt.Errorf("At(%d) on %s: %w", i, p, ErrOutOfRange)
	}

	return p.rng.At(i), nil
}

// Find implements Collection.
func (p *Primitive) Find(id uint64) int { return p.rng.Find(id) }

// Contains implements Collection.
func (p *Primitive) Contains(id uint64) bool { return p.rng.Find(id) >= 0 }

// Parts implements Collection.
func (p *Primitive) Parts() []Part {
	if p.rng.Len == 0 {
		return nil
	}

	return []Part{{Range: p.rng, Offset: 0, pop: p.pop}}
}

// Valid implements Collection.
func (p *Primitive) Valid() error {
	if p.pop.Destroyed() {
		return fmt.Errorf("%s: %w", p, ErrDestroyed)
	}

	return nil
}

// Model returns the model name of the backing population.
func (p *Primitive) Model() string { return p.pop.Model }

// Range returns the strided run covered by the primitive.
func (p *Primitive) Range() Range { return p.rng }

// Slice returns the elements at positions start, start+step, ... < stop,
// like a Python slice with non-negative bounds.
func (p *Primitive) Slice(start, stop, step int) (*Primitive, error) {
	if start < 0 || stop > p.rng.Len || start > stop || step < 1 {
		return nil, fmt.Errorf("Slice(%d,%d,%d) on %s: %w", start, stop, step, p, ErrBadSize)
	}
	n := (stop - start + step - 1) / step

	return &Primitive{
		pop: p.pop,
		rng: Range{First: p.rng.At(start), Step: p.rng.Step * uint64(step), Len: n},
	}, nil
}

// String implements Collection.
func (p *Primitive) String() string {
	if p.rng.Len == 0 {
		return fmt.Sprintf("%s[]", p.pop.Model)
	}
	if p.rng.Step == 1 {
		return fmt.Sprintf("%s[%d..%d]", p.pop.Model, p.rng.First, p.rng.Last())
	}

	return fmt.Sprintf("%s[%d..%d:%d]", p.pop.Model, p.rng.First, p.rng.Last(), p.rng.Step)
}

// Composite concatenates primitives in order. Build it with Join.
type Composite struct {
	parts []Part
	size  int
}

// Join concatenates collections into one. Ids must stay unique.
// Complexity: O(total size) to verify uniqueness.
func Join(colls ...Collection) (*Composite, error) {
	var (
		c    Composite
		seen = make(map[uint64]struct{})
	)
	for _, coll := range colls {
		if coll == nil {
			continue
		}
		for _, part := range coll.Parts() {
			for i := 0; i < part.Len; i++ {
				id := part.At(i)
				if _, dup := seen[id]; dup {
					return nil, fmt.Errorf("Join: id %d: %w", id, ErrDuplicateID)
				}
				seen[id] = struct{}{}
			}
			part.Offset = c.size
			c.parts = append(c.parts, part)
			c.size += part.Len
		}
	}

	return &c, nil
}

// Size implements Collection.
func (c *Composite) Size() int { return c.size }

// At implements Collection.
func (c *Composite) At(i int) (uint64, error) {
	if i < 0 || i >= c.size {
		return 0, fmt.Errorf("At(%d) on %s: %w", i, c, ErrOutOfRange)
	}
	for _, part := range c.parts {
		if i < part.Offset+part.Len {
			return part.At(i - part.Offset), nil
		}
	}

	return 0, fmt.Errorf("At(%d) on %s: %w", i, c, ErrOutOfRange)
}

// Find implements Collection.
func (c *Composite) Find(id uint64) int {
	for _, part := range c.parts {
		if k := part.Find(id); k >= 0 {
			return part.Offset + k
		}
	}

	return -1
}

// Contains implements Collection.
func (c *Composite) Contains(id uint64) bool { return c.Find(id) >= 0 }

// Parts implements Collection.
func (c *Composite) Parts() []Part { return c.parts }

// Valid implements Collection.
func (c *Composite) Valid() error {
	for _, part := range c.parts {
		if part.pop.Destroyed() {
			return fmt.Errorf("%s: %s: %w", c, part.pop.Model, ErrDestroyed)
		}
	}

	return nil
}

// String implements Collection.
func (c *Composite) String() string {
	var b strings.Builder
	b.WriteString("composite(")
	for i, part := range c.parts {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d..%d:%d", part.First, part.Last(), part.Step)
	}
	b.WriteString(")")

	return b.String()
}

// IDs materializes the ids of c in order. Meant for tests and small
// collections.
func IDs(c Collection) []uint64 {
	ids := make([]uint64, 0, c.Size())
	for _, part := range c.Parts() {
		for i := 0; i < part.Len; i++ {
			ids = append(ids, part.At(i))
		}
	}

	return ids
}

// Equal reports whether a and b contain the same ids in the same order.
func Equal(a, b Collection) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Size() != b.Size() {
		return false
	}
	pa, pb := flatten(a.Parts()), flatten(b.Parts())
	if len(pa) == len(pb) {
		same := true
		for i := range pa {
			if pa[i] != pb[i] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	// Different run decompositions can still describe the same sequence.
	ia, ib := IDs(a), IDs(b)
	for i := range ia {
		if ia[i] != ib[i] {
			return false
		}
	}

	return true
}

// Overlaps reports whether a and b share at least one id.
func Overlaps(a, b Collection) bool {
	if a == nil || b == nil {
		return false
	}
	small, large := a, b
	if small.Size() > large.Size() {
		small, large = large, small
	}
	for _, part := range small.Parts() {
		for i := 0; i < part.Len; i++ {
			if large.Contains(part.At(i)) {
				return true
			}
		}
	}

	return false
}

func flatten(parts []Part) []Range {
	out := make([]Range, len(parts))
	for i, p := range parts {
		out[i] = p.Range
	}

	return out
}
