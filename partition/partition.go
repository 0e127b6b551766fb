// SPDX-License-Identifier: MIT
// Package: lvconnect/partition
//
// partition.go - closed-form enumeration of the collection slice a virtual
// process owns.
//
// A strided run First, First+Step, ... assigns position k to
//
//	vp = (First + k*Step) mod NumVPs = (phase0 + k*step) mod period
//
// so the positions owned by one vp are found with a single FirstIndex call
// followed by a constant stride of period/gcd(step, period). No position is
// visited and skipped.

package partition

import (
	"github.com/katalvlaran/lvconnect/nodes"
	"github.com/katalvlaran/lvconnect/numerics"
)

// Descriptor is the 4-tuple describing one worker's view of a periodic
// assignment: Period workers, Phase0 owns index 0, traversal with Step,
// enumerating the slice of worker Phase.
type Descriptor struct {
	Period int64
	Phase0 int64
	Step   int64
	Phase  int64
}

// ForRange returns the descriptor of vp over a strided run of ids.
func ForRange(r nodes.Range, numVPs, vp int) Descriptor {
	p := uint64(numVPs)

	return Descriptor{
		Period: int64(numVPs),
		Phase0: int64(r.First % p),
		Step:   int64(r.Step % p),
		Phase:  int64(vp),
	}
}

// FirstIndex returns the first owned traversal index or
// numerics.InvalidIndex. The index is not bounds-checked.
func (d Descriptor) FirstIndex() int64 {
	return numerics.FirstIndex(d.Period, d.Phase0, d.Step, d.Phase)
}

// Stride returns the distance between consecutive owned indices.
func (d Descriptor) Stride() int64 {
	return numerics.Period(d.Period, d.Step)
}

// Each calls fn(pos, id) for every position of c owned by vp, in increasing
// position order. It stops at the first error returned by fn.
// Complexity: O(parts + owned) time, O(1) space.
func Each(c nodes.Collection, layout nodes.Layout, vp int, fn func(pos int, id uint64) error) error {
	numVPs := layout.NumVPs()
	for _, part := range c.Parts() {
		d := ForRange(part.Range, numVPs, vp)
		first := d.FirstIndex()
		if first == numerics.InvalidIndex || first >= int64(part.Len) {
			continue
		}
		stride := int(d.Stride())
		for k := int(first); k < part.Len; k += stride {
			if err := fn(part.Offset+k, part.At(k)); err != nil {
				return err
			}
		}
	}

	return nil
}

// Count returns how many positions of c are owned by vp.
func Count(c nodes.Collection, layout nodes.Layout, vp int) int {
	var (
		n      int
		numVPs = layout.NumVPs()
	)
	for _, part := range c.Parts() {
		d := ForRange(part.Range, numVPs, vp)
		first := d.FirstIndex()
		if first == numerics.InvalidIndex || first >= int64(part.Len) {
			continue
		}
		n += (part.Len-int(first)-1)/int(d.Stride()) + 1
	}

	return n
}
