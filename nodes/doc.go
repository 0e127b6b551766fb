// Package nodes provides node collections and their placement on virtual
// processes.
//
// What
//
//   - Registry hands out contiguous id blocks, starting at 1, one Primitive
//     collection per population.
//   - Primitive.Slice, Join and Registry.FromIDs build ordered collections
//     of strided runs.
//   - Layout maps node ids to virtual processes, ranks and threads.
//
// Validity
//
//	Collections are views on their populations. Destroying a population
//	invalidates every collection that references it; Valid reports
//	ErrDestroyed from then on.
package nodes
