// Package numerics holds small deterministic helpers: half-up rounding,
// floating-point classification and modular arithmetic for strided
// traversals.
package numerics
