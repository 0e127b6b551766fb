// Package rng provides reproducible random streams keyed by identity and the
// discrete samplers the connection rules need.
//
// Determinism
//
//	A stream depends only on (seed, role, keys). Workers never share
//	generators; they reseed their own from the key of the unit they are
//	about to draw for.
package rng
