// Package network loads declarative network descriptions and executes them.
//
// A description lists populations and connection calls. Run creates the
// populations, then plays every rank of the layout with its own
// connect.Manager, issuing the calls in order, and returns a Report.
package network
