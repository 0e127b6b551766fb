// Package synapse describes what is installed for each generated edge.
//
// A Spec names a model from the Catalog and carries weight, delay, receptor
// and model parameters. Each value is a Parameter: a constant, an array
// indexed by edge position or a distribution drawn per edge. Store is the
// in-memory Installer used by tests and the command line.
package synapse
