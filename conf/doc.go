// Package conf provides the parameter dictionaries passed to connection
// rules and synapse specifications.
//
// A Dict remembers which keys were read. Consumers read every key they
// understand and then reject whatever Unaccessed reports, so misspelled
// parameters fail loudly instead of being ignored.
package conf
