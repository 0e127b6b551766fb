// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// errors.go - sentinel errors for the connect package.
//
// Error policy:
//   - Only package-level sentinels are exposed; callers branch with errors.Is.
//   - Implementations attach context as "<Method>: <detail>: %w".
//   - Builders never panic. Option constructors (WithX) panic on nil inputs.
//
// Classes:
//   - Configuration errors are reported before any edge is installed, except
//     ErrRetryExhausted: without multapses and with a degree close to the
//     eligible partner count, rejection sampling can run out of draws on an
//     unlucky stream after other units were already connected.
//   - ErrInvalidCollection is fatal: a population was destroyed while the
//     run was bound to it.
//   - ErrMediationFailed never aborts a run; it is collected in
//     Result.MediationFailures.

package connect

import (
	"errors"

	"github.com/katalvlaran/lvconnect/conf"
	"github.com/katalvlaran/lvconnect/synapse"
)

// ErrUnknownRule indicates a rule name absent from the registry.
var ErrUnknownRule = errors.New("connect: unknown rule")

// ErrMissingRule indicates a connection specification without a "rule" key.
var ErrMissingRule = errors.New("connect: missing rule")

// ErrMissingCollection indicates a nil source, target or third collection.
var ErrMissingCollection = errors.New("connect: missing node collection")

// ErrUnknownParameter indicates a specification key that no builder consumed.
var ErrUnknownParameter = errors.New("connect: unknown parameter")

// ErrBadParameter indicates a malformed or out-of-range rule parameter.
var ErrBadParameter = errors.New("connect: bad parameter")

// ErrSizeMismatch indicates collections whose sizes the rule cannot pair.
var ErrSizeMismatch = errors.New("connect: collection size mismatch")

// ErrSynapseChannels indicates a synapse specification list of the wrong
// length for the call (tripartite calls need exactly three).
var ErrSynapseChannels = errors.New("connect: wrong number of synapse channels")

// ErrNoSynapseSpec indicates an empty synapse specification list.
var ErrNoSynapseSpec = errors.New("connect: no synapse specification")

// ErrUnsupported indicates a flag combination the rule does not implement.
var ErrUnsupported = errors.New("connect: unsupported combination")

// ErrInfeasible indicates parameters that no edge set can satisfy, such as
// an in-degree above the number of eligible sources without multapses.
var ErrInfeasible = errors.New("connect: infeasible parameters")

// ErrRetryExhausted indicates that policy-violation redraws hit the ceiling.
var ErrRetryExhausted = errors.New("connect: redraw limit exhausted")

// ErrInvalidCollection indicates a collection referencing a destroyed
// population.
var ErrInvalidCollection = errors.New("connect: invalid node collection")

// ErrMediationFailed marks a third-factor edge that could not be installed.
var ErrMediationFailed = errors.New("connect: mediation failed")

// ErrAlreadyExecuted indicates a second Execute on the same builder.
var ErrAlreadyExecuted = errors.New("connect: builder already executed")

// ErrNotConnected indicates a Disconnect pair without a connection of the
// requested model.
var ErrNotConnected = errors.New("connect: connection does not exist")

// ErrRegistryFrozen indicates registration after Freeze.
var ErrRegistryFrozen = errors.New("connect: registry frozen")

var configErrors = []error{
	ErrUnknownRule, ErrMissingRule, ErrMissingCollection, ErrUnknownParameter,
	ErrBadParameter, ErrSizeMismatch, ErrSynapseChannels, ErrNoSynapseSpec,
	ErrUnsupported, ErrInfeasible, ErrRetryExhausted, ErrNotConnected,
	synapse.ErrUnknownModel, synapse.ErrBadParameter,
	conf.ErrMissingKey, conf.ErrWrongType,
}

// IsConfigError reports whether err stems from an invalid specification
// rather than from the run itself.
func IsConfigError(err error) bool {
	for _, target := range configErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
