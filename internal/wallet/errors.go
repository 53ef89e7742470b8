package wallet

import (
	"errors"
	"fmt"
)

// Build errors. Every failure surfaced by the builder wraps one of these
// inside a *BuildError, so callers can match with errors.Is.
var (
	// ErrStructural covers request-shape violations: class rules,
	// change-address mismatches, bill-total mismatches.
	ErrStructural = errors.New("structural violation")

	// ErrInsufficientFunds is a currency-specific shortfall discovered
	// during input selection.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientGas is a gas budget shortfall.
	ErrInsufficientGas = errors.New("insufficient gas")

	// ErrAddressNotFound means a referenced address is absent from the
	// snapshot.
	ErrAddressNotFound = errors.New("address not found")

	// ErrSigning wraps an underlying cryptographic primitive error.
	ErrSigning = errors.New("signing failure")
)

// BuildState identifies a phase of the build pipeline.
type BuildState uint8

const (
	StateValidating BuildState = iota
	StateSelectingInputs
	StateAssemblingOutputs
	StateSigning
	StateDone
)

func (s BuildState) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateSelectingInputs:
		return "selecting-inputs"
	case StateAssemblingOutputs:
		return "assembling-outputs"
	case StateSigning:
		return "signing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// BuildError reports which build phase failed and why.
type BuildError struct {
	State BuildState
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed while %s: %v", e.State, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
