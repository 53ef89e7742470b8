package tx

import (
	"errors"
	"fmt"
	"math"

	"github.com/Trivium-tech/trivium-wallet/config"
)

// Validation errors.
var (
	ErrNoInputs       = errors.New("transaction has no inputs")
	ErrNoOutputs      = errors.New("transaction has no outputs")
	ErrTooManyInputs  = errors.New("too many inputs")
	ErrTooManyOutputs = errors.New("too many outputs")
	ErrDuplicateInput = errors.New("duplicate input")
	ErrBadClass       = errors.New("undefined transaction class")
	ErrBadCurrency    = errors.New("undefined currency")
	ErrBadAddress     = errors.New("malformed address")
	ErrMissingPrevTx  = errors.New("input missing prior transaction id")
	ErrBadValue       = errors.New("output value must be positive and finite")
	ErrBadInterest    = errors.New("output interest must be non-negative and finite")
	ErrBadAmount      = errors.New("amount must be non-negative and finite")
	ErrGasAddress     = errors.New("pay-for-gas output must have an empty address")
	ErrNoAddress      = errors.New("output missing destination address")
)

// Validate checks transaction shape and field-level rules. It does not
// resolve the spent outputs or check signatures; VerifyWithOrigins does
// both against a ledger view.
func (t *Transaction) Validate() error {
	if len(t.Inputs) == 0 {
		return ErrNoInputs
	}
	if len(t.Outputs) == 0 {
		return ErrNoOutputs
	}
	if len(t.Inputs) > config.MaxTxInputs {
		return fmt.Errorf("%w: %d inputs, max %d", ErrTooManyInputs, len(t.Inputs), config.MaxTxInputs)
	}
	if len(t.Outputs) > config.MaxTxOutputs {
		return fmt.Errorf("%w: %d outputs, max %d", ErrTooManyOutputs, len(t.Outputs), config.MaxTxOutputs)
	}
	if t.Class > ClassNoOrg {
		return fmt.Errorf("%w: %d", ErrBadClass, t.Class)
	}
	if !finite(t.Total) || t.Total < 0 {
		return fmt.Errorf("total: %w", ErrBadAmount)
	}
	for _, c := range t.Amounts {
		if !finite(c) || c < 0 {
			return fmt.Errorf("amounts: %w", ErrBadAmount)
		}
	}

	type ref struct {
		tx    string
		index uint32
	}
	seen := make(map[ref]bool, len(t.Inputs))
	for i := range t.Inputs {
		in := &t.Inputs[i]
		if in.PrevTx == "" {
			return fmt.Errorf("input %d: %w", i, ErrMissingPrevTx)
		}
		if in.Address.Empty() || !in.Address.Valid() {
			return fmt.Errorf("input %d: %w: %q", i, ErrBadAddress, in.Address)
		}
		r := ref{in.PrevTx, in.PrevIndex}
		if seen[r] {
			return fmt.Errorf("input %d: %w: %s/%d", i, ErrDuplicateInput, in.PrevTx, in.PrevIndex)
		}
		seen[r] = true
	}

	for i := range t.Outputs {
		out := &t.Outputs[i]
		if !out.Currency.Valid() {
			return fmt.Errorf("output %d: %w: %d", i, ErrBadCurrency, out.Currency)
		}
		if !finite(out.Value) || out.Value <= 0 {
			return fmt.Errorf("output %d: %w", i, ErrBadValue)
		}
		if !finite(out.Interest) || out.Interest < 0 {
			return fmt.Errorf("output %d: %w", i, ErrBadInterest)
		}
		if !out.Address.Valid() {
			return fmt.Errorf("output %d: %w: %q", i, ErrBadAddress, out.Address)
		}
		if out.PayGas && !out.Address.Empty() {
			return fmt.Errorf("output %d: %w", i, ErrGasAddress)
		}
		if !out.PayGas && out.Address.Empty() {
			return fmt.Errorf("output %d: %w", i, ErrNoAddress)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
