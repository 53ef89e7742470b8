package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// =============================================================================
// Protocol Parameters (immutable per ledger deployment)
// These MUST match the remote ledger service or hashes and budgets break.
// =============================================================================

// Transaction shape limits (shared with the ledger service).
const (
	MaxTxInputs  = 2500 // Max inputs per transaction
	MaxTxOutputs = 2500 // Max outputs per transaction
)

// Default gas economy constants.
const (
	DefaultBaseTxGas = 1 // Flat gas cost of processing one transaction
	DefaultGasRate   = 1 // Gas obtained per minted unit of primary currency
)

// Params holds the ledger protocol parameters the builder must agree on
// with the remote service: the fixed per-currency exchange rates, the
// gas economy constants and the transaction shape limits.
type Params struct {
	// Rates fixes the exchange rate of each currency ordinal into
	// total-value units. The primary currency is the unit, so its rate
	// is 1 by convention.
	Rates [types.NumCurrencies]float64 `json:"rates"`

	// BaseTxGas is the flat gas cost every transaction pays.
	BaseTxGas float64 `json:"base_tx_gas"`

	// GasRate converts minted primary currency into gas.
	GasRate float64 `json:"gas_rate"`

	// Shape limits for a single transaction.
	MaxInputs  int `json:"max_inputs"`
	MaxOutputs int `json:"max_outputs"`
}

// DefaultParams returns the deployed ledger parameters.
func DefaultParams() *Params {
	return &Params{
		Rates:      [types.NumCurrencies]float64{1, 0.5, 0.2},
		BaseTxGas:  DefaultBaseTxGas,
		GasRate:    DefaultGasRate,
		MaxInputs:  MaxTxInputs,
		MaxOutputs: MaxTxOutputs,
	}
}

// Rate returns the exchange rate for a currency, 0 for undefined ones.
func (p *Params) Rate(c types.CurrencyType) float64 {
	if !c.Valid() {
		return 0
	}
	return p.Rates[c]
}

// LoadParams loads protocol parameters from a JSON file.
func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading params file: %w", err)
	}

	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing params file: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	return &p, nil
}

// Save writes the protocol parameters to a file.
func (p *Params) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing params file: %w", err)
	}

	return nil
}

// Validate checks that the parameters are usable.
func (p *Params) Validate() error {
	for i, r := range p.Rates {
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			return fmt.Errorf("rates[%d] must be positive and finite", i)
		}
	}
	if math.IsNaN(p.BaseTxGas) || math.IsInf(p.BaseTxGas, 0) || p.BaseTxGas < 0 {
		return fmt.Errorf("base_tx_gas must be non-negative and finite")
	}
	if math.IsNaN(p.GasRate) || math.IsInf(p.GasRate, 0) || p.GasRate <= 0 {
		return fmt.Errorf("gas_rate must be positive and finite")
	}
	if p.MaxInputs < 1 || p.MaxInputs > MaxTxInputs {
		return fmt.Errorf("max_inputs must be in range [1, %d]", MaxTxInputs)
	}
	if p.MaxOutputs < 1 || p.MaxOutputs > MaxTxOutputs {
		return fmt.Errorf("max_outputs must be in range [1, %d]", MaxTxOutputs)
	}
	return nil
}
