// Package types defines core primitive types for the Trivium wallet.
package types

import (
	"encoding/json"
	"fmt"
)

// NumCurrencies is the number of currency types in the ledger.
const NumCurrencies = 3

// CurrencyType identifies one of the ledger's currencies. The ordinal values
// are part of the wire contract and must not be reordered.
type CurrencyType uint8

const (
	// CurrencyPrimary is the primary currency (ordinal 0). Gas is minted
	// from it, and cross-chain and pledge transactions are restricted to it.
	CurrencyPrimary CurrencyType = iota

	// CurrencySecondaryA is the first secondary currency (ordinal 1).
	CurrencySecondaryA

	// CurrencySecondaryB is the second secondary currency (ordinal 2).
	CurrencySecondaryB
)

// Valid returns true if c is one of the defined currency types.
func (c CurrencyType) Valid() bool {
	return c < NumCurrencies
}

// String returns a short name for the currency type.
func (c CurrencyType) String() string {
	switch c {
	case CurrencyPrimary:
		return "primary"
	case CurrencySecondaryA:
		return "secondary-a"
	case CurrencySecondaryB:
		return "secondary-b"
	default:
		return fmt.Sprintf("currency(%d)", uint8(c))
	}
}

// Currencies returns all currency types in ordinal order.
func Currencies() [NumCurrencies]CurrencyType {
	return [NumCurrencies]CurrencyType{CurrencyPrimary, CurrencySecondaryA, CurrencySecondaryB}
}

// UnmarshalJSON decodes a currency ordinal, rejecting undefined values.
func (c *CurrencyType) UnmarshalJSON(data []byte) error {
	var v uint8
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if !CurrencyType(v).Valid() {
		return fmt.Errorf("unknown currency type %d", v)
	}
	*c = CurrencyType(v)
	return nil
}
