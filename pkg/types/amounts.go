package types

// CurrencyAmounts holds one amount per currency type, indexed by ordinal.
// It serializes as a fixed three-element JSON array.
type CurrencyAmounts [NumCurrencies]float64

// Get returns the amount for a currency type, or 0 for an invalid type.
func (a CurrencyAmounts) Get(c CurrencyType) float64 {
	if !c.Valid() {
		return 0
	}
	return a[c]
}

// Add adds v to the amount for a currency type. Invalid types are ignored.
func (a *CurrencyAmounts) Add(c CurrencyType, v float64) {
	if c.Valid() {
		a[c] += v
	}
}

// IsZero returns true if every per-currency amount is zero.
func (a CurrencyAmounts) IsZero() bool {
	return a == CurrencyAmounts{}
}
