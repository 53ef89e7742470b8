package tx

// GasCost returns the gas consumed when the ledger processes this
// transaction: the base transaction gas plus the interest carried by
// every output. The builder must fund this cost from accrued interest
// on the source addresses, optionally topped up by minting.
func (t *Transaction) GasCost(baseGas float64) float64 {
	cost := baseGas
	for i := range t.Outputs {
		cost += t.Outputs[i].Interest
	}
	return cost
}
