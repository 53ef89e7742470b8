package types

import "fmt"

// Position locates an output on the ledger by block and slot coordinates.
// The wallet carries it on unspent records for display and audit; it is not
// part of any signed structure.
type Position struct {
	Block uint64 `json:"block"`
	Slot  uint32 `json:"slot"`
}

// String returns "block/slot".
func (p Position) String() string {
	return fmt.Sprintf("%d/%d", p.Block, p.Slot)
}
