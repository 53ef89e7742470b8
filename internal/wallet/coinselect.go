package wallet

import (
	"fmt"

	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// ConsumedRecord pairs an unspent record with the address that owns it,
// so the builder knows which address-level key signs the input.
type ConsumedRecord struct {
	Owner  types.Address
	Record UnspentOutputRecord
}

// Selection is the result of input selection for one currency.
type Selection struct {
	Consumed []ConsumedRecord
	Total    float64 // Sum of consumed record values.
	Change   float64 // Surplus over the target, 0 when exact.
}

// SelectRecords accumulates unspent records of one currency until the
// target is covered. Addresses are visited in caller-supplied order and
// records within an address in their stored order; the walk stops as
// soon as the accumulated value reaches the target.
//
// Any surplus becomes exactly one change amount for the caller-designated
// change address; selection fails when change is needed and no change
// address was designated. A shortfall fails with ErrInsufficientFunds
// before any signing machinery runs.
func SelectRecords(snap *Snapshot, addrs []types.Address, currency types.CurrencyType, target float64, changeAddr types.Address) (*Selection, error) {
	if target <= 0 {
		return nil, fmt.Errorf("%w: selection target must be positive, got %v", ErrStructural, target)
	}

	sel := &Selection{}
	for _, addr := range addrs {
		entry := snap.Entry(addr)
		if entry == nil {
			return nil, fmt.Errorf("%w: source %s not in snapshot", ErrAddressNotFound, addr)
		}
		if entry.Currency != currency {
			continue
		}
		for _, rec := range entry.Records {
			if rec.Value <= 0 || rec.Currency != currency {
				continue
			}
			sel.Consumed = append(sel.Consumed, ConsumedRecord{Owner: addr, Record: rec})
			sel.Total += rec.Value
			if sel.Total >= target {
				break
			}
		}
		if sel.Total >= target {
			break
		}
	}

	if sel.Total < target {
		return nil, fmt.Errorf("%w: currency %s: have %v, need %v",
			ErrInsufficientFunds, currency, sel.Total, target)
	}

	if sel.Total > target {
		if changeAddr.Empty() {
			return nil, fmt.Errorf("%w: change of %v required for currency %s but no change address designated",
				ErrStructural, sel.Total-target, currency)
		}
		sel.Change = sel.Total - target
	}
	return sel, nil
}
