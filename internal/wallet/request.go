package wallet

import (
	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// Payee is one requested payment. Payees are kept in a slice, not a map:
// output order must be deterministic.
type Payee struct {
	Address  types.Address      `json:"address"`
	Currency types.CurrencyType `json:"currency"`
	Amount   float64            `json:"amount"`
	PubKey   crypto.PublicKey   `json:"pub_key"`
	Group    string             `json:"group"`
	Interest float64            `json:"interest"`
}

// GasPolicy decides what happens to leftover gas after the budget is met.
type GasPolicy uint8

const (
	// GasRetain leaves leftover gas with the senders; the transaction
	// carries none of it.
	GasRetain GasPolicy = iota

	// GasToChange attaches leftover gas to the first change output,
	// falling back to spreading when the transaction has no change.
	GasToChange

	// GasSpread divides leftover gas evenly across the payee outputs.
	GasSpread
)

func (p GasPolicy) String() string {
	switch p {
	case GasRetain:
		return "retain"
	case GasToChange:
		return "to-change"
	case GasSpread:
		return "spread"
	default:
		return "unknown"
	}
}

// PaymentRequest describes one transaction to build. All amounts are
// denominated per currency; Amounts must equal the payee sums (plus
// GasMint on the primary currency) exactly.
type PaymentRequest struct {
	Total       float64                              `json:"total"`
	Amounts     types.CurrencyAmounts                `json:"amounts"`
	Payees      []Payee                              `json:"payees"`
	Sources     []types.Address                      `json:"sources"`
	ChangeAddrs map[types.CurrencyType]types.Address `json:"change_addrs"`
	CrossChain  bool                                 `json:"cross_chain"`
	Pledge      bool                                 `json:"pledge"`
	GasMint     float64                              `json:"gas_mint"`
	GasPolicy   GasPolicy                            `json:"gas_policy"`
	Payload     string                               `json:"payload"`
}
