// Package tx defines the wallet transaction model, its canonical
// serialization, and the signing protocol shared with the remote ledger
// service.
package tx

import (
	"fmt"

	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// Class tags the transaction category the ledger service dispatches on.
type Class uint8

const (
	// ClassDefault is an ordinary payment.
	ClassDefault Class = iota
	// ClassPledge locks primary currency into a pledge.
	ClassPledge
	// ClassCrossChain moves value to another ledger via a bridge payload.
	ClassCrossChain
	// ClassNoOrg marks a payment from an account without an organization.
	ClassNoOrg
)

func (c Class) String() string {
	switch c {
	case ClassDefault:
		return "default"
	case ClassPledge:
		return "pledge"
	case ClassCrossChain:
		return "cross-chain"
	case ClassNoOrg:
		return "no-org"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Input spends one output of a prior transaction. OutputHash is the
// canonical hash of that referenced output and is populated during
// signing; Signature proves ownership of the address-level key over the
// hash-bearing input.
type Input struct {
	PrevTx     string           `json:"prev_tx"`
	PrevIndex  uint32           `json:"prev_index"`
	Address    types.Address    `json:"address"`
	OutputHash types.Hash       `json:"output_hash"`
	Signature  crypto.Signature `json:"signature"`
}

// Output creates one spendable entry, or a pay-for-gas pseudo-entry when
// PayGas is set (those carry an empty address).
type Output struct {
	Address    types.Address      `json:"address"`
	Value      float64            `json:"value"`
	Currency   types.CurrencyType `json:"currency"`
	Group      string             `json:"group"`
	PubKey     crypto.PublicKey   `json:"pub_key"`
	Interest   float64            `json:"interest"`
	PayGas     bool               `json:"pay_gas"`
	CrossChain bool               `json:"cross_chain"`
	OrgIssued  bool               `json:"org_issued"`
}

// Transaction is the fully assembled wallet transaction. ID and Size are
// computed from the canonical form, never caller-supplied; Signature is
// the whole-transaction signature by the account-level key.
type Transaction struct {
	ID        string                `json:"id"`
	Size      int                   `json:"size"`
	Class     Class                 `json:"class"`
	Total     float64               `json:"total"`
	Amounts   types.CurrencyAmounts `json:"amounts"`
	Org       string                `json:"org"`
	Inputs    []Input               `json:"inputs"`
	Outputs   []Output              `json:"outputs"`
	Signature crypto.Signature      `json:"signature"`
	Payload   string                `json:"payload"`
}

// OutputValues sums the output values by currency. Pay-for-gas outputs
// count toward their (primary) currency like any other output.
func (t *Transaction) OutputValues() types.CurrencyAmounts {
	var sums types.CurrencyAmounts
	for i := range t.Outputs {
		sums.Add(t.Outputs[i].Currency, t.Outputs[i].Value)
	}
	return sums
}
