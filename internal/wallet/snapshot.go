// Package wallet holds the wallet ledger model, input selection and the
// transaction builder, plus the encrypted keystore the identities live in.
package wallet

import (
	"fmt"

	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
	"github.com/Trivium-tech/trivium-wallet/pkg/tx"
	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// KeyPair is a hex-encoded P-256 key pair as carried by snapshot and
// keystore documents. The private scalar is parsed on demand for signing
// and never cached in parsed form.
type KeyPair struct {
	Priv string           `json:"priv"`
	Pub  crypto.PublicKey `json:"pub"`
}

// Signer parses the private scalar and checks it against the stored
// public key when one is present.
func (kp *KeyPair) Signer() (*crypto.PrivateKey, error) {
	key, err := crypto.ParsePrivateKey(kp.Priv)
	if err != nil {
		return nil, err
	}
	if !kp.Pub.IsZero() && kp.Pub != key.Public() {
		key.Zero()
		return nil, fmt.Errorf("public key does not match private scalar")
	}
	return key, nil
}

// Account is the wallet-level identity: an 8-digit account id, the
// account signing key pair and an optional organization.
type Account struct {
	ID   string  `json:"id"`
	Keys KeyPair `json:"keys"`
	Org  string  `json:"org"`
}

// BalanceBreakdown is the cached balance of one address.
type BalanceBreakdown struct {
	Unspent     float64 `json:"unspent"`
	Certificate float64 `json:"certificate"`
	Total       float64 `json:"total"`
}

// UnspentOutputRecord is one spendable output tracked for an address.
// Origin is a full copy of the output as it appeared in the originating
// transaction, sufficient to recompute its canonical hash.
type UnspentOutputRecord struct {
	Value     float64            `json:"value"`
	Currency  types.CurrencyType `json:"currency"`
	PrevTx    string             `json:"prev_tx"`
	PrevIndex uint32             `json:"prev_index"`
	Origin    tx.Output          `json:"origin"`
	Position  types.Position     `json:"position"`
}

// AddressEntry is one managed address: a single currency, its own key
// pair, its unspent records and cached balances.
type AddressEntry struct {
	Address  types.Address         `json:"address"`
	Currency types.CurrencyType    `json:"currency"`
	Keys     KeyPair               `json:"keys"`
	Records  []UnspentOutputRecord `json:"records"`
	Balance  BalanceBreakdown      `json:"balance"`
	Interest float64               `json:"interest"`
}

// Snapshot is the read-only wallet ledger view the builder consumes.
// The builder never mutates it; applying confirmed chain state is owned
// by whatever produced the snapshot.
type Snapshot struct {
	Account   Account        `json:"account"`
	Addresses []AddressEntry `json:"addresses"`
}

// Entry returns the address entry for addr, or nil.
func (s *Snapshot) Entry(addr types.Address) *AddressEntry {
	for i := range s.Addresses {
		if s.Addresses[i].Address == addr {
			return &s.Addresses[i]
		}
	}
	return nil
}

// Records returns the unspent records of addr, or nil if the address is
// not in the snapshot.
func (s *Snapshot) Records(addr types.Address) []UnspentOutputRecord {
	e := s.Entry(addr)
	if e == nil {
		return nil
	}
	return e.Records
}

// BalanceByCurrency sums the cached unspent balances of the given
// addresses per currency. Unknown addresses contribute nothing.
func (s *Snapshot) BalanceByCurrency(addrs []types.Address) types.CurrencyAmounts {
	var out types.CurrencyAmounts
	for _, a := range addrs {
		if e := s.Entry(a); e != nil {
			out.Add(e.Currency, e.Balance.Unspent)
		}
	}
	return out
}

// TotalInterest sums the accrued gas interest of the given addresses.
func (s *Snapshot) TotalInterest(addrs []types.Address) float64 {
	var total float64
	for _, a := range addrs {
		if e := s.Entry(a); e != nil {
			total += e.Interest
		}
	}
	return total
}

// Origin resolves a prior output reference from the snapshot's unspent
// records. It lets a Snapshot serve as the origin source when verifying
// a transaction built from it.
func (s *Snapshot) Origin(prevTx string, prevIndex uint32) (*tx.Output, error) {
	for i := range s.Addresses {
		for j := range s.Addresses[i].Records {
			rec := &s.Addresses[i].Records[j]
			if rec.PrevTx == prevTx && rec.PrevIndex == prevIndex {
				return &rec.Origin, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no record for %s:%d", tx.ErrOriginNotFound, prevTx, prevIndex)
}

// Check verifies the snapshot's internal consistency: valid currencies,
// per-entry balance invariant, and no duplicate addresses or output
// references. The CLI runs it after loading a snapshot document.
func (s *Snapshot) Check() error {
	seenAddr := make(map[types.Address]struct{}, len(s.Addresses))
	type ref struct {
		tx    string
		index uint32
	}
	seenRef := make(map[ref]struct{})

	for i := range s.Addresses {
		e := &s.Addresses[i]
		if !e.Address.Valid() || e.Address.Empty() {
			return fmt.Errorf("address %d: malformed address %q", i, e.Address)
		}
		if _, ok := seenAddr[e.Address]; ok {
			return fmt.Errorf("address %s listed twice", e.Address)
		}
		seenAddr[e.Address] = struct{}{}
		if !e.Currency.Valid() {
			return fmt.Errorf("address %s: invalid currency %d", e.Address, e.Currency)
		}

		var sum float64
		for j := range e.Records {
			rec := &e.Records[j]
			if rec.Currency != e.Currency {
				return fmt.Errorf("address %s record %d: currency %d does not match address currency %d",
					e.Address, j, rec.Currency, e.Currency)
			}
			if rec.Value <= 0 {
				return fmt.Errorf("address %s record %d: non-positive value %v", e.Address, j, rec.Value)
			}
			if rec.PrevTx == "" {
				return fmt.Errorf("address %s record %d: missing origin transaction", e.Address, j)
			}
			r := ref{rec.PrevTx, rec.PrevIndex}
			if _, ok := seenRef[r]; ok {
				return fmt.Errorf("output %s:%d referenced twice", rec.PrevTx, rec.PrevIndex)
			}
			seenRef[r] = struct{}{}
			sum += rec.Value
		}
		// The producer computes the cached balance from these same
		// records, so the sums must agree exactly.
		if sum != e.Balance.Unspent {
			return fmt.Errorf("address %s: records sum to %v, cached unspent balance is %v",
				e.Address, sum, e.Balance.Unspent)
		}
	}
	return nil
}
