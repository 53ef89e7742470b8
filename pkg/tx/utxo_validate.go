package tx

import (
	"errors"
	"fmt"

	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
)

// Origin-aware verification errors.
var (
	ErrOriginNotFound    = errors.New("spent output not found")
	ErrUnspendableOutput = errors.New("pay-for-gas output cannot be spent")
	ErrOwnerMismatch     = errors.New("input address does not own the spent output")
	ErrKeyMismatch       = errors.New("output public key does not derive its address")
	ErrHashMismatch      = errors.New("stored output hash does not match the spent output")
	ErrInvalidSig        = errors.New("invalid signature")
)

// OriginProvider resolves the output a given input spends. The wallet
// snapshot implements it over unspent records; a verifier with full
// ledger access can implement it over history.
type OriginProvider interface {
	Origin(prevTx string, prevIndex uint32) (*Output, error)
}

// VerifyWithOrigins performs full verification of a signed transaction
// against a ledger view: shape rules, identifier and size recomputation,
// per-input origin resolution with ownership and hash checks, input
// signatures against the origin public keys, and the whole-transaction
// signature against the account public key.
func (t *Transaction) VerifyWithOrigins(provider OriginProvider, accountPub crypto.PublicKey) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := t.CheckID(); err != nil {
		return err
	}
	if err := t.CheckSize(); err != nil {
		return err
	}

	for i := range t.Inputs {
		in := &t.Inputs[i]
		origin, err := provider.Origin(in.PrevTx, in.PrevIndex)
		if err != nil {
			return fmt.Errorf("input %d (%s/%d): %w", i, in.PrevTx, in.PrevIndex, err)
		}
		if origin == nil {
			return fmt.Errorf("input %d (%s/%d): %w", i, in.PrevTx, in.PrevIndex, ErrOriginNotFound)
		}
		if origin.PayGas {
			return fmt.Errorf("input %d: %w", i, ErrUnspendableOutput)
		}
		if origin.Address != in.Address {
			return fmt.Errorf("input %d: %w: input %s, output %s", i, ErrOwnerMismatch, in.Address, origin.Address)
		}
		derived, err := crypto.DeriveAddress(origin.PubKey)
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		if derived != origin.Address {
			return fmt.Errorf("input %d: %w: derived %s, output %s", i, ErrKeyMismatch, derived, origin.Address)
		}
		originHash, err := origin.Hash()
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		if in.OutputHash != originHash {
			return fmt.Errorf("input %d: %w", i, ErrHashMismatch)
		}
		if in.Signature.IsZero() {
			return fmt.Errorf("input %d: %w: missing", i, ErrInvalidSig)
		}
		if !in.Verify(origin.PubKey) {
			return fmt.Errorf("input %d: %w", i, ErrInvalidSig)
		}
	}

	if t.Signature.IsZero() {
		return fmt.Errorf("transaction: %w: missing", ErrInvalidSig)
	}
	if !t.VerifySignature(accountPub) {
		return fmt.Errorf("transaction: %w", ErrInvalidSig)
	}
	return nil
}
