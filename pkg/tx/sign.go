package tx

import (
	"errors"
	"fmt"

	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// ErrMissingID reports a whole-transaction signing attempt before the
// identifier was computed.
var ErrMissingID = errors.New("transaction id not computed")

// Hash computes the SHA-256 digest of the output's canonical bytes.
// Inputs store this digest to commit to the exact output they spend.
func (o *Output) Hash() (types.Hash, error) {
	b, err := o.Canonical()
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.Hash(b), nil
}

// Sign recomputes the referenced output's hash, stores it on the input,
// and signs the input's canonical bytes with the address-level key. The
// signature field is zeroed while the signable bytes are built, then
// replaced with the fresh signature.
func (in *Input) Sign(origin *Output, key *crypto.PrivateKey) error {
	h, err := origin.Hash()
	if err != nil {
		return fmt.Errorf("hash origin: %w", err)
	}
	in.OutputHash = h
	in.Signature = crypto.Signature{}
	b, err := in.Canonical()
	if err != nil {
		return err
	}
	sig, err := key.Sign(b)
	if err != nil {
		return err
	}
	in.Signature = sig
	return nil
}

// Verify reports whether the input's signature is valid for pub. The
// signable bytes are rebuilt with the signature field zeroed, exactly as
// Sign produced them.
func (in *Input) Verify(pub crypto.PublicKey) bool {
	probe := *in
	probe.Signature = crypto.Signature{}
	b, err := probe.Canonical()
	if err != nil {
		return false
	}
	return pub.Verify(b, in.Signature)
}

// ComputeID returns the transaction identifier: the lowercase hex form
// of the SHA-256 digest over the ModeID canonical bytes.
func (t *Transaction) ComputeID() (string, error) {
	b, err := t.Canonical(ModeID)
	if err != nil {
		return "", err
	}
	return crypto.Hash(b).String(), nil
}

// ComputeSize returns the transaction size: the byte length of the
// ModeSize canonical bytes.
func (t *Transaction) ComputeSize() (int, error) {
	b, err := t.Canonical(ModeSize)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// Sign attaches the whole-transaction signature using the account-level
// key. The identifier must already be computed; it is blanked for the
// duration of the serialization and restored afterwards, so the signed
// bytes never depend on it. The computed, blanked, restored order is
// part of the wire contract and must not be reordered.
func (t *Transaction) Sign(key *crypto.PrivateKey) error {
	if t.ID == "" {
		return ErrMissingID
	}
	id := t.ID
	t.ID = ""
	b, err := t.Canonical(ModeSign)
	t.ID = id
	if err != nil {
		return err
	}
	sig, err := key.Sign(b)
	if err != nil {
		return err
	}
	t.Signature = sig
	return nil
}

// VerifySignature reports whether the whole-transaction signature is
// valid for pub, rebuilding the signable bytes the way Sign did.
func (t *Transaction) VerifySignature(pub crypto.PublicKey) bool {
	probe := *t
	probe.ID = ""
	b, err := probe.Canonical(ModeSign)
	if err != nil {
		return false
	}
	return pub.Verify(b, t.Signature)
}

// CheckID recomputes the identifier of a signed transaction and
// compares it to the stored one. The identifier is assigned at assembly,
// before input signatures exist, so those are zeroed for the
// recomputation; the output hashes the inputs carry are part of the
// identified content.
func (t *Transaction) CheckID() error {
	probe := t.assemblyState()
	want, err := probe.ComputeID()
	if err != nil {
		return err
	}
	if t.ID != want {
		return fmt.Errorf("transaction id mismatch: have %s, want %s", t.ID, want)
	}
	return nil
}

// CheckSize recomputes the size field the way the builder assigned it,
// with the identifier already present and input signatures still zero,
// and compares it to the stored one.
func (t *Transaction) CheckSize() error {
	probe := t.assemblyState()
	want, err := probe.ComputeSize()
	if err != nil {
		return err
	}
	if t.Size != want {
		return fmt.Errorf("transaction size mismatch: have %d, want %d", t.Size, want)
	}
	return nil
}

// assemblyState returns a copy of the transaction as it looked when the
// identifier and size were assigned: no signature anywhere, input output
// hashes and everything else as stored.
func (t *Transaction) assemblyState() *Transaction {
	probe := *t
	probe.Signature = crypto.Signature{}
	probe.Inputs = append([]Input(nil), t.Inputs...)
	for i := range probe.Inputs {
		probe.Inputs[i].Signature = crypto.Signature{}
	}
	return &probe
}
