package tx

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

type originMap map[string]*Output

func (m originMap) Origin(prevTx string, prevIndex uint32) (*Output, error) {
	o, ok := m[originKey(prevTx, prevIndex)]
	if !ok {
		return nil, ErrOriginNotFound
	}
	return o, nil
}

func originKey(prevTx string, prevIndex uint32) string {
	return fmt.Sprintf("%s/%d", prevTx, prevIndex)
}

// buildSignedTx assembles and signs a transaction the way the builder
// does: origin hashes stored at assembly, then id, then size, then input
// signatures, then the whole-transaction signature.
func buildSignedTx(t *testing.T) (*Transaction, originMap, crypto.PublicKey) {
	t.Helper()

	origin, addrKey := testOrigin(t, 100)
	accountKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	originHash, err := origin.Hash()
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	prev := strings.Repeat("cc", 32)
	trans := &Transaction{
		Class:   ClassDefault,
		Total:   100,
		Amounts: types.CurrencyAmounts{100, 0, 0},
		Inputs: []Input{
			{PrevTx: prev, PrevIndex: 0, Address: origin.Address, OutputHash: originHash},
		},
		Outputs: []Output{
			{Address: addrB, Value: 10, Currency: types.CurrencyPrimary},
			{Address: origin.Address, Value: 90, Currency: types.CurrencyPrimary, PubKey: origin.PubKey},
		},
	}

	id, err := trans.ComputeID()
	if err != nil {
		t.Fatalf("ComputeID() error = %v", err)
	}
	trans.ID = id
	size, err := trans.ComputeSize()
	if err != nil {
		t.Fatalf("ComputeSize() error = %v", err)
	}
	trans.Size = size

	if err := trans.Inputs[0].Sign(origin, addrKey); err != nil {
		t.Fatalf("input Sign() error = %v", err)
	}
	if err := trans.Sign(accountKey); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	return trans, originMap{originKey(prev, 0): origin}, accountKey.Public()
}

func cloneTx(tr *Transaction) *Transaction {
	c := *tr
	c.Inputs = append([]Input(nil), tr.Inputs...)
	c.Outputs = append([]Output(nil), tr.Outputs...)
	return &c
}

func TestVerifyWithOrigins(t *testing.T) {
	trans, origins, accountPub := buildSignedTx(t)
	if err := trans.VerifyWithOrigins(origins, accountPub); err != nil {
		t.Errorf("VerifyWithOrigins() error = %v", err)
	}
}

func TestVerifyWithOrigins_Failures(t *testing.T) {
	trans, origins, accountPub := buildSignedTx(t)
	origin := origins[originKey(trans.Inputs[0].PrevTx, 0)]

	foreign, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(tr *Transaction, o originMap) crypto.PublicKey
		wantErr error
	}{
		{
			"origin missing",
			func(tr *Transaction, o originMap) crypto.PublicKey {
				delete(o, originKey(tr.Inputs[0].PrevTx, 0))
				return accountPub
			},
			ErrOriginNotFound,
		},
		{
			"origin is pay-for-gas",
			func(tr *Transaction, o originMap) crypto.PublicKey {
				o[originKey(tr.Inputs[0].PrevTx, 0)] = &Output{Value: 1, PayGas: true}
				return accountPub
			},
			ErrUnspendableOutput,
		},
		{
			"owner mismatch",
			func(tr *Transaction, o originMap) crypto.PublicKey {
				swapped := *origin
				swapped.Address = addrB
				o[originKey(tr.Inputs[0].PrevTx, 0)] = &swapped
				return accountPub
			},
			ErrOwnerMismatch,
		},
		{
			"key does not derive address",
			func(tr *Transaction, o originMap) crypto.PublicKey {
				swapped := *origin
				swapped.PubKey = foreign.Public()
				o[originKey(tr.Inputs[0].PrevTx, 0)] = &swapped
				return accountPub
			},
			ErrKeyMismatch,
		},
		{
			"output hash mismatch",
			func(tr *Transaction, o originMap) crypto.PublicKey {
				swapped := *origin
				swapped.Value = 123
				o[originKey(tr.Inputs[0].PrevTx, 0)] = &swapped
				return accountPub
			},
			ErrHashMismatch,
		},
		{
			"missing input signature",
			func(tr *Transaction, o originMap) crypto.PublicKey {
				tr.Inputs[0].Signature = crypto.Signature{}
				return accountPub
			},
			ErrInvalidSig,
		},
		{
			"corrupt input signature",
			func(tr *Transaction, o originMap) crypto.PublicKey {
				tr.Inputs[0].Signature.R = "01"
				return accountPub
			},
			ErrInvalidSig,
		},
		{
			"foreign account key",
			func(tr *Transaction, o originMap) crypto.PublicKey {
				return foreign.Public()
			},
			ErrInvalidSig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := cloneTx(trans)
			o := originMap{}
			for k, v := range origins {
				o[k] = v
			}
			pub := tt.mutate(tr, o)
			if err := tr.VerifyWithOrigins(o, pub); !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyWithOrigins() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyWithOrigins_WrongID(t *testing.T) {
	trans, origins, accountPub := buildSignedTx(t)
	tr := cloneTx(trans)
	tr.ID = strings.Repeat("00", 32)
	if err := tr.VerifyWithOrigins(origins, accountPub); err == nil {
		t.Error("VerifyWithOrigins() accepted a wrong id")
	}
}

func TestVerifyWithOrigins_WrongSize(t *testing.T) {
	trans, origins, accountPub := buildSignedTx(t)
	tr := cloneTx(trans)
	tr.Size += 3
	if err := tr.VerifyWithOrigins(origins, accountPub); err == nil {
		t.Error("VerifyWithOrigins() accepted a wrong size")
	}
}
