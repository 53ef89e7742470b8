package wallet

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
	"github.com/Trivium-tech/trivium-wallet/pkg/tx"
	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// fakeAddr builds a syntactically valid address from a one-byte tag.
func fakeAddr(tag byte) types.Address {
	return types.Address(strings.Repeat(fmt.Sprintf("%02x", tag), types.AddressLen/2))
}

// fakeTxID builds a 64-char transaction id from a one-byte tag.
func fakeTxID(tag byte) string {
	return strings.Repeat(fmt.Sprintf("%02x", tag), 32)
}

func fakeRecord(prevTx string, index uint32, value float64, c types.CurrencyType) UnspentOutputRecord {
	return UnspentOutputRecord{
		Value:     value,
		Currency:  c,
		PrevTx:    prevTx,
		PrevIndex: index,
		Origin: tx.Output{
			Value:    value,
			Currency: c,
		},
	}
}

// fakeEntry sums the record values into the cached balance, as a
// snapshot producer would.
func fakeEntry(tag byte, c types.CurrencyType, interest float64, recs ...UnspentOutputRecord) AddressEntry {
	var sum float64
	for _, r := range recs {
		sum += r.Value
	}
	return AddressEntry{
		Address:  fakeAddr(tag),
		Currency: c,
		Records:  recs,
		Balance:  BalanceBreakdown{Unspent: sum, Total: sum},
		Interest: interest,
	}
}

func fakeSnapshot(entries ...AddressEntry) *Snapshot {
	return &Snapshot{
		Account:   Account{ID: "10000001", Org: "acme"},
		Addresses: entries,
	}
}

func TestSnapshot_Entry(t *testing.T) {
	snap := fakeSnapshot(
		fakeEntry(0x01, types.CurrencyPrimary, 0, fakeRecord(fakeTxID(0xa0), 0, 5, types.CurrencyPrimary)),
		fakeEntry(0x02, types.CurrencySecondaryA, 0),
	)

	e := snap.Entry(fakeAddr(0x02))
	if e == nil {
		t.Fatal("Entry() = nil for a known address")
	}
	if e.Currency != types.CurrencySecondaryA {
		t.Errorf("Entry().Currency = %v, want %v", e.Currency, types.CurrencySecondaryA)
	}

	// The returned pointer aliases the snapshot.
	e.Interest = 7
	if snap.Addresses[1].Interest != 7 {
		t.Error("Entry() should return a pointer into the snapshot")
	}

	if snap.Entry(fakeAddr(0xff)) != nil {
		t.Error("Entry() should be nil for an unknown address")
	}
}

func TestSnapshot_Records(t *testing.T) {
	r := fakeRecord(fakeTxID(0xa0), 0, 5, types.CurrencyPrimary)
	snap := fakeSnapshot(fakeEntry(0x01, types.CurrencyPrimary, 0, r))

	got := snap.Records(fakeAddr(0x01))
	if len(got) != 1 || got[0].PrevTx != r.PrevTx {
		t.Errorf("Records() = %v, want the single stored record", got)
	}
	if snap.Records(fakeAddr(0xff)) != nil {
		t.Error("Records() should be nil for an unknown address")
	}
}

func TestSnapshot_BalanceByCurrency(t *testing.T) {
	snap := fakeSnapshot(
		fakeEntry(0x01, types.CurrencyPrimary, 0, fakeRecord(fakeTxID(0xa0), 0, 60, types.CurrencyPrimary)),
		fakeEntry(0x02, types.CurrencyPrimary, 0, fakeRecord(fakeTxID(0xa1), 0, 40, types.CurrencyPrimary)),
		fakeEntry(0x03, types.CurrencySecondaryB, 0, fakeRecord(fakeTxID(0xa2), 0, 8, types.CurrencySecondaryB)),
	)

	got := snap.BalanceByCurrency([]types.Address{
		fakeAddr(0x01), fakeAddr(0x02), fakeAddr(0x03), fakeAddr(0xff),
	})
	want := types.CurrencyAmounts{100, 0, 8}
	if got != want {
		t.Errorf("BalanceByCurrency() = %v, want %v", got, want)
	}
}

func TestSnapshot_TotalInterest(t *testing.T) {
	snap := fakeSnapshot(
		fakeEntry(0x01, types.CurrencyPrimary, 2.5),
		fakeEntry(0x02, types.CurrencyPrimary, 1.5),
	)

	got := snap.TotalInterest([]types.Address{fakeAddr(0x01), fakeAddr(0x02), fakeAddr(0xee)})
	if got != 4 {
		t.Errorf("TotalInterest() = %v, want 4", got)
	}
}

func TestSnapshot_Origin(t *testing.T) {
	r := fakeRecord(fakeTxID(0xa0), 2, 5, types.CurrencyPrimary)
	snap := fakeSnapshot(fakeEntry(0x01, types.CurrencyPrimary, 0, r))

	origin, err := snap.Origin(fakeTxID(0xa0), 2)
	if err != nil {
		t.Fatalf("Origin() error: %v", err)
	}
	if origin.Value != 5 {
		t.Errorf("Origin().Value = %v, want 5", origin.Value)
	}

	_, err = snap.Origin(fakeTxID(0xa0), 3)
	if !errors.Is(err, tx.ErrOriginNotFound) {
		t.Errorf("Origin() error = %v, want ErrOriginNotFound", err)
	}
}

func TestSnapshot_Check_Valid(t *testing.T) {
	snap := fakeSnapshot(
		fakeEntry(0x01, types.CurrencyPrimary, 1,
			fakeRecord(fakeTxID(0xa0), 0, 60, types.CurrencyPrimary),
			fakeRecord(fakeTxID(0xa0), 1, 40, types.CurrencyPrimary)),
		fakeEntry(0x02, types.CurrencySecondaryA, 0,
			fakeRecord(fakeTxID(0xa1), 0, 50, types.CurrencySecondaryA)),
	)
	if err := snap.Check(); err != nil {
		t.Errorf("Check() error: %v", err)
	}

	empty := fakeSnapshot()
	if err := empty.Check(); err != nil {
		t.Errorf("Check() on empty snapshot error: %v", err)
	}
}

func TestSnapshot_Check_Rejects(t *testing.T) {
	base := func() *Snapshot {
		return fakeSnapshot(
			fakeEntry(0x01, types.CurrencyPrimary, 0,
				fakeRecord(fakeTxID(0xa0), 0, 60, types.CurrencyPrimary)),
			fakeEntry(0x02, types.CurrencySecondaryA, 0,
				fakeRecord(fakeTxID(0xa1), 0, 50, types.CurrencySecondaryA)),
		)
	}

	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"malformed address", func(s *Snapshot) { s.Addresses[0].Address = "not-hex" }},
		{"empty address", func(s *Snapshot) { s.Addresses[0].Address = "" }},
		{"duplicate address", func(s *Snapshot) { s.Addresses[1] = s.Addresses[0] }},
		{"invalid currency", func(s *Snapshot) { s.Addresses[0].Currency = types.CurrencyType(9) }},
		{"record currency mismatch", func(s *Snapshot) { s.Addresses[0].Records[0].Currency = types.CurrencySecondaryB }},
		{"zero-value record", func(s *Snapshot) {
			s.Addresses[0].Records[0].Value = 0
			s.Addresses[0].Balance.Unspent = 0
		}},
		{"missing origin tx", func(s *Snapshot) { s.Addresses[0].Records[0].PrevTx = "" }},
		{"duplicate outpoint", func(s *Snapshot) {
			s.Addresses[1].Records[0].PrevTx = fakeTxID(0xa0)
			s.Addresses[1].Records[0].PrevIndex = 0
		}},
		{"balance mismatch", func(s *Snapshot) { s.Addresses[0].Balance.Unspent = 61 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := base()
			tt.mutate(snap)
			if err := snap.Check(); err == nil {
				t.Error("Check() should reject the mutated snapshot")
			}
		})
	}
}

func TestKeyPair_Signer(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}

	kp := KeyPair{Priv: key.Hex(), Pub: key.Public()}
	signer, err := kp.Signer()
	if err != nil {
		t.Fatalf("Signer() error: %v", err)
	}
	msg := []byte("spend")
	sig, err := signer.Sign(msg)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if !key.Public().Verify(msg, sig) {
		t.Error("signature from Signer() key should verify")
	}
}

func TestKeyPair_Signer_PubMismatch(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	other, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}

	kp := KeyPair{Priv: key.Hex(), Pub: other.Public()}
	if _, err := kp.Signer(); err == nil {
		t.Error("Signer() should reject a public key that does not match the scalar")
	}
}

func TestKeyPair_Signer_NoStoredPub(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}

	// A pair without the public half parses on trust.
	kp := KeyPair{Priv: key.Hex()}
	signer, err := kp.Signer()
	if err != nil {
		t.Fatalf("Signer() error: %v", err)
	}
	if signer.Public() != key.Public() {
		t.Error("Signer() should recover the matching public key")
	}
}

func TestKeyPair_Signer_BadHex(t *testing.T) {
	kp := KeyPair{Priv: "zz"}
	if _, err := kp.Signer(); err == nil {
		t.Error("Signer() should reject malformed key material")
	}
}
