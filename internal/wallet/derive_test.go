package wallet

import (
	"testing"

	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

func testSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(
		"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	return seed
}

func TestDeriveAccountKey_Deterministic(t *testing.T) {
	seed := testSeed(t)

	k1, err := DeriveAccountKey(seed)
	if err != nil {
		t.Fatalf("DeriveAccountKey() error: %v", err)
	}
	k2, err := DeriveAccountKey(seed)
	if err != nil {
		t.Fatalf("DeriveAccountKey() error: %v", err)
	}
	if k1.Hex() != k2.Hex() {
		t.Error("same seed should derive the same account key")
	}
}

func TestDeriveAddressKey_Deterministic(t *testing.T) {
	seed := testSeed(t)

	k1, err := DeriveAddressKey(seed, types.CurrencyPrimary, 0)
	if err != nil {
		t.Fatalf("DeriveAddressKey() error: %v", err)
	}
	k2, err := DeriveAddressKey(seed, types.CurrencyPrimary, 0)
	if err != nil {
		t.Fatalf("DeriveAddressKey() error: %v", err)
	}
	if k1.Hex() != k2.Hex() {
		t.Error("same (seed, currency, index) should derive the same key")
	}
}

func TestDeriveAddressKey_DomainSeparation(t *testing.T) {
	seed := testSeed(t)

	account, err := DeriveAccountKey(seed)
	if err != nil {
		t.Fatalf("DeriveAccountKey() error: %v", err)
	}

	seen := map[string]string{"account": account.Hex()}
	for _, c := range types.Currencies() {
		for index := uint32(0); index < 3; index++ {
			key, err := DeriveAddressKey(seed, c, index)
			if err != nil {
				t.Fatalf("DeriveAddressKey(%v, %d) error: %v", c, index, err)
			}
			label := c.String() + "/" + string(rune('0'+index))
			for other, hex := range seen {
				if hex == key.Hex() {
					t.Errorf("key for %s collides with %s", label, other)
				}
			}
			seen[label] = key.Hex()
		}
	}
}

func TestDeriveAddressKey_SeedChangesKeys(t *testing.T) {
	seed := testSeed(t)
	other, err := SeedFromMnemonic(
		"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art", "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}

	k1, err := DeriveAddressKey(seed, types.CurrencyPrimary, 0)
	if err != nil {
		t.Fatalf("DeriveAddressKey() error: %v", err)
	}
	k2, err := DeriveAddressKey(other, types.CurrencyPrimary, 0)
	if err != nil {
		t.Fatalf("DeriveAddressKey() error: %v", err)
	}
	if k1.Hex() == k2.Hex() {
		t.Error("different seeds should derive different keys")
	}
}

func TestDeriveAddressKey_InvalidCurrency(t *testing.T) {
	if _, err := DeriveAddressKey(testSeed(t), types.CurrencyType(99), 0); err == nil {
		t.Error("invalid currency should be rejected")
	}
}

func TestDeriveKey_WrongSeedSize(t *testing.T) {
	if _, err := DeriveAccountKey(make([]byte, 32)); err == nil {
		t.Error("short seed should be rejected")
	}
	if _, err := DeriveAccountKey(nil); err == nil {
		t.Error("nil seed should be rejected")
	}
}

func TestDeriveAddressKey_UsableForSigning(t *testing.T) {
	key, err := DeriveAddressKey(testSeed(t), types.CurrencySecondaryA, 7)
	if err != nil {
		t.Fatalf("DeriveAddressKey() error: %v", err)
	}

	addr, err := crypto.DeriveAddress(key.Public())
	if err != nil {
		t.Fatalf("DeriveAddress() error: %v", err)
	}
	if !addr.Valid() {
		t.Errorf("derived address %q is not valid", addr)
	}

	msg := []byte("spend authorization")
	sig, err := key.Sign(msg)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if !key.Public().Verify(msg, sig) {
		t.Error("signature from derived key should verify")
	}
}
