package wallet

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// deriveSalt is the fixed HKDF salt. Changing it changes every key the
// same seed derives, so it is versioned.
var deriveSalt = []byte("trivium-wallet-keys-v1")

// maxDeriveAttempts bounds the rejection sampling loop. A P-256 scalar
// candidate is rejected with probability about 2^-32, so more than a
// couple of draws is already astronomically unlikely.
const maxDeriveAttempts = 32

// DeriveAccountKey derives the account-level P-256 key from a wallet
// seed. Deterministic: the same seed always yields the same key.
func DeriveAccountKey(seed []byte) (*crypto.PrivateKey, error) {
	return deriveKey(seed, "account")
}

// DeriveAddressKey derives the address-level key for one currency and
// derivation index. Every (currency, index) pair yields an independent
// key, all recoverable from the seed alone.
func DeriveAddressKey(seed []byte, currency types.CurrencyType, index uint32) (*crypto.PrivateKey, error) {
	if !currency.Valid() {
		return nil, fmt.Errorf("invalid currency %d", currency)
	}
	return deriveKey(seed, fmt.Sprintf("address/%d/%d", currency, index))
}

// deriveKey expands the seed with HKDF-SHA256 under a domain-separation
// info string and rejection-samples candidates until one is a valid
// P-256 scalar in [1, N-1].
func deriveKey(seed []byte, info string) (*crypto.PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}

	r := hkdf.New(sha256.New, seed, deriveSalt, []byte(info))
	buf := make([]byte, crypto.ScalarSize)
	defer zeroBytes(buf)

	for i := 0; i < maxDeriveAttempts; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("expand seed: %w", err)
		}
		key, err := crypto.PrivateKeyFromBytes(buf)
		if err == nil {
			return key, nil
		}
	}
	return nil, fmt.Errorf("no valid scalar for %q after %d attempts", info, maxDeriveAttempts)
}

// zeroBytes overwrites b with zeros.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
