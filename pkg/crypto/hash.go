// Package crypto provides cryptographic primitives for the Trivium wallet:
// SHA-256 hashing, ECDSA signatures on the NIST P-256 curve, and the
// identity derivations mirrored by the remote ledger service.
package crypto

import (
	"crypto/sha256"

	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// Hash computes a SHA-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return sha256.Sum256(data)
}
