package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
)

// Signature is an ECDSA signature with the r and s scalars stored as
// fixed-width lowercase hex strings.
type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
}

// IsZero reports whether the signature is unset.
func (s Signature) IsZero() bool {
	return s.R == "" && s.S == ""
}

// Sign signs msg with the private key. msg is the raw canonical payload:
// it is hashed with SHA-256 exactly once here, so callers must never
// pre-hash.
func (k *PrivateKey) Sign(msg []byte) (Signature, error) {
	if k == nil || k.key == nil {
		return Signature{}, ErrInvalidPrivateKey
	}
	digest := Hash(msg)
	r, s, err := ecdsa.Sign(rand.Reader, k.key, digest[:])
	if err != nil {
		return Signature{}, fmt.Errorf("crypto: sign: %w", err)
	}
	return Signature{
		R: fmt.Sprintf("%064x", r),
		S: fmt.Sprintf("%064x", s),
	}, nil
}

// Verify reports whether sig is a valid signature over msg by this key.
// msg is hashed with SHA-256 exactly once, matching Sign.
func (p PublicKey) Verify(msg []byte, sig Signature) bool {
	point, err := p.Point()
	if err != nil {
		return false
	}
	r, ok := parseHexInt(sig.R)
	if !ok {
		return false
	}
	s, ok := parseHexInt(sig.S)
	if !ok {
		return false
	}
	digest := Hash(msg)
	return ecdsa.Verify(point, digest[:], r, s)
}
