package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	// ScalarSize is the byte length of a P-256 scalar or coordinate.
	ScalarSize = 32

	// ScalarHexLen is the length of a fixed-width hex-encoded scalar.
	ScalarHexLen = 2 * ScalarSize
)

var (
	// ErrInvalidPrivateKey indicates a scalar outside the range [1, N-1].
	ErrInvalidPrivateKey = errors.New("crypto: invalid private key")

	// ErrInvalidPublicKey indicates coordinates that do not form a point
	// on the P-256 curve.
	ErrInvalidPublicKey = errors.New("crypto: invalid public key")
)

// PublicKey is a point on P-256 with coordinates stored as fixed-width
// lowercase hex strings. The hex form is authoritative: it is what enters
// canonical serialization and what the keystore persists.
type PublicKey struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// IsZero reports whether the key is unset.
func (p PublicKey) IsZero() bool {
	return p.X == "" && p.Y == ""
}

// Point returns the ecdsa form of the key, validating that the
// coordinates lie on the curve.
func (p PublicKey) Point() (*ecdsa.PublicKey, error) {
	x, ok := parseHexInt(p.X)
	if !ok {
		return nil, fmt.Errorf("%w: bad x coordinate", ErrInvalidPublicKey)
	}
	y, ok := parseHexInt(p.Y)
	if !ok {
		return nil, fmt.Errorf("%w: bad y coordinate", ErrInvalidPublicKey)
	}
	if !elliptic.P256().IsOnCurve(x, y) {
		return nil, fmt.Errorf("%w: not on curve", ErrInvalidPublicKey)
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}

// Uncompressed returns the 65-byte uncompressed point encoding
// 0x04 || X || Y with fixed-width 32-byte big-endian coordinates.
func (p PublicKey) Uncompressed() ([]byte, error) {
	x, ok := parseHexInt(p.X)
	if !ok {
		return nil, fmt.Errorf("%w: bad x coordinate", ErrInvalidPublicKey)
	}
	y, ok := parseHexInt(p.Y)
	if !ok {
		return nil, fmt.Errorf("%w: bad y coordinate", ErrInvalidPublicKey)
	}
	if x.BitLen() > 8*ScalarSize || y.BitLen() > 8*ScalarSize {
		return nil, fmt.Errorf("%w: coordinate overflow", ErrInvalidPublicKey)
	}
	enc := make([]byte, 1+2*ScalarSize)
	enc[0] = 0x04
	x.FillBytes(enc[1 : 1+ScalarSize])
	y.FillBytes(enc[1+ScalarSize:])
	return enc, nil
}

// PrivateKey is an ECDSA private key on P-256.
type PrivateKey struct {
	key *ecdsa.PrivateKey
	pub PublicKey
}

// GenerateKey creates a new random private key.
func GenerateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate key: %w", err)
	}
	return wrapKey(key), nil
}

// PrivateKeyFromBytes builds a private key from a 32-byte big-endian
// scalar. The scalar must lie in [1, N-1].
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != ScalarSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPrivateKey, len(b), ScalarSize)
	}
	return privateKeyFromScalar(new(big.Int).SetBytes(b))
}

// ParsePrivateKey parses a hex-encoded private key scalar. A 0x prefix
// is accepted and ignored.
func ParsePrivateKey(s string) (*PrivateKey, error) {
	d, ok := parseHexInt(s)
	if !ok || len(stripHexPrefix(s)) > ScalarHexLen {
		return nil, fmt.Errorf("%w: malformed hex", ErrInvalidPrivateKey)
	}
	return privateKeyFromScalar(d)
}

func privateKeyFromScalar(d *big.Int) (*PrivateKey, error) {
	if d.Sign() <= 0 || d.Cmp(elliptic.P256().Params().N) >= 0 {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidPrivateKey)
	}
	key := new(ecdsa.PrivateKey)
	key.Curve = elliptic.P256()
	key.D = d
	key.X, key.Y = key.Curve.ScalarBaseMult(d.Bytes())
	return wrapKey(key), nil
}

func wrapKey(key *ecdsa.PrivateKey) *PrivateKey {
	return &PrivateKey{
		key: key,
		pub: PublicKey{
			X: fmt.Sprintf("%064x", key.X),
			Y: fmt.Sprintf("%064x", key.Y),
		},
	}
}

// Public returns the public key.
func (k *PrivateKey) Public() PublicKey {
	return k.pub
}

// Hex returns the scalar as fixed-width lowercase hex.
func (k *PrivateKey) Hex() string {
	return fmt.Sprintf("%064x", k.key.D)
}

// Bytes returns the scalar as a 32-byte big-endian value.
func (k *PrivateKey) Bytes() []byte {
	b := make([]byte, ScalarSize)
	k.key.D.FillBytes(b)
	return b
}

// Zero wipes the scalar from memory. The key is unusable afterwards.
func (k *PrivateKey) Zero() {
	if k.key == nil {
		return
	}
	bits := k.key.D.Bits()
	for i := range bits {
		bits[i] = 0
	}
	k.key.D.SetInt64(0)
	k.key = nil
}

func stripHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

func parseHexInt(s string) (*big.Int, bool) {
	s = stripHexPrefix(s)
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(s, 16)
}
