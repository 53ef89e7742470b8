package crypto

import (
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// DeriveAddress derives the wallet address for a public key: the first
// 20 bytes of SHA-256 over the uncompressed point encoding, as lowercase
// hex. The ledger service derives addresses the same way, so the mapping
// must never change.
func DeriveAddress(pub PublicKey) (types.Address, error) {
	enc, err := pub.Uncompressed()
	if err != nil {
		return "", err
	}
	h := Hash(enc)
	return types.Address(hex.EncodeToString(h[:types.AddressLen/2])), nil
}

// AccountID derives the 8-digit account identifier shown to users. The
// private key hex is normalized (0x prefix stripped, leading zeros
// stripped, lowercased), checksummed with CRC-32 (IEEE), and folded into
// the range [10000000, 99999999]. This is a display identifier, not a
// security boundary.
func AccountID(privHex string) string {
	s := strings.ToLower(stripHexPrefix(privHex))
	s = strings.TrimLeft(s, "0")
	sum := crc32.ChecksumIEEE([]byte(s))
	return fmt.Sprintf("%08d", sum%90_000_000+10_000_000)
}
