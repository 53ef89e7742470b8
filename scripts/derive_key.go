// derive_key.go prints the account id and address for a hex-encoded private key file.
// Usage: go run scripts/derive_key.go <keyfile>
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_key <keyfile>")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	keyHex := strings.TrimSpace(string(data))
	key, err := crypto.ParsePrivateKey(keyHex)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	addr, err := crypto.DeriveAddress(key.Public())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	pub := key.Public()
	fmt.Printf("account=%s\n", crypto.AccountID(key.Hex()))
	fmt.Printf("pubkey=%s,%s\n", pub.X, pub.Y)
	fmt.Printf("address=%s\n", addr)
}
