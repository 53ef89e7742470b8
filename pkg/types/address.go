package types

import (
	"fmt"
	"strings"
)

// AddressLen is the length of a hex-encoded address in characters (20 bytes).
const AddressLen = 40

// Address is a 160-bit account address rendered as 40 lowercase hex
// characters, the form the remote ledger service expects. The empty string
// is a legal value: pay-for-gas pseudo-outputs carry no destination address.
type Address string

// Empty returns true for the zero address.
func (a Address) Empty() bool {
	return a == ""
}

// Valid returns true if the address is empty or exactly 40 lowercase hex
// characters.
func (a Address) Valid() bool {
	if a == "" {
		return true
	}
	if len(a) != AddressLen {
		return false
	}
	for i := 0; i < len(a); i++ {
		c := a[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// String returns the address as a plain string.
func (a Address) String() string {
	return string(a)
}

// ParseAddress normalizes s to lowercase and validates it as an address.
// The empty string parses to the empty address.
func ParseAddress(s string) (Address, error) {
	a := Address(strings.ToLower(s))
	if !a.Valid() {
		return "", fmt.Errorf("invalid address %q: want %d lowercase hex chars", s, AddressLen)
	}
	return a, nil
}
