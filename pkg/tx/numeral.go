package tx

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ErrBadNumeral reports a hex field that cannot be read as a number.
var ErrBadNumeral = errors.New("malformed hex numeral")

// formatNumber renders f the way the ledger service renders numbers:
// shortest decimal digits that round-trip, plain notation for magnitudes
// within [1e-6, 1e21), exponent notation outside, no leading zero in the
// exponent. Negative zero renders as "0".
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if f < 0 {
		return "-" + formatNumber(-f)
	}

	// Shortest round-trip digits via the exponent form, then reassemble.
	mant := strconv.FormatFloat(f, 'e', -1, 64)
	e := strings.IndexByte(mant, 'e')
	exp, _ := strconv.Atoi(mant[e+1:])
	digits := mant[:e]
	if len(digits) > 1 {
		digits = digits[:1] + digits[2:]
	}

	// k is the position of the decimal point relative to the first
	// digit: value = 0.digits × 10^k.
	k := exp + 1
	n := len(digits)
	switch {
	case 1 <= k && k <= 21 && n <= k:
		return digits + strings.Repeat("0", k-n)
	case 1 <= k && k <= 21:
		return digits[:k] + "." + digits[k:]
	case -6 < k && k <= 0:
		return "0." + strings.Repeat("0", -k) + digits
	}

	sign := "+"
	ek := k - 1
	if ek < 0 {
		sign = "-"
		ek = -ek
	}
	if n == 1 {
		return digits + "e" + sign + strconv.Itoa(ek)
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(ek)
}

// decimalFromHex converts a hex-encoded numeral (optional 0x prefix) to
// its unquoted decimal literal. Empty hex, the convention for unset
// scalars, emits "0".
func decimalFromHex(s string) (string, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return "0", nil
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrBadNumeral, s)
	}
	return n.String(), nil
}
