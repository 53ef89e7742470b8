package tx

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
)

// Mode selects which transaction fields are blanked during canonical
// serialization. Inputs and outputs are never affected by the mode:
// every one of their fields, zero-valued or not, is always emitted.
type Mode int

const (
	// ModeFull emits every field as stored.
	ModeFull Mode = iota
	// ModeID blanks id, size and the whole-transaction signature. The
	// hash over these bytes is the transaction identifier.
	ModeID
	// ModeSign blanks size and the whole-transaction signature but
	// emits the id field as stored. Transaction.Sign blanks the id
	// itself around the serialization, so the signed bytes carry an
	// empty id without the field being excluded.
	ModeSign
	// ModeSize blanks only the size field. The byte length of these
	// bytes is the transaction size.
	ModeSize
)

// ErrBadMode reports an undefined serialization mode.
var ErrBadMode = errors.New("undefined canonical mode")

// Canonical returns the output's canonical bytes.
//
// Key order: address, value, currency, group, pubKey{x, y}, interest,
// payGas, crossChain, orgIssued. Public-key coordinates are unquoted
// decimal numerals converted from the stored hex.
func (o *Output) Canonical() ([]byte, error) {
	var buf bytes.Buffer
	if err := appendOutput(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Canonical returns the input's canonical bytes.
//
// Key order: prevTx, prevIndex, address, outputHash, signature{r, s}.
// outputHash uses the length-prefixed byte-array form and the signature
// scalars are unquoted decimal numerals.
func (in *Input) Canonical() ([]byte, error) {
	var buf bytes.Buffer
	if err := appendInput(&buf, in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Canonical returns the transaction's canonical bytes under mode.
//
// Key order: id, size, class, total, amounts, org, inputs, outputs,
// signature{r, s}, payload. amounts is a 3-element array indexed by
// currency ordinal. Serialization is deterministic: the same logical
// transaction always yields byte-identical output.
func (t *Transaction) Canonical(mode Mode) ([]byte, error) {
	id, size, sig := t.ID, t.Size, t.Signature
	switch mode {
	case ModeFull:
	case ModeID:
		id, size, sig = "", 0, crypto.Signature{}
	case ModeSign:
		size, sig = 0, crypto.Signature{}
	case ModeSize:
		size = 0
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadMode, mode)
	}

	r, err := decimalFromHex(sig.R)
	if err != nil {
		return nil, fmt.Errorf("signature r: %w", err)
	}
	s, err := decimalFromHex(sig.S)
	if err != nil {
		return nil, fmt.Errorf("signature s: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	appendQuoted(&buf, id)
	buf.WriteString(`,"size":`)
	buf.WriteString(strconv.Itoa(size))
	buf.WriteString(`,"class":`)
	buf.WriteString(strconv.Itoa(int(t.Class)))
	buf.WriteString(`,"total":`)
	buf.WriteString(formatNumber(t.Total))
	buf.WriteString(`,"amounts":[`)
	for i, v := range t.Amounts {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(formatNumber(v))
	}
	buf.WriteString(`],"org":`)
	appendQuoted(&buf, t.Org)
	buf.WriteString(`,"inputs":[`)
	for i := range t.Inputs {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendInput(&buf, &t.Inputs[i]); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}
	buf.WriteString(`],"outputs":[`)
	for i := range t.Outputs {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendOutput(&buf, &t.Outputs[i]); err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
	}
	buf.WriteString(`],"signature":{"r":`)
	buf.WriteString(r)
	buf.WriteString(`,"s":`)
	buf.WriteString(s)
	buf.WriteString(`},"payload":`)
	appendQuoted(&buf, t.Payload)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func appendOutput(buf *bytes.Buffer, o *Output) error {
	x, err := decimalFromHex(o.PubKey.X)
	if err != nil {
		return fmt.Errorf("pubKey x: %w", err)
	}
	y, err := decimalFromHex(o.PubKey.Y)
	if err != nil {
		return fmt.Errorf("pubKey y: %w", err)
	}

	buf.WriteString(`{"address":`)
	appendQuoted(buf, string(o.Address))
	buf.WriteString(`,"value":`)
	buf.WriteString(formatNumber(o.Value))
	buf.WriteString(`,"currency":`)
	buf.WriteString(strconv.Itoa(int(o.Currency)))
	buf.WriteString(`,"group":`)
	appendQuoted(buf, o.Group)
	buf.WriteString(`,"pubKey":{"x":`)
	buf.WriteString(x)
	buf.WriteString(`,"y":`)
	buf.WriteString(y)
	buf.WriteString(`},"interest":`)
	buf.WriteString(formatNumber(o.Interest))
	buf.WriteString(`,"payGas":`)
	buf.WriteString(strconv.FormatBool(o.PayGas))
	buf.WriteString(`,"crossChain":`)
	buf.WriteString(strconv.FormatBool(o.CrossChain))
	buf.WriteString(`,"orgIssued":`)
	buf.WriteString(strconv.FormatBool(o.OrgIssued))
	buf.WriteByte('}')
	return nil
}

func appendInput(buf *bytes.Buffer, in *Input) error {
	r, err := decimalFromHex(in.Signature.R)
	if err != nil {
		return fmt.Errorf("signature r: %w", err)
	}
	s, err := decimalFromHex(in.Signature.S)
	if err != nil {
		return fmt.Errorf("signature s: %w", err)
	}

	buf.WriteString(`{"prevTx":`)
	appendQuoted(buf, in.PrevTx)
	buf.WriteString(`,"prevIndex":`)
	buf.WriteString(strconv.FormatUint(uint64(in.PrevIndex), 10))
	buf.WriteString(`,"address":`)
	appendQuoted(buf, string(in.Address))
	buf.WriteString(`,"outputHash":`)
	appendBytes(buf, in.OutputHash[:])
	buf.WriteString(`,"signature":{"r":`)
	buf.WriteString(r)
	buf.WriteString(`,"s":`)
	buf.WriteString(s)
	buf.WriteString(`}}`)
	return nil
}

// appendBytes writes b in the length-prefixed array form the ledger
// service expects for byte fields: [n,b0,b1,...,bn-1].
func appendBytes(buf *bytes.Buffer, b []byte) {
	buf.WriteByte('[')
	buf.WriteString(strconv.Itoa(len(b)))
	for _, v := range b {
		buf.WriteByte(',')
		buf.WriteString(strconv.Itoa(int(v)))
	}
	buf.WriteByte(']')
}

// appendQuoted writes s as a quoted JSON string with minimal escaping:
// quote, backslash and control characters only, lowercase \u escapes.
func appendQuoted(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
