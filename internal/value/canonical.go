package value

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 style canonical JSON for a tree or for
// plain Go data convertible with FromAny:
//   - object keys sorted by UTF-16 code units
//   - no HTML escaping, strings NFC normalised
//   - Empty encodes as null, dates as RFC 3339 UTC strings, BigInt as a bare
//     integer literal
//   - non-finite numbers are rejected
//
// Equal trees always produce identical bytes, which is what golden traces and
// the journal rely on.
func MarshalCanonical(v any) ([]byte, error) {
	tree, ok := v.(Value)
	if !ok || tree == nil {
		var err error
		if tree, err = FromAny(v); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := writeCanonical(&buf, tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil, Empty:
		buf.WriteString("null")
	case String:
		writeCanonicalString(buf, string(val))
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		lit, err := formatNumber(float64(val))
		if err != nil {
			return err
		}
		buf.WriteString(lit)
	case BigInt:
		buf.WriteString(bigOrZero(val).String())
	case Date:
		writeCanonicalString(buf, val.Time.UTC().Format(time.RFC3339Nano))
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value %T", v)
	}
	return nil
}

// formatNumber follows the ECMAScript Number-to-String rules RFC 8785 asks
// for, close enough for the magnitudes forms carry.
func formatNumber(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite number %v is not allowed in canonical JSON", f)
	}
	if f == 0 {
		return "0", nil
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		lit := strconv.FormatFloat(f, 'e', -1, 64)
		// Go writes e+06 / e-07; ECMAScript drops the leading zero.
		lit = trimExponentZeros(lit)
		return lit, nil
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func trimExponentZeros(lit string) string {
	idx := strings.IndexByte(lit, 'e')
	if idx < 0 || idx+2 >= len(lit) {
		return lit
	}
	mantissa, sign, digits := lit[:idx], lit[idx+1], lit[idx+2:]
	for len(digits) > 1 && digits[0] == '0' {
		digits = digits[1:]
	}
	return mantissa + "e" + string(sign) + digits
}

// writeCanonicalString escapes only what RFC 8785 requires: quote, backslash
// and control characters below U+0020.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	const hex = "0123456789abcdef"
	buf.WriteByte('"')
	for _, r := range norm.NFC.String(s) {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hex[r>>4])
				buf.WriteByte(hex[r&0xf])
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}
