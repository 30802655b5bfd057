package convert

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NFC accepts strings and returns them in Unicode normalization form C.
var NFC = New("nfc", func(value any) Conversion {
	s, ok := value.(string)
	if !ok {
		return Reject("expected string, got %T", value)
	}
	if !utf8.ValidString(s) {
		return Reject("string is not valid UTF-8")
	}
	return Accept(norm.NFC.String(s))
})

// ShiftJIS decodes Shift_JIS encoded bytes into a UTF-8 string.
// Already valid UTF-8 strings pass through unchanged. Byte sequences that do
// not decode cleanly are rejected.
var ShiftJIS = New("sjis", func(value any) Conversion {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		if utf8.ValidString(v) {
			return Accept(v)
		}
		raw = []byte(v)
	default:
		return Reject("expected []byte or string, got %T", value)
	}

	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		return Reject("invalid Shift_JIS: %v", err)
	}
	// the decoder substitutes U+FFFD for undecodable input
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return Reject("invalid Shift_JIS byte sequence")
	}
	return Accept(string(out))
})
