package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decoded is extracted text converted to UTF-8.
type Decoded struct {
	Text string
	// Encoding names the charset the bytes were read as.
	Encoding string
	// Lossy is set when invalid sequences were replaced with U+FFFD.
	Lossy bool
}

// Decode converts subtitle bytes to UTF-8 text.
//
// A UTF-8 BOM is stripped and a UTF-16 BOM selects UTF-16. Bytes that are not
// valid UTF-8 are decoded with fallback (an htmlindex charset name such as
// "gb18030"); an empty fallback replaces invalid sequences instead.
func Decode(data []byte, fallback string) (Decoded, error) {
	if bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE) {
		decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		out, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return Decoded{}, fmt.Errorf("decode utf-16: %w", err)
		}
		return Decoded{Text: string(out), Encoding: "utf-16"}, nil
	}

	data = bytes.TrimPrefix(data, bomUTF8)
	if utf8.Valid(data) {
		return Decoded{Text: string(data), Encoding: "utf-8"}, nil
	}

	fallback = strings.ToLower(strings.TrimSpace(fallback))
	if fallback == "" {
		return Decoded{
			Text:     strings.ToValidUTF8(string(data), "\uFFFD"),
			Encoding: "utf-8",
			Lossy:    true,
		}, nil
	}

	enc, err := htmlindex.Get(fallback)
	if err != nil {
		return Decoded{}, fmt.Errorf("unknown fallback encoding %q: %w", fallback, err)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return Decoded{}, fmt.Errorf("decode %s: %w", fallback, err)
	}
	name, _ := htmlindex.Name(enc)
	if name == "" {
		name = fallback
	}
	return Decoded{Text: string(out), Encoding: name}, nil
}
