package source

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding names how raw source bytes map to characters.
type Encoding string

const (
	UTF8        Encoding = "UTF-8"
	USASCII     Encoding = "US-ASCII"
	ASCII8BIT   Encoding = "ASCII-8BIT"
	ISO88591    Encoding = "ISO-8859-1"
	Windows1252 Encoding = "Windows-1252"
)

var encodingAliases = map[string]Encoding{
	"utf-8":        UTF8,
	"utf8":         UTF8,
	"us-ascii":     USASCII,
	"ascii":        USASCII,
	"ascii-8bit":   ASCII8BIT,
	"binary":       ASCII8BIT,
	"iso-8859-1":   ISO88591,
	"latin1":       ISO88591,
	"windows-1252": Windows1252,
	"cp1252":       Windows1252,
}

// LookupEncoding resolves a case-insensitive encoding name or alias.
// The empty name resolves to UTF8.
func LookupEncoding(name string) (Encoding, error) {
	if name == "" {
		return UTF8, nil
	}
	if enc, ok := encodingAliases[strings.ToLower(name)]; ok {
		return enc, nil
	}
	return "", fmt.Errorf("unknown encoding %q", name)
}

func (e Encoding) String() string { return string(e) }

// SeqLen returns how many bytes a character starting with lead occupies.
// Single-byte encodings always return 1. An invalid UTF-8 lead byte
// returns 1 so the caller can report it through Valid.
func (e Encoding) SeqLen(lead byte) int {
	if e != UTF8 && e != "" {
		return 1
	}
	switch {
	case lead < 0x80:
		return 1
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	}
	return 1
}

// Valid reports whether b is a well-formed byte sequence in e.
func (e Encoding) Valid(b []byte) bool {
	switch e {
	case UTF8, "":
		return utf8.Valid(b)
	case USASCII:
		for _, c := range b {
			if c >= 0x80 {
				return false
			}
		}
	}
	return true
}

// Decode converts b from e into a Go (UTF-8) string. ASCII-8BIT bytes are
// passed through unchanged.
func (e Encoding) Decode(b []byte) (string, error) {
	switch e {
	case ISO88591:
		return charmap.ISO8859_1.NewDecoder().String(string(b))
	case Windows1252:
		return charmap.Windows1252.NewDecoder().String(string(b))
	}
	if !e.Valid(b) {
		return "", fmt.Errorf("invalid byte sequence in %s", e)
	}
	return string(b), nil
}
