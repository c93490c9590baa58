package encoding

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const crockfordAlphabetLC = "0123456789abcdefghjkmnpqrstvwxyz"

// EncodeCrockfordB32LC encodes input with the lowercase Crockford base32 alphabet, without padding.
func EncodeCrockfordB32LC(input []byte) string {
	var (
		out   strings.Builder
		bits  uint
		accum uint32
	)

	out.Grow((len(input)*8 + 4) / 5)

	for _, b := range input {
		accum = accum<<8 | uint32(b)
		bits += 8

		for bits >= 5 {
			bits -= 5
			out.WriteByte(crockfordAlphabetLC[(accum>>bits)&0x1f])
		}
	}

	if bits > 0 {
		out.WriteByte(crockfordAlphabetLC[(accum<<(5-bits))&0x1f])
	}

	return out.String()
}

// NormalizeCrockfordB32LC lowercases s, drops blanks and maps the
// ambiguous letters o, i and l onto their digits.
func NormalizeCrockfordB32LC(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n':
			return -1
		case 'O', 'o':
			return '0'
		case 'I', 'i', 'L', 'l':
			return '1'
		}

		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}

		return r
	}, s)
}

// IsCrockfordB32LC reports whether s is non-empty and only uses the lowercase alphabet.
func IsCrockfordB32LC(s string) bool {
	if s == "" {
		return false
	}

	for i := range len(s) {
		if strings.IndexByte(crockfordAlphabetLC, s[i]) < 0 {
			return false
		}
	}

	return true
}

// RandomCrockfordB32LC returns n random bytes from crypto/rand encoded as lowercase Crockford base32.
func RandomCrockfordB32LC(n int) (string, error) {
	buf := make([]byte, n)

	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}

	return EncodeCrockfordB32LC(buf), nil
}
