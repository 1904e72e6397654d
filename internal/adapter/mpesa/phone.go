package mpesa

import (
	"strings"
	"unicode"
)

const countryCode = "254"

// NormalizePhone converts a Kenyan phone number into the 2547XXXXXXXX form the gateway expects.
func NormalizePhone(phone string) string {
	p := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, phone)
	p = strings.TrimPrefix(p, "+")

	if strings.HasPrefix(p, countryCode) {
		return p
	}
	return countryCode + strings.TrimLeft(p, "0")
}
