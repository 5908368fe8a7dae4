package ibge

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeStateCode canonicalizes a UF code: trimmed, upper case.
func NormalizeStateCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DisplayName formats a municipality name for display, e.g. "Ouro Preto (MG)".
func DisplayName(name, stateCode string) string {
	if stateCode == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, stateCode)
}

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldDiacritics strips combining marks: "Goiânia" becomes "Goiania".
func foldDiacritics(s string) string {
	folded, _, err := transform.String(foldChain, s)
	if err != nil {
		return s
	}
	return folded
}

// Slug derives a URL-safe identifier from a municipality name:
// diacritics folded, lower case, runs of non-alphanumerics collapsed to "-".
func Slug(name string) string {
	s := strings.ToLower(foldDiacritics(name))
	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}
