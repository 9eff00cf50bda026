package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/legadomuebles/legado/internal/messaging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningMarks is the Combining Diacritical Marks block.
var combiningMarks = runes.Predicate(func(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
})

// Normalize folds s for matching: lower case, accents removed, surrounding
// space trimmed.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(combiningMarks))
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.TrimSpace(folded)
}

var argentina = language.MustParse("es-AR")

// FormatPrice renders an ARS amount without decimals, e.g. "$ 126.000".
// The space after the sign is a no-break space.
func FormatPrice(amount int) string {
	p := message.NewPrinter(argentina)
	if amount < 0 {
		return "-$\u00a0" + p.Sprintf("%d", -amount)
	}
	return "$\u00a0" + p.Sprintf("%d", amount)
}

// Initials returns the first letter of each word of name.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Split(name, " ") {
		if r, _ := utf8.DecodeRuneInString(word); r != utf8.RuneError {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MapURL returns the Google Maps search link for address.
func MapURL(address string) string {
	return "https://maps.google.com/?q=" + messaging.QueryEscape(address)
}

// Stars returns the number of filled and empty stars for a rating.
func Stars(rating int) (filled, empty int) {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return rating, 5 - rating
}
