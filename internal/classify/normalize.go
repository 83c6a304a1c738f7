package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// OCR frequently reads "To" on transport documents with Greek or Cyrillic
// look-alike letters, or with a zero for the o.
var lookalikes = strings.NewReplacer(
	"Το", "To", // Greek Tau + Omicron
	"το", "to",
	" T0", " To",
	" t0", " to",
	" Tо", " To", // Cyrillic o
	" tо", " to",
	"tο", "to", // Latin t + Greek omicron
	"t o", "to",
)

var nonASCII = runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })

// Normalize folds OCR text to lower-case ASCII for keyword matching:
// look-alike letters are replaced, accents are decomposed and every
// remaining non-ASCII rune is dropped.
func Normalize(text string) string {
	text = lookalikes.Replace(text)
	t := transform.Chain(norm.NFKD, runes.Remove(nonASCII))
	ascii, _, err := transform.String(t, text)
	if err != nil {
		ascii = text
	}
	return strings.TrimSpace(strings.ToLower(ascii))
}
