package facematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics strips combining marks ("Jiří" -> "Jiri").
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func isLabelSeparator(r rune) bool {
	return r == '-' || r == '_' || unicode.IsSpace(r)
}

// LabelKey returns the identity of a gallery label. Two labels with the same
// key name the same person; case, diacritics and runs of spaces, dashes or
// underscores do not matter.
func LabelKey(label string) string {
	words := strings.FieldsFunc(foldDiacritics(label), isLabelSeparator)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, " ")
}
