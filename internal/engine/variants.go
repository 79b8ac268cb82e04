package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"seasonarr/internal/store"
)

// foldDiacritics strips combining marks so accented spellings search the
// same as plain ones.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// queryVariants builds the ordered set of search terms for a title: the
// canonical title, the alternate title, every synonym, then digit-stripped
// and punctuation-stripped fallbacks of the two main titles. Non-english
// titles often miss where the alternate or a relaxed spelling hits.
func queryVariants(t *store.Title) []string {
	candidates := []string{t.Title, t.AltTitle}
	candidates = append(candidates, t.SynonymList()...)
	candidates = append(candidates,
		stripRunes(t.Title, unicode.IsDigit),
		stripRunes(t.AltTitle, unicode.IsDigit),
		stripRunes(t.Title, unicode.IsPunct),
		stripRunes(t.AltTitle, unicode.IsPunct),
	)

	seen := make(map[string]struct{})
	variants := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		variant := cleanVariant(candidate)
		if variant == "" {
			continue
		}
		if _, dup := seen[variant]; dup {
			continue
		}
		seen[variant] = struct{}{}
		variants = append(variants, variant)
	}
	return variants
}

func cleanVariant(s string) string {
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}

func stripRunes(s string, drop func(rune) bool) string {
	return strings.Map(func(r rune) rune {
		if drop(r) {
			return -1
		}
		return r
	}, s)
}
