// Package normalize canonicalizes citation fields before comparison.
//
// Every function is pure and idempotent: applying it to its own output
// returns the output unchanged.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Letters with no canonical decomposition to a base Latin letter.
var foldReplacer = strings.NewReplacer(
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
	"ß", "ss",
	"ł", "l",
	"đ", "d",
	"ð", "d",
	"þ", "th",
	"ı", "i",
)

// Fold lowercases s and folds diacritics to base Latin letters.
func Fold(s string) string {
	folded, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return foldReplacer.Replace(folded)
}

// Title canonicalizes a title: folded, punctuation removed (internal hyphens
// kept), whitespace collapsed.
func Title(s string) string {
	return canonical(s)
}

// Name canonicalizes a personal name part the same way as Title.
func Name(s string) string {
	return canonical(s)
}

// Journal canonicalizes a journal name, dropping a leading "the".
func Journal(s string) string {
	j := canonical(s)
	for strings.HasPrefix(j, "the ") {
		j = j[len("the "):]
	}
	return j
}

// Year passes the year through unchanged. Years are never fuzzed.
func Year(y int) int {
	return y
}

// canonical folds s and keeps only letters, digits, single spaces, and
// hyphens that sit between two alphanumerics.
func canonical(s string) string {
	rs := []rune(Fold(s))

	var b strings.Builder
	b.Grow(len(rs))
	pendingSpace := false

	for i, r := range rs {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case isQuote(r):
			// Dropped without a break: "don't" -> "dont"
		case r == '-' && i > 0 && i < len(rs)-1 && isAlnum(rs[i-1]) && isAlnum(rs[i+1]):
			b.WriteRune(r)
		default:
			pendingSpace = true
		}
	}

	return b.String()
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isQuote(r rune) bool {
	switch r {
	case '\'', '"', '`', '‘', '’', '“', '”', '«', '»', '´':
		return true
	}
	return false
}

// DOI normalizes a DOI for comparison.
// Removes resolver and "doi:" prefixes, trailing punctuation, and lowercases.
func DOI(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{
		"https://doi.org/",
		"http://doi.org/",
		"https://dx.doi.org/",
		"http://dx.doi.org/",
		"doi.org/",
		"dx.doi.org/",
		"doi:",
	} {
		if strings.HasPrefix(lower, prefix) {
			lower = lower[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(strings.TrimRight(lower, ".,; \t"))
}

// PMID normalizes a PubMed identifier: prefix, spaces, and leading zeros removed.
func PMID(pmid string) string {
	pmid = strings.TrimSpace(pmid)
	if len(pmid) >= 5 && strings.EqualFold(pmid[:5], "pmid:") {
		pmid = pmid[5:]
	}
	pmid = strings.ReplaceAll(pmid, " ", "")
	return strings.TrimLeft(pmid, "0")
}
