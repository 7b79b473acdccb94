package normalize

import (
	"sort"
	"strings"
)

// stopwords carry no signal for title or journal matching.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "on": true, "in": true,
	"and": true, "or": true, "for": true, "to": true, "with": true,
	"by": true, "at": true, "from": true, "as": true, "is": true,
	"are": true, "its": true, "into": true, "via": true, "de": true,
	"la": true, "le": true, "et": true, "und": true, "der": true, "die": true,
}

// TitleTokens returns the distinct non-stopword tokens of the normalized
// title, sorted.
func TitleTokens(s string) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range strings.Fields(Title(s)) {
		if stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// Jaccard returns |A ∩ B| / |A ∪ B| for two token lists treated as sets,
// or 0 when either is empty.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// IsAbbreviationOf reports whether abbr is an abbreviation of full: each
// normalized abbreviation token abbreviates the corresponding non-stopword
// token of the full name, e.g. "J. Biol. Chem." and "Journal of Biological
// Chemistry", or "Proc Natl Acad Sci" and "Proceedings of the National
// Academy of Sciences".
func IsAbbreviationOf(abbr, full string) bool {
	a := strings.Fields(Journal(abbr))
	f := significantTokens(Journal(full))
	if len(a) == 0 || len(a) != len(f) {
		return false
	}
	for i := range a {
		if !abbreviates(a[i], f[i]) {
			return false
		}
	}
	return true
}

func significantTokens(s string) []string {
	var out []string
	for _, tok := range strings.Fields(s) {
		if !stopwords[tok] {
			out = append(out, tok)
		}
	}
	return out
}

// abbreviates reports whether short starts with the same letter as word and
// its remaining letters appear in word in order ("natl" -> "national").
func abbreviates(short, word string) bool {
	if short == "" || word == "" || short[0] != word[0] {
		return false
	}
	j := 0
	for i := 0; i < len(word) && j < len(short); i++ {
		if word[i] == short[j] {
			j++
		}
	}
	return j == len(short)
}
