package normalize

import (
	"sort"
	"strings"

	"github.com/matsen/bibdedupe/internal/citation"
)

// AuthorKey identifies an author for matching: folded family name plus the
// first initial of the given name, e.g. "smith j".
type AuthorKey string

// AuthorSet is a set of author keys.
type AuthorSet map[AuthorKey]struct{}

// Key builds the matching key for an author. "Smith, J." and "Smith, John"
// share the key "smith j". Returns "" when both name parts are empty.
func Key(a citation.Author) AuthorKey {
	family, given := a.FamilyName, a.GivenName

	// Sources that put the whole name in one field ("Smith, John")
	if given == "" {
		if idx := strings.Index(family, ","); idx >= 0 {
			family, given = family[:idx], family[idx+1:]
		}
	}

	f := Name(family)
	g := Name(given)
	if f == "" {
		f, g = g, ""
	}
	if f == "" {
		return ""
	}

	initial := firstInitial(g)
	if initial == "" {
		return AuthorKey(f)
	}
	return AuthorKey(f + " " + initial)
}

func firstInitial(given string) string {
	for _, r := range given {
		return string(r)
	}
	return ""
}

// Authors builds the key set for an author list. Empty keys are skipped.
func Authors(authors []citation.Author) AuthorSet {
	set := make(AuthorSet, len(authors))
	for _, a := range authors {
		if k := Key(a); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// Overlap returns |A ∩ B| / |A ∪ B|, or 0 when both sets are empty.
func (s AuthorSet) Overlap(other AuthorSet) float64 {
	if len(s) == 0 && len(other) == 0 {
		return 0
	}
	shared := 0
	for k := range s {
		if _, ok := other[k]; ok {
			shared++
		}
	}
	union := len(s) + len(other) - shared
	return float64(shared) / float64(union)
}

// Sorted returns the keys in lexical order.
func (s AuthorSet) Sorted() []AuthorKey {
	keys := make([]AuthorKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
