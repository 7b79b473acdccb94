package importer

import (
	"strings"

	"github.com/matsen/bibdedupe/internal/citation"
)

// nameSuffixes are generational and academic suffixes kept with the family name.
var nameSuffixes = map[string]bool{
	"jr": true, "jr.": true, "sr": true, "sr.": true,
	"ii": true, "iii": true, "iv": true,
	"phd": true, "md": true,
}

// parseAuthor parses a personal name in either "Family, Given" or
// "Given Family" order.
//
// Known limitations of the "Given Family" form:
// - Multi-part surnames (von Neumann, van der Waals) split incorrectly
// - Middle names are included in the given name
func parseAuthor(name string) citation.Author {
	name = strings.TrimSpace(name)
	if name == "" {
		return citation.Author{}
	}

	if family, given, ok := strings.Cut(name, ","); ok {
		family = strings.TrimSpace(family)
		given = strings.TrimSpace(given)

		// "Smith, Jr., John" keeps the suffix with the family name
		if suffix, rest, ok := strings.Cut(given, ","); ok && nameSuffixes[strings.ToLower(strings.TrimSpace(suffix))] {
			family = family + " " + strings.TrimSpace(suffix)
			given = strings.TrimSpace(rest)
		}
		return citation.Author{FamilyName: family, GivenName: given}
	}

	given, family := splitAuthorName(name)
	return citation.Author{FamilyName: family, GivenName: given}
}

// splitAuthorName splits a "Given Family" name.
func splitAuthorName(name string) (given, family string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		// Single name (e.g., "Madonna")
		return "", parts[0]
	}

	lastPart := strings.ToLower(parts[len(parts)-1])
	if nameSuffixes[lastPart] && len(parts) > 2 {
		family = parts[len(parts)-2] + " " + parts[len(parts)-1]
		given = strings.Join(parts[:len(parts)-2], " ")
	} else {
		family = parts[len(parts)-1]
		given = strings.Join(parts[:len(parts)-1], " ")
	}
	return given, family
}

// parseMedlineAuthor parses the abbreviated MEDLINE AU form "Smith JA",
// where the trailing token holds the initials.
func parseMedlineAuthor(name string) citation.Author {
	name = strings.TrimSpace(name)
	if strings.Contains(name, ",") {
		return parseAuthor(name)
	}
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return citation.Author{FamilyName: name}
	}
	initials := parts[len(parts)-1]
	if initials != strings.ToUpper(initials) || len(initials) > 3 {
		return citation.Author{FamilyName: name}
	}
	return citation.Author{
		FamilyName: strings.Join(parts[:len(parts)-1], " "),
		GivenName:  initials,
	}
}

// parseAuthors parses a list of names separated by sep.
func parseAuthors(s, sep string) []citation.Author {
	var authors []citation.Author
	for _, part := range strings.Split(s, sep) {
		if a := parseAuthor(part); a.FamilyName != "" || a.GivenName != "" {
			authors = append(authors, a)
		}
	}
	return authors
}
