// Package importer converts bibliographic exports into citations.
//
// Every format has a parser constructed with NewXParser and configured with
// WithSource; all of them satisfy citation.Parser and return *citation.Error
// on failure.
package importer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matsen/bibdedupe/internal/citation"
)

// maxLineSize bounds a single input line (1MB).
const maxLineSize = 1024 * 1024

var yearPattern = regexp.MustCompile(`(?:^|\D)(\d{4})(?:\D|$)`)

// parseYear extracts the first 4-digit year from a date string such as
// "2015 Mar 3", "2020/05/01/" or "c2019". Returns 0 when none is found.
func parseYear(s string) int {
	m := yearPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	y, err := strconv.Atoi(m[1])
	if err != nil || y == 0 {
		return 0
	}
	return y
}

// joinPages combines start and end pages into "start-end".
func joinPages(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "":
		return end
	case end == "" || end == start:
		return start
	default:
		return start + "-" + end
	}
}

// appendUnique appends s to list unless it is empty or already present.
func appendUnique(list []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return list
	}
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

// splitList splits a delimited cell ("a; b;c") into trimmed non-empty parts.
func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		out = appendUnique(out, part)
	}
	return out
}

// setAffiliation attaches an affiliation to the most recently added author.
// Affiliations that precede any author are kept as an extra field.
func setAffiliation(c *citation.Citation, affiliation string) {
	affiliation = strings.TrimSpace(affiliation)
	if affiliation == "" {
		return
	}
	if n := len(c.Authors); n > 0 {
		if c.Authors[n-1].Affiliation == "" {
			c.Authors[n-1].Affiliation = affiliation
		} else {
			c.Authors[n-1].Affiliation += "; " + affiliation
		}
		return
	}
	c.SetExtra("affiliation", affiliation)
}

// isDigits reports whether s is non-empty and all ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
