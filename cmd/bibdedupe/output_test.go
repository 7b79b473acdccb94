package main

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"

	"github.com/matsen/bibdedupe/internal/citation"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title here", 10, "a longe..."},
		{"ééééééééééé", 6, "ééé..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatAuthorsShort(t *testing.T) {
	authors := []citation.Author{
		{FamilyName: "Smith", GivenName: "John"},
		{FamilyName: "Émile", GivenName: "Élodie"},
		{FamilyName: "Consortium"},
	}

	if got := formatAuthorsShort(authors, 3); got != "Smith J, Émile É, Consortium" {
		t.Errorf("formatAuthorsShort(3) = %q", got)
	}
	if got := formatAuthorsShort(authors, 1); got != "Smith J, et al." {
		t.Errorf("formatAuthorsShort(1) = %q", got)
	}
	if got := formatAuthorsShort(nil, 2); got != "" {
		t.Errorf("formatAuthorsShort(nil) = %q", got)
	}
}

func TestFormatCitationLine(t *testing.T) {
	c := citation.Citation{
		ID:      "42",
		Source:  "PubMed",
		Title:   "Protein folding",
		Authors: []citation.Author{{FamilyName: "Smith", GivenName: "J"}},
		Year:    2020,
	}
	want := "[PubMed] 42  Protein folding (Smith J, 2020)"
	if got := formatCitationLine(c); got != want {
		t.Errorf("formatCitationLine() = %q, want %q", got, want)
	}

	if got := formatCitationLine(citation.Citation{Title: "Bare"}); got != "Bare" {
		t.Errorf("formatCitationLine(bare) = %q", got)
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid format", citation.InvalidFormat("nope"), ExitDataError},
		{"wrapped malformed", eris.Wrap(citation.MalformedInput("bad", 3), "reading x"), ExitDataError},
		{"missing field", citation.MissingField("title"), ExitDataError},
		{"io", citation.FromIO(errors.New("disk")), ExitError},
		{"foreign", errors.New("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}
