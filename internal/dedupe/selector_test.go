package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matsen/bibdedupe/internal/citation"
)

func TestSelector_SelectIndex(t *testing.T) {
	sparse := func(source string) citation.Citation {
		return citation.Citation{Title: "T", Source: source}
	}
	rich := func(source string) citation.Citation {
		return citation.Citation{Title: "T", Year: 2020, DOI: "10.1/x", Journal: "J", Source: source}
	}

	tests := []struct {
		name    string
		prefs   []string
		cluster []citation.Citation
		want    int
	}{
		{"empty cluster", nil, nil, -1},
		{"single", nil, []citation.Citation{sparse("A")}, 0},
		{"preference beats completeness", []string{"PubMed"}, []citation.Citation{rich("Scholar"), sparse("PubMed")}, 1},
		{"preference is case-insensitive", []string{"pubmed"}, []citation.Citation{sparse("Scholar"), sparse(" PUBMED ")}, 1},
		{"earlier preference wins", []string{"Embase", "PubMed"}, []citation.Citation{sparse("PubMed"), sparse("Embase")}, 1},
		{"listed beats unlisted", []string{"Embase"}, []citation.Citation{rich("A"), sparse("Embase")}, 1},
		{"unlisted fall back to completeness", nil, []citation.Citation{sparse("A"), rich("B")}, 1},
		{"full tie keeps first seen", nil, []citation.Citation{sparse("A"), sparse("B")}, 0},
		{"empty source is unlisted", []string{"PubMed"}, []citation.Citation{sparse(""), rich("")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Selector{Preferences: tt.prefs}
			assert.Equal(t, tt.want, s.SelectIndex(tt.cluster))
		})
	}
}

func TestSelector_Deterministic(t *testing.T) {
	cluster := []citation.Citation{
		{Title: "T", Source: "B", Year: 2001},
		{Title: "T", Source: "A", Year: 2001},
		{Title: "T", Source: "C", Year: 2001, DOI: "10.1/x"},
	}
	s := Selector{Preferences: []string{"A"}}

	first := s.SelectIndex(cluster)
	for range 20 {
		assert.Equal(t, first, s.SelectIndex(cluster))
	}
	assert.Equal(t, 1, first)
}

func TestSelector_Select(t *testing.T) {
	cluster := []citation.Citation{
		{ID: "1", Source: "A"},
		{ID: "2", Source: "B"},
		{ID: "3", Source: "C"},
	}

	unique, dups := Selector{Preferences: []string{"B"}}.Select(cluster)
	assert.Equal(t, "2", unique.ID)
	assert.Equal(t, []citation.Citation{cluster[0], cluster[2]}, dups)

	unique, dups = Selector{}.Select(nil)
	assert.Equal(t, citation.Citation{}, unique)
	assert.Nil(t, dups)
}
