package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matsen/bibdedupe/internal/citation"
)

func smith() []citation.Author {
	return []citation.Author{{FamilyName: "Smith", GivenName: "J."}}
}

func TestScore_IdentifierFastPath(t *testing.T) {
	tests := []struct {
		name string
		a, b citation.Citation
		by   string
	}{
		{
			name: "doi with different prefixes",
			a:    citation.Citation{DOI: "https://doi.org/10.1000/ABC", Title: "First", Year: 2001},
			b:    citation.Citation{DOI: "doi:10.1000/abc", Title: "Totally different", Year: 2019},
			by:   MatchDOI,
		},
		{
			name: "pmid with leading zeros",
			a:    citation.Citation{PMID: "0012345", Title: "One"},
			b:    citation.Citation{PMID: "12345", Title: "Two"},
			by:   MatchPMID,
		},
	}

	s := NewScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.a, tt.b)
			assert.Equal(t, 1.0, got.Composite)
			assert.True(t, got.IsDuplicate)
			assert.Equal(t, tt.by, got.MatchedBy)
		})
	}
}

func TestScore_Symmetry(t *testing.T) {
	cits := []citation.Citation{
		{Title: "Effects of X on Y", Authors: smith(), Year: 2015},
		{Title: "Effects of X on Y: A Study", Authors: smith(), Year: 2015, Journal: "Nature"},
		{Title: "Gene regulation in yeast", Year: 2016, Journal: "J Biol Chem"},
		{Title: "Gene Regulation in Yeast.", Year: 2015, Journal: "Journal of Biological Chemistry"},
		{DOI: "10.1/x"},
		{},
	}

	s := NewScorer()
	for i := range cits {
		for j := range cits {
			assert.Equal(t, s.Score(cits[i], cits[j]), s.Score(cits[j], cits[i]), "pair (%d, %d)", i, j)
		}
	}
}

func TestScore_NoFalseMergeOnBlanks(t *testing.T) {
	s := NewScorer()

	a := citation.Citation{Authors: []citation.Author{{FamilyName: "Jones"}}}
	b := citation.Citation{Authors: []citation.Author{{FamilyName: "Brown"}}}
	assert.False(t, s.Score(a, b).IsDuplicate)

	// Even total agreement on everything but the title stays below threshold
	c := citation.Citation{Authors: smith(), Year: 2010, Journal: "Cell"}
	d := citation.Citation{Authors: smith(), Year: 2010, Journal: "Cell"}
	res := s.Score(c, d)
	assert.False(t, res.IsDuplicate)
	assert.InDelta(t, 0.5, res.Composite, 1e-9)

	assert.False(t, s.Score(citation.Citation{}, citation.Citation{}).IsDuplicate)
}

func TestScore_SubtitleVariant(t *testing.T) {
	a := citation.Citation{Title: "Effects of X on Y", Authors: smith(), Year: 2015}
	b := citation.Citation{Title: "Effects of X on Y: A Study", Authors: smith(), Year: 2015}

	res := NewScorer().Score(a, b)
	assert.True(t, res.IsDuplicate)
	assert.Equal(t, MatchFuzzy, res.MatchedBy)
	assert.InDelta(t, 0.861, res.Composite, 0.001)
}

func TestScore_JournalAbbreviation(t *testing.T) {
	a := citation.Citation{Title: "Gene regulation in yeast", Year: 2015, Journal: "J Biol Chem"}
	b := citation.Citation{Title: "Gene Regulation in Yeast.", Year: 2015, Journal: "The Journal of Biological Chemistry"}

	res := NewScorer().Score(a, b)
	assert.True(t, res.IsDuplicate)
	assert.InDelta(t, 1.0, res.Composite, 1e-9)
}

func TestScore_DifferentWorks(t *testing.T) {
	a := citation.Citation{Title: "Foo Bar Study", Year: 2020, Authors: smith()}
	b := citation.Citation{Title: "Other Work", Year: 2020, Authors: smith()}

	assert.False(t, NewScorer().Score(a, b).IsDuplicate)
}

func TestScorer_ZeroValueUsesDefaultThreshold(t *testing.T) {
	var s Scorer
	assert.Equal(t, DefaultThreshold, s.threshold())

	strict := Scorer{Threshold: 0.99}
	a := citation.Citation{Title: "Effects of X on Y", Authors: smith(), Year: 2015}
	b := citation.Citation{Title: "Effects of X on Y: A Study", Authors: smith(), Year: 2015}
	assert.False(t, strict.Score(a, b).IsDuplicate)
}

func TestYearSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, yearSimilarity(2020, 2020))
	assert.Equal(t, adjacentYearScore, yearSimilarity(2020, 2021))
	assert.Equal(t, adjacentYearScore, yearSimilarity(2021, 2020))
	assert.Equal(t, 0.0, yearSimilarity(2020, 2023))
}

func TestEditRatio(t *testing.T) {
	assert.Equal(t, 1.0, editRatio("", ""))
	assert.Equal(t, 1.0, editRatio("abc", "abc"))
	assert.InDelta(t, 0.75, editRatio("abcd", "abce"), 1e-9)
	// Runes, not bytes
	assert.InDelta(t, 0.75, editRatio("café", "cafe"), 1e-9)
}
