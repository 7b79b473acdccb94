// Package dedupe finds duplicate citations: pairwise similarity scoring,
// transitive clustering, and canonical-record selection.
package dedupe

import (
	"math"
	"unicode/utf8"

	"github.com/agext/levenshtein"

	"github.com/matsen/bibdedupe/internal/citation"
	"github.com/matsen/bibdedupe/internal/normalize"
)

// DefaultThreshold is the composite score at or above which two citations
// are duplicates.
const DefaultThreshold = 0.85

// Signal weights. Missing author, year, or journal data on either side
// removes that signal from the denominator; the title weight always stays.
const (
	weightTitle   = 0.50
	weightAuthors = 0.25
	weightYear    = 0.15
	weightJournal = 0.10

	// Year off by one (online-first vs issue year)
	adjacentYearScore = 0.5
)

// Values of ScoreResult.MatchedBy.
const (
	MatchDOI   = "doi"
	MatchPMID  = "pmid"
	MatchFuzzy = "fuzzy"
)

// ScoreResult is the outcome of comparing two citations.
type ScoreResult struct {
	Composite   float64 `json:"composite"` // In [0, 1]
	IsDuplicate bool    `json:"is_duplicate"`
	MatchedBy   string  `json:"matched_by"` // "doi", "pmid", or "fuzzy"
}

// Scorer computes duplicate likelihood between citations.
// The zero value uses DefaultThreshold.
type Scorer struct {
	Threshold float64
}

// NewScorer returns a Scorer with the default threshold.
func NewScorer() Scorer {
	return Scorer{Threshold: DefaultThreshold}
}

func (s Scorer) threshold() float64 {
	if s.Threshold <= 0 {
		return DefaultThreshold
	}
	return s.Threshold
}

// Score compares two citations. Score(a, b) == Score(b, a).
func (s Scorer) Score(a, b citation.Citation) ScoreResult {
	return s.score(extractFeatures(a), extractFeatures(b))
}

// features holds the normalized fields of one citation, computed once per
// clustering run.
type features struct {
	title    string
	tokens   []string
	authors  normalize.AuthorSet
	year     int
	journals []string
	doi      string
	pmid     string
}

func extractFeatures(c citation.Citation) features {
	f := features{
		title:   normalize.Title(c.Title),
		tokens:  normalize.TitleTokens(c.Title),
		authors: normalize.Authors(c.Authors),
		year:    normalize.Year(c.Year),
		doi:     normalize.DOI(c.DOI),
		pmid:    normalize.PMID(c.PMID),
	}
	for _, j := range []string{c.Journal, c.JournalAbbr} {
		if nj := normalize.Journal(j); nj != "" {
			f.journals = append(f.journals, nj)
		}
	}
	return f
}

func (s Scorer) score(a, b features) ScoreResult {
	// Exact identifier matches are authoritative
	if a.doi != "" && a.doi == b.doi {
		return ScoreResult{Composite: 1, IsDuplicate: true, MatchedBy: MatchDOI}
	}
	if a.pmid != "" && a.pmid == b.pmid {
		return ScoreResult{Composite: 1, IsDuplicate: true, MatchedBy: MatchPMID}
	}

	total := weightTitle
	sum := weightTitle * titleSimilarity(a, b)

	if len(a.authors) > 0 && len(b.authors) > 0 {
		total += weightAuthors
		sum += weightAuthors * a.authors.Overlap(b.authors)
	}

	if a.year != 0 && b.year != 0 {
		total += weightYear
		sum += weightYear * yearSimilarity(a.year, b.year)
	}

	if len(a.journals) > 0 && len(b.journals) > 0 {
		total += weightJournal
		sum += weightJournal * journalSimilarity(a.journals, b.journals)
	}

	composite := clamp(sum / total)
	return ScoreResult{
		Composite:   composite,
		IsDuplicate: composite >= s.threshold(),
		MatchedBy:   MatchFuzzy,
	}
}

// titleSimilarity is the higher of token-set Jaccard and the edit-distance
// ratio. Zero when either title is empty.
func titleSimilarity(a, b features) float64 {
	if a.title == "" || b.title == "" {
		return 0
	}
	if a.title == b.title {
		return 1
	}
	return math.Max(normalize.Jaccard(a.tokens, b.tokens), editRatio(a.title, b.title))
}

// editRatio returns 1 - distance/longer length, measured in runes.
func editRatio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.Distance(a, b, nil)
	return 1 - float64(dist)/float64(longest)
}

func yearSimilarity(a, b int) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 1
	case 1:
		return adjacentYearScore
	default:
		return 0
	}
}

func journalSimilarity(a, b []string) float64 {
	for _, x := range a {
		for _, y := range b {
			if x == y || normalize.IsAbbreviationOf(x, y) || normalize.IsAbbreviationOf(y, x) {
				return 1
			}
		}
	}
	return 0
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
