package dedupe

import (
	"github.com/matsen/bibdedupe/internal/citation"
)

// MergeGroup returns the group's canonical citation with complementary
// metadata filled in from its duplicates. Absent scalar fields take the first
// non-empty value in duplicate order; list fields are unioned preserving
// order. The authors list is replaced only when the canonical one is empty.
// The group itself is not modified.
func MergeGroup(g citation.DuplicateGroup) citation.Citation {
	merged := g.Unique.Clone()

	for _, dup := range g.Duplicates {
		fill := func(target *string, value string) {
			if *target == "" {
				*target = value
			}
		}

		fill(&merged.Title, dup.Title)
		fill(&merged.Journal, dup.Journal)
		fill(&merged.JournalAbbr, dup.JournalAbbr)
		fill(&merged.Volume, dup.Volume)
		fill(&merged.Issue, dup.Issue)
		fill(&merged.Pages, dup.Pages)
		fill(&merged.DOI, dup.DOI)
		fill(&merged.PMID, dup.PMID)
		fill(&merged.PMCID, dup.PMCID)
		fill(&merged.Abstract, dup.Abstract)
		fill(&merged.Language, dup.Language)
		fill(&merged.Publisher, dup.Publisher)

		if !merged.HasYear() {
			merged.Year = dup.Year
		}
		if len(merged.Authors) == 0 && len(dup.Authors) > 0 {
			merged.Authors = append([]citation.Author(nil), dup.Authors...)
		}

		merged.CitationType = unionStrings(merged.CitationType, dup.CitationType)
		merged.ISSN = unionStrings(merged.ISSN, dup.ISSN)
		merged.Keywords = unionStrings(merged.Keywords, dup.Keywords)
		merged.URLs = unionStrings(merged.URLs, dup.URLs)
		merged.MeshTerms = unionStrings(merged.MeshTerms, dup.MeshTerms)

		for field, values := range dup.ExtraFields {
			if merged.ExtraFields == nil {
				merged.ExtraFields = make(map[string][]string)
			}
			merged.ExtraFields[field] = unionStrings(merged.ExtraFields[field], values)
		}
	}

	return merged
}

// unionStrings returns the union of two string slices, preserving order.
func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a)+len(b))
	var result []string

	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	return result
}
