// Package citation defines the canonical record types shared by every parser
// and by the deduplication engine.
package citation

import "slices"

// Citation represents a single bibliographic record in the canonical schema.
// Empty strings and nil slices mean the source did not provide the field.
type Citation struct {
	// Identity (never used for matching)
	ID string `json:"id"` // Caller- or adapter-assigned, not assumed unique

	// Metadata
	CitationType []string `json:"citation_type,omitempty"` // Type tags in source order
	Title        string   `json:"title"`                   // Empty if unparsable, never absent
	Authors      []Author `json:"authors,omitempty"`       // Order of appearance in source
	Journal      string   `json:"journal,omitempty"`
	JournalAbbr  string   `json:"journal_abbr,omitempty"`
	Year         int      `json:"year,omitempty"` // 0 if the source had no 4-digit year
	Volume       string   `json:"volume,omitempty"`
	Issue        string   `json:"issue,omitempty"`
	Pages        string   `json:"pages,omitempty"`
	ISSN         []string `json:"issn,omitempty"`

	// External Identifiers
	DOI   string `json:"doi,omitempty"`
	PMID  string `json:"pmid,omitempty"`
	PMCID string `json:"pmc_id,omitempty"`

	// Content
	Abstract  string   `json:"abstract_text,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	URLs      []string `json:"urls,omitempty"`
	Language  string   `json:"language,omitempty"`
	MeshTerms []string `json:"mesh_terms,omitempty"`
	Publisher string   `json:"publisher,omitempty"`

	// Data with no named slot in the schema, keyed by source field name
	ExtraFields map[string][]string `json:"extra_fields,omitempty"`

	// Import Tracking
	Source string `json:"source,omitempty"` // Origin tag stamped by the adapter, e.g. "PubMed"
}

// DuplicateGroup is a canonical citation plus the other records judged to
// describe the same work. Duplicates always holds at least one citation.
type DuplicateGroup struct {
	Unique     Citation   `json:"unique"`
	Duplicates []Citation `json:"duplicates"`
}

// canonicalFields lists the JSON names of the named fields.
// ExtraFields may not use any of them as a key.
var canonicalFields = map[string]bool{
	"id": true, "citation_type": true, "title": true, "authors": true,
	"journal": true, "journal_abbr": true, "year": true, "volume": true,
	"issue": true, "pages": true, "issn": true, "doi": true, "pmid": true,
	"pmc_id": true, "abstract_text": true, "keywords": true, "urls": true,
	"language": true, "mesh_terms": true, "publisher": true, "source": true,
}

// IsCanonicalField reports whether name is a named field of Citation.
func IsCanonicalField(name string) bool {
	return canonicalFields[name]
}

// HasYear reports whether the citation carries a publication year.
func (c Citation) HasYear() bool {
	return c.Year != 0
}

// SetExtra appends values to an extra field. Names of canonical fields are
// ignored so that ExtraFields never shadows a named field.
func (c *Citation) SetExtra(field string, values ...string) {
	if field == "" || IsCanonicalField(field) || len(values) == 0 {
		return
	}
	if c.ExtraFields == nil {
		c.ExtraFields = make(map[string][]string)
	}
	c.ExtraFields[field] = append(c.ExtraFields[field], values...)
}

// Clone returns a deep copy of the citation.
func (c Citation) Clone() Citation {
	out := c
	out.CitationType = slices.Clone(c.CitationType)
	out.Authors = slices.Clone(c.Authors)
	out.ISSN = slices.Clone(c.ISSN)
	out.Keywords = slices.Clone(c.Keywords)
	out.URLs = slices.Clone(c.URLs)
	out.MeshTerms = slices.Clone(c.MeshTerms)
	if c.ExtraFields != nil {
		out.ExtraFields = make(map[string][]string, len(c.ExtraFields))
		for k, v := range c.ExtraFields {
			out.ExtraFields[k] = slices.Clone(v)
		}
	}
	return out
}

// Completeness returns the number of populated bibliographic fields.
// ID and Source describe the record rather than the work and are not counted.
func (c Citation) Completeness() int {
	score := 0

	strs := []string{
		c.Title, c.Journal, c.JournalAbbr, c.Volume, c.Issue, c.Pages,
		c.DOI, c.PMID, c.PMCID, c.Abstract, c.Language, c.Publisher,
	}
	for _, s := range strs {
		if s != "" {
			score++
		}
	}

	if c.HasYear() {
		score++
	}
	if len(c.Authors) > 0 {
		score++
	}

	lists := [][]string{c.CitationType, c.ISSN, c.Keywords, c.URLs, c.MeshTerms}
	for _, l := range lists {
		if len(l) > 0 {
			score++
		}
	}

	if len(c.ExtraFields) > 0 {
		score++
	}

	return score
}
