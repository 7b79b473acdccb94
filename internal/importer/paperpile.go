package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/bibdedupe/internal/citation"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*f = ""
		return nil
	}

	// Try string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	// Try number
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	// Try int directly
	var i int
	if err := json.Unmarshal(data, &i); err == nil {
		*f = FlexibleString(strconv.Itoa(i))
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// PaperpileEntry represents a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	ID        string         `json:"_id"`
	Citekey   string         `json:"citekey"`
	PubType   string         `json:"pubtype"`
	DOI       string         `json:"doi"`
	PMID      FlexibleString `json:"pmid"`
	Title     string         `json:"title"`
	Abstract  string         `json:"abstract"`
	Journal   string         `json:"journal"`
	JournalAb string         `json:"journalfull_abbrev"`
	Volume    FlexibleString `json:"volume"`
	Issue     FlexibleString `json:"issue"`
	Pages     string         `json:"pages"`
	ISSN      []string       `json:"issn"`
	Publisher string         `json:"publisher"`
	Keywords  string         `json:"keywords"`
	URL       []string       `json:"url"`
	Published struct {
		Year  FlexibleString `json:"year"`
		Month FlexibleString `json:"month"`
		Day   FlexibleString `json:"day"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
		ORCID string `json:"orcid"`
	} `json:"author"`
	Labels      []string `json:"labelsNamed"`
	Attachments []struct {
		ID         string `json:"_id"`
		ArticlePDF int    `json:"article_pdf"` // 1 = main PDF, 0 = supplement
		Filename   string `json:"filename"`
	} `json:"attachments"`
}

// PaperpileParser parses Paperpile JSON exports.
type PaperpileParser struct {
	source string
}

// NewPaperpileParser returns a Paperpile parser.
func NewPaperpileParser() *PaperpileParser {
	return &PaperpileParser{}
}

// WithSource returns a copy of the parser that stamps parsed citations with tag.
func (p *PaperpileParser) WithSource(tag string) *PaperpileParser {
	cp := *p
	cp.source = tag
	return &cp
}

// Parse parses a Paperpile JSON export (a top-level array of entries).
func (p *PaperpileParser) Parse(input string) ([]citation.Citation, error) {
	var entries []PaperpileEntry
	if err := json.Unmarshal([]byte(input), &entries); err != nil {
		return nil, citation.FromFormat(fmt.Errorf("parsing Paperpile JSON: %w", err))
	}
	if len(entries) == 0 {
		return nil, citation.InvalidFormat("no Paperpile entries found")
	}

	cits := make([]citation.Citation, 0, len(entries))
	for i, entry := range entries {
		c, err := paperpileEntryToCitation(entry)
		if err != nil {
			return nil, citation.InvalidFormat("entry %d (%s): %v", i+1, entry.Citekey, err)
		}
		cits = append(cits, c)
	}

	citation.StampSource(cits, p.source)
	return cits, nil
}

// paperpileEntryToCitation converts a Paperpile entry to a citation.
func paperpileEntryToCitation(entry PaperpileEntry) (citation.Citation, error) {
	year := 0
	if y := strings.TrimSpace(entry.Published.Year.String()); y != "" {
		year = parseYear(y)
		if year == 0 {
			return citation.Citation{}, fmt.Errorf("invalid year: %s", y)
		}
	}

	authors := make([]citation.Author, 0, len(entry.Author))
	for _, a := range entry.Author {
		authors = append(authors, citation.Author{
			FamilyName: strings.TrimSpace(a.Last),
			GivenName:  strings.TrimSpace(a.First),
		})
	}

	// Use citekey as ID, falling back to Paperpile ID if no citekey
	id := entry.Citekey
	if id == "" {
		id = entry.ID
	}

	c := citation.Citation{
		ID:          id,
		Title:       entry.Title,
		Authors:     authors,
		Journal:     entry.Journal,
		JournalAbbr: entry.JournalAb,
		Year:        year,
		Volume:      entry.Volume.String(),
		Issue:       entry.Issue.String(),
		Pages:       entry.Pages,
		DOI:         entry.DOI,
		PMID:        entry.PMID.String(),
		Abstract:    entry.Abstract,
		Publisher:   entry.Publisher,
	}
	c.CitationType = appendUnique(c.CitationType, entry.PubType)
	for _, issn := range entry.ISSN {
		c.ISSN = appendUnique(c.ISSN, issn)
	}
	for _, u := range entry.URL {
		c.URLs = appendUnique(c.URLs, u)
	}
	c.Keywords = splitList(entry.Keywords, ",")
	for _, l := range entry.Labels {
		c.Keywords = appendUnique(c.Keywords, l)
	}

	for _, a := range entry.Author {
		if a.ORCID != "" {
			c.SetExtra("orcid", a.ORCID)
		}
	}
	for _, att := range entry.Attachments {
		if att.ArticlePDF == 1 {
			c.SetExtra("pdf", att.Filename)
		} else {
			c.SetExtra("supplement", att.Filename)
		}
	}
	if entry.ID != "" && entry.ID != id {
		c.SetExtra("paperpile_id", entry.ID)
	}

	return c, nil
}
