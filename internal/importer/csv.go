package importer

import (
	"encoding/csv"
	"errors"
	"io"
	"maps"
	"strings"

	"github.com/matsen/bibdedupe/internal/citation"
)

// Mapping maps a CSV header, compared case-insensitively, to a canonical
// citation field name ("title", "authors", "year", ...). Headers without a
// mapping are kept as extra fields.
type Mapping map[string]string

// DefaultMapping returns header aliases for common database exports
// (Scopus, Web of Science, PubMed, Cochrane, Zotero).
func DefaultMapping() Mapping {
	return Mapping{
		"title":                    "title",
		"article title":            "title",
		"document title":           "title",
		"author":                   "authors",
		"authors":                  "authors",
		"author(s)":                "authors",
		"author full names":        "authors",
		"year":                     "year",
		"publication year":         "year",
		"pub year":                 "year",
		"date":                     "year",
		"journal":                  "journal",
		"source title":             "journal",
		"publication title":        "journal",
		"journal/book":             "journal",
		"journal abbreviation":     "journal_abbr",
		"abbreviated source title": "journal_abbr",
		"volume":                   "volume",
		"issue":                    "issue",
		"number":                   "issue",
		"pages":                    "pages",
		"page range":               "pages",
		"doi":                      "doi",
		"pmid":                     "pmid",
		"pubmed id":                "pmid",
		"pmcid":                    "pmc_id",
		"pmc id":                   "pmc_id",
		"abstract":                 "abstract_text",
		"keywords":                 "keywords",
		"author keywords":          "keywords",
		"manual tags":              "keywords",
		"url":                      "urls",
		"link":                     "urls",
		"issn":                     "issn",
		"language":                 "language",
		"publisher":                "publisher",
		"id":                       "id",
		"key":                      "id",
		"type":                     "citation_type",
		"document type":            "citation_type",
		"publication type":         "citation_type",
		"item type":                "citation_type",
		"mesh terms":               "mesh_terms",
	}
}

func (m Mapping) fieldFor(header string) (string, bool) {
	f, ok := m[strings.ToLower(strings.TrimSpace(header))]
	return f, ok
}

// CSVParser parses header-driven CSV exports.
type CSVParser struct {
	source    string
	mapping   Mapping
	delimiter rune
}

// NewCSVParser returns a comma-delimited parser using DefaultMapping.
func NewCSVParser() *CSVParser {
	return &CSVParser{mapping: DefaultMapping(), delimiter: ','}
}

// WithSource returns a copy of the parser that stamps parsed citations with tag.
func (p *CSVParser) WithSource(tag string) *CSVParser {
	cp := *p
	cp.source = tag
	return &cp
}

// WithDelimiter returns a copy of the parser splitting fields on d.
func (p *CSVParser) WithDelimiter(d rune) *CSVParser {
	cp := *p
	cp.delimiter = d
	return &cp
}

// WithMapping returns a copy of the parser with m overlaid on its current
// mapping. Keys are matched case-insensitively.
func (p *CSVParser) WithMapping(m Mapping) *CSVParser {
	cp := *p
	cp.mapping = maps.Clone(p.mapping)
	for k, v := range m {
		cp.mapping[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &cp
}

// Parse parses CSV text whose first row is a header. Every row must have
// as many fields as the header.
func (p *CSVParser) Parse(input string) ([]citation.Citation, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(input, "\ufeff")))
	r.Comma = p.delimiter
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, citation.InvalidFormat("empty CSV input")
	}
	if err != nil {
		return nil, csvError(err)
	}

	fields := make([]string, len(header))
	hasTitle := false
	for i, h := range header {
		if f, ok := p.mapping.fieldFor(h); ok {
			fields[i] = f
			hasTitle = hasTitle || f == "title"
		}
	}
	if !hasTitle {
		return nil, citation.MissingField("title")
	}

	var cits []citation.Citation
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}

		var c citation.Citation
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if fields[i] == "" {
				c.SetExtra(strings.TrimSpace(header[i]), cell)
				continue
			}
			setCSVField(&c, fields[i], cell)
		}
		cits = append(cits, c)
	}

	if len(cits) == 0 {
		return nil, citation.InvalidFormat("no CSV records found")
	}
	citation.StampSource(cits, p.source)
	return cits, nil
}

func setCSVField(c *citation.Citation, field, value string) {
	switch field {
	case "id":
		c.ID = value
	case "title":
		c.Title = value
	case "authors":
		c.Authors = append(c.Authors, parseAuthors(value, ";")...)
	case "year":
		c.Year = parseYear(value)
	case "journal":
		c.Journal = value
	case "journal_abbr":
		c.JournalAbbr = value
	case "volume":
		c.Volume = value
	case "issue":
		c.Issue = value
	case "pages":
		c.Pages = value
	case "doi":
		c.DOI = value
	case "pmid":
		c.PMID = value
	case "pmc_id":
		c.PMCID = value
	case "abstract_text":
		c.Abstract = value
	case "keywords":
		for _, kw := range splitList(value, ";") {
			c.Keywords = appendUnique(c.Keywords, kw)
		}
	case "mesh_terms":
		for _, term := range splitList(value, ";") {
			c.MeshTerms = appendUnique(c.MeshTerms, term)
		}
	case "urls":
		for _, u := range strings.Fields(value) {
			c.URLs = appendUnique(c.URLs, u)
		}
	case "issn":
		for _, issn := range splitList(value, ";") {
			c.ISSN = appendUnique(c.ISSN, issn)
		}
	case "citation_type":
		c.CitationType = appendUnique(c.CitationType, value)
	case "language":
		c.Language = value
	case "publisher":
		c.Publisher = value
	default:
		c.SetExtra(field, value)
	}
}

// csvError maps encoding/csv errors onto the citation taxonomy.
func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return citation.MalformedInput(pe.Err.Error(), pe.Line)
	}
	return citation.FromFormat(err)
}
