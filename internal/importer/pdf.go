package importer

import (
	"strconv"
	"strings"

	"github.com/matsen/bibdedupe/internal/citation"
	"github.com/matsen/bibdedupe/internal/pdf"
)

// PDFParser extracts one citation from the raw bytes of a PDF document:
// DOI, a best-effort title, and document-info authors.
type PDFParser struct {
	source string
}

// NewPDFParser returns a PDF parser.
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// WithSource returns a copy of the parser that stamps parsed citations with tag.
func (p *PDFParser) WithSource(tag string) *PDFParser {
	cp := *p
	cp.source = tag
	return &cp
}

// Parse reads input as PDF bytes.
func (p *PDFParser) Parse(input string) ([]citation.Citation, error) {
	if !strings.HasPrefix(strings.TrimLeft(input, "\x00\t\r\n "), "%PDF-") {
		return nil, citation.InvalidFormat("missing %%PDF- header")
	}

	doc, err := pdf.Open(strings.NewReader(input), int64(len(input)))
	if err != nil {
		return nil, citation.FromFormat(err)
	}
	info := doc.Info()

	c := citation.Citation{
		CitationType: []string{"PDF"},
		Title:        info.Title,
		DOI:          info.DOI,
	}
	for _, name := range splitPDFAuthors(info.Authors) {
		if a := parseAuthor(name); a.FamilyName != "" || a.GivenName != "" {
			c.Authors = append(c.Authors, a)
		}
	}
	for _, kw := range splitList(info.Keywords, ";") {
		if pdf.FindDOI(kw) == "" {
			c.Keywords = appendUnique(c.Keywords, kw)
		}
	}
	if info.Subject != "" {
		c.SetExtra("subject", info.Subject)
	}
	if info.Pages > 0 {
		c.SetExtra("page_count", strconv.Itoa(info.Pages))
	}

	cits := []citation.Citation{c}
	citation.StampSource(cits, p.source)
	return cits, nil
}

// splitPDFAuthors splits a document-info Author entry. Semicolons separate
// "Family, Given" names; otherwise commas and "and" separate "Given Family"
// names.
func splitPDFAuthors(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Contains(s, ";") {
		return splitList(s, ";")
	}
	s = strings.ReplaceAll(s, " and ", ",")
	return splitList(s, ",")
}
