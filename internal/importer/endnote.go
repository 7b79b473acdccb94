package importer

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/matsen/bibdedupe/internal/citation"
)

// EndNoteXMLParser parses EndNote XML exports (<xml><records><record>...).
type EndNoteXMLParser struct {
	source string
}

// NewEndNoteXMLParser returns an EndNote XML parser.
func NewEndNoteXMLParser() *EndNoteXMLParser {
	return &EndNoteXMLParser{}
}

// WithSource returns a copy of the parser that stamps parsed citations with tag.
func (p *EndNoteXMLParser) WithSource(tag string) *EndNoteXMLParser {
	cp := *p
	cp.source = tag
	return &cp
}

// styled is EndNote element text, either bare or split across <style> runs.
type styled struct {
	Chars  string   `xml:",chardata"`
	Styles []string `xml:"style"`
}

func (s styled) String() string {
	return strings.TrimSpace(s.Chars + strings.Join(s.Styles, ""))
}

type endnoteRecord struct {
	RecNumber string `xml:"rec-number"`
	RefType   struct {
		Name string `xml:"name,attr"`
		Code string `xml:",chardata"`
	} `xml:"ref-type"`
	Authors     []styled `xml:"contributors>authors>author"`
	AuthAddress []styled `xml:"auth-address"`
	Titles      struct {
		Title          styled `xml:"title"`
		SecondaryTitle styled `xml:"secondary-title"`
		AltTitle       styled `xml:"alt-title"`
	} `xml:"titles"`
	Periodical struct {
		FullTitle styled `xml:"full-title"`
		Abbr1     styled `xml:"abbr-1"`
	} `xml:"periodical"`
	Pages    styled   `xml:"pages"`
	Volume   styled   `xml:"volume"`
	Number   styled   `xml:"number"`
	Keywords []styled `xml:"keywords>keyword"`
	Dates    struct {
		Year     styled   `xml:"year"`
		PubDates []styled `xml:"pub-dates>date"`
	} `xml:"dates"`
	ISBN          styled   `xml:"isbn"`
	DOI           styled   `xml:"electronic-resource-num"`
	Abstract      styled   `xml:"abstract"`
	RelatedURLs   []styled `xml:"urls>related-urls>url"`
	PDFURLs       []styled `xml:"urls>pdf-urls>url"`
	WebURLs       []styled `xml:"urls>web-urls>url"`
	Language      styled   `xml:"language"`
	Publisher     styled   `xml:"publisher"`
	AccessionNum  styled   `xml:"accession-num"`
	Database      string   `xml:"database"`
	SourceApp     string   `xml:"source-app"`
	ForeignKeys   string   `xml:"foreign-keys"`
	Other         []struct {
		XMLName xml.Name
		styled
	} `xml:",any"`
}

// Parse parses EndNote XML. Non-UTF-8 documents are decoded according to
// their XML declaration.
func (p *EndNoteXMLParser) Parse(input string) ([]citation.Citation, error) {
	decoder := xml.NewDecoder(strings.NewReader(input))
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "endnote: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var cits []citation.Citation
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, citation.FromFormat(err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "record" {
			continue
		}

		var rec endnoteRecord
		if err := decoder.DecodeElement(&rec, &se); err != nil {
			return nil, citation.FromFormat(err)
		}
		cits = append(cits, endnoteRecordToCitation(rec))
	}

	if len(cits) == 0 {
		return nil, citation.InvalidFormat("no EndNote XML records found")
	}
	citation.StampSource(cits, p.source)
	return cits, nil
}

func endnoteRecordToCitation(rec endnoteRecord) citation.Citation {
	c := citation.Citation{
		ID:        strings.TrimSpace(rec.RecNumber),
		Title:     rec.Titles.Title.String(),
		Pages:     rec.Pages.String(),
		Volume:    rec.Volume.String(),
		Issue:     rec.Number.String(),
		DOI:       rec.DOI.String(),
		Abstract:  rec.Abstract.String(),
		Language:  rec.Language.String(),
		Publisher: rec.Publisher.String(),
	}

	refType := strings.TrimSpace(rec.RefType.Name)
	if refType == "" {
		refType = strings.TrimSpace(rec.RefType.Code)
	}
	c.CitationType = appendUnique(c.CitationType, refType)

	for _, a := range rec.Authors {
		if author := parseAuthor(a.String()); author.FamilyName != "" || author.GivenName != "" {
			c.Authors = append(c.Authors, author)
		}
	}
	for _, addr := range rec.AuthAddress {
		setAffiliation(&c, addr.String())
	}

	c.Journal = rec.Periodical.FullTitle.String()
	if c.Journal == "" {
		c.Journal = rec.Titles.SecondaryTitle.String()
	}
	c.JournalAbbr = rec.Periodical.Abbr1.String()
	if c.JournalAbbr == "" {
		c.JournalAbbr = rec.Titles.AltTitle.String()
	}

	c.Year = parseYear(rec.Dates.Year.String())
	for _, d := range rec.Dates.PubDates {
		if c.Year != 0 {
			break
		}
		c.Year = parseYear(d.String())
	}

	// One ISSN per line, often qualified: "1234-5678 (Print)"
	for _, line := range strings.FieldsFunc(rec.ISBN.String(), func(r rune) bool { return r == '\n' || r == '\r' || r == ';' }) {
		issn, _, _ := splitQualified(line)
		c.ISSN = appendUnique(c.ISSN, issn)
	}

	for _, kw := range rec.Keywords {
		c.Keywords = appendUnique(c.Keywords, kw.String())
	}
	for _, group := range [][]styled{rec.RelatedURLs, rec.PDFURLs, rec.WebURLs} {
		for _, u := range group {
			c.URLs = appendUnique(c.URLs, u.String())
		}
	}

	if acc := rec.AccessionNum.String(); isDigits(acc) {
		c.PMID = acc
	} else if acc != "" {
		c.SetExtra("accession-num", acc)
	}

	for _, o := range rec.Other {
		if v := o.String(); v != "" {
			c.SetExtra(o.XMLName.Local, v)
		}
	}

	return c
}
