package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// searchPages is how many leading pages are scanned for a DOI.
const searchPages = 3

// Info is the metadata recovered from one PDF.
type Info struct {
	Title    string
	Authors  string // Raw document-info Author entry
	Subject  string
	Keywords string
	DOI      string
	Pages    int
}

// Document is an opened PDF.
type Document struct {
	r *pdf.Reader
}

// Open reads a PDF from r. The PDF library panics on some malformed
// inputs; those panics are returned as errors.
func Open(r io.ReaderAt, size int64) (doc *Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("reading PDF: %v", rec)
		}
	}()

	pr, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return &Document{r: pr}, nil
}

func (d *Document) pageText(i int) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	page := d.r.Page(i)
	if page.V.IsNull() {
		return "", false
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	return text, true
}

// infoString reads an entry of the document information dictionary.
func (d *Document) infoString(key string) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()

	v := d.r.Trailer().Key("Info").Key(key)
	if v.IsNull() {
		return ""
	}
	return strings.TrimSpace(v.Text())
}

// Info extracts metadata. The DOI is searched on the first pages, then in
// the Subject and Keywords entries. The title comes from the information
// dictionary when present, else from the first page.
func (d *Document) Info() Info {
	info := Info{
		Title:    d.infoString("Title"),
		Authors:  d.infoString("Author"),
		Subject:  d.infoString("Subject"),
		Keywords: d.infoString("Keywords"),
		Pages:    d.r.NumPage(),
	}

	for i := 1; i <= min(searchPages, info.Pages); i++ {
		text, ok := d.pageText(i)
		if !ok {
			continue
		}
		if info.DOI == "" {
			info.DOI = FindDOI(text)
		}
		if i == 1 && !plausibleTitle(info.Title) {
			info.Title = GuessTitle(text)
		}
		if info.DOI != "" {
			break
		}
	}

	if info.DOI == "" {
		info.DOI = FindDOI(info.Subject + "\n" + info.Keywords)
	}
	if !plausibleTitle(info.Title) {
		info.Title = ""
	}
	return info
}

// plausibleTitle rejects information-dictionary titles that are file names
// or authoring-tool placeholders.
func plausibleTitle(t string) bool {
	lower := strings.ToLower(t)
	if len(t) < 8 || lower == "untitled" {
		return false
	}
	for _, ext := range []string{".pdf", ".doc", ".docx", ".tex", ".dvi"} {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	return true
}
