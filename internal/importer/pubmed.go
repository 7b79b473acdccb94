package importer

import (
	"bufio"
	"strings"

	"github.com/matsen/bibdedupe/internal/citation"
)

// PubMedParser parses PubMed/MEDLINE text exports ("PMID- 12345").
type PubMedParser struct {
	source string
}

// NewPubMedParser returns a PubMed/MEDLINE parser.
func NewPubMedParser() *PubMedParser {
	return &PubMedParser{}
}

// WithSource returns a copy of the parser that stamps parsed citations with tag.
func (p *PubMedParser) WithSource(tag string) *PubMedParser {
	cp := *p
	cp.source = tag
	return &cp
}

type medlineField struct {
	tag   string
	value string
}

// medlineTag splits a "TAG - value" line. Tags are left-aligned in a
// four-character column followed by "- ".
func medlineTag(line string) (tag, value string, ok bool) {
	if len(line) < 5 || line[4] != '-' {
		return "", "", false
	}
	tag = strings.TrimRight(line[:4], " ")
	if tag == "" {
		return "", "", false
	}
	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		if (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
			return "", "", false
		}
	}
	return tag, strings.TrimSpace(line[5:]), true
}

// Parse parses MEDLINE text. Each record starts at a PMID line.
func (p *PubMedParser) Parse(input string) ([]citation.Citation, error) {
	var (
		records [][]medlineField
		current []medlineField
		lineNo  int
	)

	scanner := bufio.NewScanner(strings.NewReader(strings.TrimPrefix(input, "\ufeff")))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		tag, value, ok := medlineTag(line)
		if !ok {
			if strings.HasPrefix(line, " ") && len(current) > 0 {
				last := &current[len(current)-1]
				last.value = strings.TrimSpace(last.value + " " + strings.TrimSpace(line))
				continue
			}
			if current == nil {
				continue
			}
			return nil, citation.MalformedInput("expected a MEDLINE tag or continuation line", lineNo)
		}

		if tag == "PMID" {
			if len(current) > 0 {
				records = append(records, current)
			}
			current = []medlineField{{tag: tag, value: value}}
			continue
		}
		if current == nil {
			return nil, citation.MalformedInput("tag "+tag+" before the first PMID", lineNo)
		}
		current = append(current, medlineField{tag: tag, value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, citation.FromIO(err)
	}
	if len(current) > 0 {
		records = append(records, current)
	}

	if len(records) == 0 {
		return nil, citation.InvalidFormat("no PubMed records found")
	}

	cits := make([]citation.Citation, 0, len(records))
	for _, rec := range records {
		cits = append(cits, medlineRecordToCitation(rec))
	}
	citation.StampSource(cits, p.source)
	return cits, nil
}

func medlineRecordToCitation(fields []medlineField) citation.Citation {
	var c citation.Citation
	var full, short []citation.Author

	// AD lines follow the author they describe
	lastList := &short

	for _, f := range fields {
		v := f.value
		switch f.tag {
		case "PMID":
			c.PMID = v
		case "TI":
			c.Title = v
		case "AB":
			c.Abstract = v
		case "FAU":
			full = append(full, parseAuthor(v))
			lastList = &full
		case "AU":
			short = append(short, parseMedlineAuthor(v))
			if len(full) == 0 {
				lastList = &short
			}
		case "AD":
			if n := len(*lastList); n > 0 {
				a := &(*lastList)[n-1]
				if a.Affiliation == "" {
					a.Affiliation = v
				} else {
					a.Affiliation += "; " + v
				}
			} else {
				c.SetExtra("affiliation", v)
			}
		case "JT":
			c.Journal = v
		case "TA":
			c.JournalAbbr = v
		case "DP":
			c.Year = parseYear(v)
		case "VI":
			c.Volume = v
		case "IP":
			c.Issue = v
		case "PG":
			c.Pages = v
		case "LID", "AID":
			if id, kind, ok := splitQualified(v); ok && kind == "doi" {
				if c.DOI == "" {
					c.DOI = id
				}
			} else {
				c.SetExtra(f.tag, v)
			}
		case "IS":
			issn, _, _ := splitQualified(v)
			c.ISSN = appendUnique(c.ISSN, issn)
		case "LA":
			c.Language = v
		case "MH":
			c.MeshTerms = appendUnique(c.MeshTerms, v)
		case "OT":
			c.Keywords = appendUnique(c.Keywords, v)
		case "PT":
			c.CitationType = appendUnique(c.CitationType, v)
		case "PMC":
			c.PMCID = v
		case "PB":
			c.Publisher = v
		default:
			c.SetExtra(f.tag, v)
		}
	}

	if len(full) > 0 {
		c.Authors = full
	} else {
		c.Authors = short
	}
	return c
}

// splitQualified splits "value [qualifier]" or "value (qualifier)" into its
// parts. ok is false when no qualifier is present; value is always trimmed.
func splitQualified(s string) (value, qualifier string, ok bool) {
	s = strings.TrimSpace(s)
	for _, pair := range [][2]byte{{'[', ']'}, {'(', ')'}} {
		if !strings.HasSuffix(s, string(pair[1])) {
			continue
		}
		if i := strings.LastIndexByte(s, pair[0]); i > 0 {
			return strings.TrimSpace(s[:i]), strings.ToLower(strings.TrimSpace(s[i+1 : len(s)-1])), true
		}
	}
	return s, "", false
}
