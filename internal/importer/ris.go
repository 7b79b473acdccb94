package importer

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/matsen/bibdedupe/internal/citation"
)

// risTagLine matches "TY  - JOUR" and the bare terminator "ER  -".
var risTagLine = regexp.MustCompile(`^([A-Z][A-Z0-9])\s+-(?:\s(.*))?$`)

// RISParser parses RIS exports (Research Information Systems).
type RISParser struct {
	source string
}

// NewRISParser returns a RIS parser.
func NewRISParser() *RISParser {
	return &RISParser{}
}

// WithSource returns a copy of the parser that stamps parsed citations with tag.
func (p *RISParser) WithSource(tag string) *RISParser {
	cp := *p
	cp.source = tag
	return &cp
}

type risField struct {
	tag   string
	value string
}

// Parse parses RIS text. Records run from TY to ER; an unterminated final
// record is accepted.
func (p *RISParser) Parse(input string) ([]citation.Citation, error) {
	var (
		records [][]risField
		current []risField
		inside  bool
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

		m := risTagLine.FindStringSubmatch(line)
		if m == nil {
			// Continuation of the previous value
			if inside && len(current) > 0 {
				last := &current[len(current)-1]
				last.value = strings.TrimSpace(last.value + " " + strings.TrimSpace(line))
			}
			continue
		}

		tag, value := m[1], strings.TrimSpace(m[2])
		switch {
		case tag == "TY":
			if inside && len(current) > 0 {
				records = append(records, current)
			}
			current = []risField{{tag: tag, value: value}}
			inside = true
		case tag == "ER":
			if !inside {
				return nil, citation.MalformedInput("ER tag without a preceding TY", lineNo)
			}
			records = append(records, current)
			current, inside = nil, false
		case !inside:
			return nil, citation.MalformedInput("tag "+tag+" outside of a record", lineNo)
		default:
			current = append(current, risField{tag: tag, value: value})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, citation.FromIO(err)
	}
	if inside && len(current) > 0 {
		records = append(records, current)
	}

	if len(records) == 0 {
		return nil, citation.InvalidFormat("no RIS records found")
	}

	cits := make([]citation.Citation, 0, len(records))
	for _, rec := range records {
		cits = append(cits, risRecordToCitation(rec))
	}
	citation.StampSource(cits, p.source)
	return cits, nil
}

func risRecordToCitation(fields []risField) citation.Citation {
	var c citation.Citation
	var startPage, endPage string

	for _, f := range fields {
		v := f.value
		switch f.tag {
		case "TY":
			c.CitationType = appendUnique(c.CitationType, v)
		case "TI", "T1", "CT", "BT":
			if c.Title == "" {
				c.Title = v
			} else if v != c.Title {
				c.SetExtra(f.tag, v)
			}
		case "AU", "A1", "A2", "A3", "A4":
			if a := parseAuthor(v); a.FamilyName != "" || a.GivenName != "" {
				c.Authors = append(c.Authors, a)
			}
		case "AD":
			setAffiliation(&c, v)
		case "PY", "Y1", "DA":
			if c.Year == 0 {
				c.Year = parseYear(v)
			}
		case "JO", "JF", "T2":
			if c.Journal == "" {
				c.Journal = v
			}
		case "JA", "J2", "J1":
			if c.JournalAbbr == "" {
				c.JournalAbbr = v
			}
		case "VL":
			c.Volume = v
		case "IS":
			c.Issue = v
		case "SP":
			startPage = v
		case "EP":
			endPage = v
		case "SN":
			c.ISSN = appendUnique(c.ISSN, v)
		case "DO":
			if c.DOI == "" {
				c.DOI = v
			}
		case "AB", "N2":
			if c.Abstract == "" {
				c.Abstract = v
			}
		case "KW":
			c.Keywords = appendUnique(c.Keywords, v)
		case "UR", "L1", "L2":
			c.URLs = appendUnique(c.URLs, v)
		case "LA":
			c.Language = v
		case "PB":
			c.Publisher = v
		case "ID":
			c.ID = v
		default:
			if v != "" {
				c.SetExtra(f.tag, v)
			}
		}
	}

	// SP sometimes carries the whole range ("123-130")
	if endPage == "" && strings.Contains(startPage, "-") {
		c.Pages = startPage
	} else {
		c.Pages = joinPages(startPage, endPage)
	}
	return c
}
