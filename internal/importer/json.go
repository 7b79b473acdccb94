package importer

import (
	"bufio"
	"encoding/json"
	"strings"

	"github.com/matsen/bibdedupe/internal/citation"
)

// JSONParser parses citations in the canonical JSON schema, either as a
// single array or as JSON Lines.
type JSONParser struct {
	source string
}

// NewJSONParser returns a JSON/JSONL parser.
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// WithSource returns a copy of the parser that stamps parsed citations with
// tag. Citations that already carry a source are overwritten.
func (p *JSONParser) WithSource(tag string) *JSONParser {
	cp := *p
	cp.source = tag
	return &cp
}

// jsonCitation accepts "year" as either a number or a string.
type jsonCitation struct {
	citation.Citation
	Year FlexibleString `json:"year"`
}

func (j jsonCitation) toCitation() (citation.Citation, error) {
	c := j.Citation
	if y := strings.TrimSpace(j.Year.String()); y != "" {
		c.Year = parseYear(y)
		if c.Year == 0 {
			return citation.Citation{}, citation.InvalidFieldValue("year", y)
		}
	}
	return c, nil
}

// Parse parses a JSON array of citations or one citation object per line.
func (p *JSONParser) Parse(input string) ([]citation.Citation, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if trimmed == "" {
		return nil, citation.InvalidFormat("empty JSON input")
	}

	var cits []citation.Citation
	var err error
	if trimmed[0] == '[' {
		cits, err = parseJSONArray(trimmed)
	} else {
		cits, err = parseJSONLines(trimmed)
	}
	if err != nil {
		return nil, err
	}

	if len(cits) == 0 {
		return nil, citation.InvalidFormat("no JSON citations found")
	}
	citation.StampSource(cits, p.source)
	return cits, nil
}

func parseJSONArray(input string) ([]citation.Citation, error) {
	var raw []jsonCitation
	if err := json.Unmarshal([]byte(input), &raw); err != nil {
		return nil, citation.FromFormat(err)
	}
	cits := make([]citation.Citation, 0, len(raw))
	for _, r := range raw {
		c, err := r.toCitation()
		if err != nil {
			return nil, err
		}
		cits = append(cits, c)
	}
	return cits, nil
}

func parseJSONLines(input string) ([]citation.Citation, error) {
	var cits []citation.Citation

	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var r jsonCitation
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			return nil, citation.MalformedInput(err.Error(), lineNo)
		}
		c, err := r.toCitation()
		if err != nil {
			return nil, err
		}
		cits = append(cits, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, citation.FromIO(err)
	}
	return cits, nil
}
