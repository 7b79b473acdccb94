package importer

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/matsen/bibdedupe/internal/citation"
)

// Format names accepted by ForFormat.
const (
	FormatRIS       = "ris"
	FormatPubMed    = "pubmed"
	FormatEndNote   = "endnote"
	FormatCSV       = "csv"
	FormatTSV       = "tsv"
	FormatJSON      = "json"
	FormatPaperpile = "paperpile"
	FormatPDF       = "pdf"
)

var formatAliases = map[string]string{
	"medline":     FormatPubMed,
	"nbib":        FormatPubMed,
	"xml":         FormatEndNote,
	"endnote-xml": FormatEndNote,
	"jsonl":       FormatJSON,
}

// Formats returns the canonical format names in sorted order.
func Formats() []string {
	names := []string{
		FormatRIS, FormatPubMed, FormatEndNote, FormatCSV,
		FormatTSV, FormatJSON, FormatPaperpile, FormatPDF,
	}
	slices.Sort(names)
	return names
}

// ForFormat returns a parser for the named format (case-insensitive,
// aliases accepted) that stamps citations with source.
func ForFormat(name, source string) (citation.Parser, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := formatAliases[key]; ok {
		key = alias
	}

	switch key {
	case FormatRIS:
		return NewRISParser().WithSource(source), nil
	case FormatPubMed:
		return NewPubMedParser().WithSource(source), nil
	case FormatEndNote:
		return NewEndNoteXMLParser().WithSource(source), nil
	case FormatCSV:
		return NewCSVParser().WithSource(source), nil
	case FormatTSV:
		return NewCSVParser().WithDelimiter('\t').WithSource(source), nil
	case FormatJSON:
		return NewJSONParser().WithSource(source), nil
	case FormatPaperpile:
		return NewPaperpileParser().WithSource(source), nil
	case FormatPDF:
		return NewPDFParser().WithSource(source), nil
	default:
		return nil, citation.InvalidFieldValue("format",
			"unknown format "+strings.TrimSpace(name)+" (want one of "+strings.Join(Formats(), ", ")+")")
	}
}

var (
	risSniff    = regexp.MustCompile(`(?m)^TY\s+-`)
	pubmedSniff = regexp.MustCompile(`(?m)^PMID-`)
)

// DetectFormat guesses the format of a file from its extension, falling
// back to its content for ambiguous or missing extensions.
func DetectFormat(filename, content string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ris":
		return FormatRIS, nil
	case ".nbib", ".medline":
		return FormatPubMed, nil
	case ".xml":
		return FormatEndNote, nil
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".jsonl", ".ndjson":
		return FormatJSON, nil
	case ".pdf":
		return FormatPDF, nil
	}

	if f := sniffFormat(content); f != "" {
		return f, nil
	}
	return "", citation.InvalidFormat("cannot detect format of %s", filename)
}

func sniffFormat(content string) string {
	head := strings.TrimLeft(strings.TrimPrefix(content, "\ufeff"), " \t\r\n")
	if len(head) > 4096 {
		head = head[:4096]
	}

	switch {
	case strings.HasPrefix(head, "%PDF-"):
		return FormatPDF
	case strings.HasPrefix(head, "<"):
		if strings.Contains(head, "<record") || strings.Contains(head, "<records") || strings.HasPrefix(head, "<?xml") {
			return FormatEndNote
		}
	case strings.HasPrefix(head, "["), strings.HasPrefix(head, "{"):
		if strings.HasPrefix(head, "[") && strings.Contains(head, `"citekey"`) {
			return FormatPaperpile
		}
		return FormatJSON
	case risSniff.MatchString(head):
		return FormatRIS
	case pubmedSniff.MatchString(head):
		return FormatPubMed
	}

	firstLine, _, _ := strings.Cut(head, "\n")
	lower := strings.ToLower(firstLine)
	if strings.Contains(lower, "title") {
		if strings.Count(firstLine, "\t") > strings.Count(firstLine, ",") {
			return FormatTSV
		}
		if strings.Contains(firstLine, ",") {
			return FormatCSV
		}
	}
	return ""
}
