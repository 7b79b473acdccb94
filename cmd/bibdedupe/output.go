package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/matsen/bibdedupe/internal/citation"
)

// Title truncation lengths by context
const (
	GroupTitleMaxLen  = 70 // Used in dedupe and groups output
	SearchTitleMaxLen = 60 // Used in search result lists
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "%s %s\n", red("error:"), msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// printGroupsHuman prints duplicate groups with the canonical record first.
func printGroupsHuman(groups []citation.DuplicateGroup) {
	for i, g := range groups {
		fmt.Printf("%s %s\n", bold(fmt.Sprintf("Group %d", i+1)), gray(fmt.Sprintf("(%d records)", len(g.Duplicates)+1)))
		fmt.Printf("  %s %s\n", green("keep"), formatCitationLine(g.Unique))
		for _, d := range g.Duplicates {
			fmt.Printf("  %s %s\n", yellow("drop"), formatCitationLine(d))
		}
		fmt.Println()
	}
}

// formatCitationLine renders "[source] id  Title (Authors, Year)".
func formatCitationLine(c citation.Citation) string {
	var sb strings.Builder
	if c.Source != "" {
		sb.WriteString("[" + c.Source + "] ")
	}
	if c.ID != "" {
		sb.WriteString(c.ID + "  ")
	}
	sb.WriteString(truncateString(c.Title, GroupTitleMaxLen))

	var meta []string
	if a := formatAuthorsShort(c.Authors, 2); a != "" {
		meta = append(meta, a)
	}
	if c.HasYear() {
		meta = append(meta, fmt.Sprint(c.Year))
	}
	if len(meta) > 0 {
		sb.WriteString(" (" + strings.Join(meta, ", ") + ")")
	}
	return sb.String()
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// formatAuthorShort formats an author as "Family G" (first initial).
func formatAuthorShort(a citation.Author) string {
	if a.GivenName != "" {
		return a.FamilyName + " " + string([]rune(a.GivenName)[0])
	}
	return a.FamilyName
}

// formatAuthorsShort formats authors with abbreviation and "et al." for more than maxCount.
func formatAuthorsShort(authors []citation.Author, maxCount int) string {
	if len(authors) == 0 {
		return ""
	}

	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, formatAuthorShort(a))
	}
	return strings.Join(names, ", ")
}
