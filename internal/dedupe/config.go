package dedupe

import (
	"fmt"
	"strings"

	"github.com/matsen/bibdedupe/internal/citation"
)

// Config holds the options recognized by the Deduplicator.
type Config struct {
	// GroupByYear partitions citations by publication year before matching.
	// Citations without a year form their own partition. Duplicates whose
	// years disagree are never found in this mode.
	GroupByYear bool `json:"group_by_year" yaml:"group_by_year" mapstructure:"group_by_year"`

	// RunInParallel clusters partitions concurrently. Output is identical to
	// sequential execution.
	RunInParallel bool `json:"run_in_parallel" yaml:"run_in_parallel" mapstructure:"run_in_parallel"`

	// SourcePreferences ranks source tags for canonical selection, highest
	// priority first. Used only as a tie-break, never as a filter.
	SourcePreferences []string `json:"source_preferences" yaml:"source_preferences" mapstructure:"source_preferences"`
}

// DefaultConfig returns the default deduplication configuration.
func DefaultConfig() Config {
	return Config{
		GroupByYear:   true,
		RunInParallel: false,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.SourcePreferences))
	for i, pref := range c.SourcePreferences {
		key := sourceKey(pref)
		if key == "" {
			return citation.InvalidFieldValue("source_preferences",
				fmt.Sprintf("entry %d is blank", i))
		}
		if seen[key] {
			return citation.InvalidFieldValue("source_preferences",
				fmt.Sprintf("duplicate entry %q", pref))
		}
		seen[key] = true
	}
	return nil
}

// sourceKey is the comparison form of a source tag.
func sourceKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
