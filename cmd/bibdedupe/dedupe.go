package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/bibdedupe/internal/citation"
	"github.com/matsen/bibdedupe/internal/dedupe"
	"github.com/matsen/bibdedupe/internal/storage"
)

var (
	dedupeFormat      string
	dedupeGroupByYear bool
	dedupeParallel    bool
	dedupePrefer      []string
	dedupeMerge       bool
	dedupePrune       bool
	dedupeDB          string
	dedupeOutput      string
)

func init() {
	dedupeCmd.Flags().StringVar(&dedupeFormat, "format", "", "Parse inputs with this format instead of reading citation JSONL (auto to detect)")
	dedupeCmd.Flags().BoolVar(&dedupeGroupByYear, "group-by-year", true, "Only compare citations with the same year")
	dedupeCmd.Flags().BoolVar(&dedupeParallel, "parallel", false, "Cluster year partitions concurrently")
	dedupeCmd.Flags().StringSliceVar(&dedupePrefer, "prefer", nil, "Source tags to prefer as canonical, highest first")
	dedupeCmd.Flags().BoolVar(&dedupeMerge, "merge", false, "Fill gaps in each canonical record from its duplicates")
	dedupeCmd.Flags().BoolVar(&dedupePrune, "prune", false, "Output the input without duplicates, as JSONL")
	dedupeCmd.Flags().StringVar(&dedupeDB, "db", "", "Index citations and groups in this SQLite database")
	dedupeCmd.Flags().StringVarP(&dedupeOutput, "output", "o", "", "With --prune, write JSONL to this file")
	dedupeCmd.MarkFlagsMutuallyExclusive("merge", "prune")
	rootCmd.AddCommand(dedupeCmd)
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <file>...",
	Short: "Find duplicate citations",
	Long: `Find citations that describe the same work.

Inputs are citation JSONL (as written by 'bibdedupe parse') unless --format
is given, in which case they are parsed directly.

Examples:
  bibdedupe dedupe pubmed.jsonl scopus.jsonl --prefer PubMed
  bibdedupe dedupe --format auto export.ris pubmed.nbib --human
  bibdedupe dedupe all.jsonl --prune -o unique.jsonl
  bibdedupe dedupe all.jsonl --merge --db groups.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDedupe,
}

// DedupeResult is the JSON output of a dedupe run.
type DedupeResult struct {
	Stats  dedupe.Stats              `json:"stats"`
	Groups []citation.DuplicateGroup `json:"groups"`
	Merged []citation.Citation       `json:"merged,omitempty"`
}

func runDedupe(cmd *cobra.Command, args []string) error {
	cfg := dedupeConfig(cmd, appConfig.Dedupe)

	cits, err := loadInputs(args, dedupeFormat)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	d, err := dedupe.NewWithConfig(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	d = d.WithLogger(zap.L())

	if dedupePrune {
		return runPrune(d, cits)
	}

	result, err := findDuplicates(d, cits, dedupeMerge)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	dbPath := dedupeDB
	if dbPath == "" {
		dbPath = appConfig.Storage.DBPath
	}
	if dbPath != "" {
		if err := indexRun(dbPath, cits, result.Groups); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	if humanOutput {
		printDedupeHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

// dedupeConfig overlays explicitly set flags on the configured options.
func dedupeConfig(cmd *cobra.Command, base dedupe.Config) dedupe.Config {
	cfg := base
	flags := cmd.Flags()
	if flags.Changed("group-by-year") {
		cfg.GroupByYear = dedupeGroupByYear
	}
	if flags.Changed("parallel") {
		cfg.RunInParallel = dedupeParallel
	}
	if flags.Changed("prefer") {
		cfg.SourcePreferences = dedupePrefer
	}
	return cfg
}

// loadInputs reads citation JSONL, or parses raw exports when format is set.
// "auto" detects the format of each file.
func loadInputs(paths []string, format string) ([]citation.Citation, error) {
	if format != "" {
		if format == "auto" {
			format = ""
		}
		return parseFiles(paths, format, "")
	}

	var all []citation.Citation
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(citation.FromIO(err), "reading %s", path)
		}
		cits, err := storage.Decode(f)
		f.Close()
		if err != nil {
			return nil, eris.Wrapf(err, "reading %s", path)
		}
		all = append(all, cits...)
	}
	return all, nil
}

// findDuplicates runs the deduplicator. With merge, each group's canonical
// record is also merged with its duplicates.
func findDuplicates(d *dedupe.Deduplicator, cits []citation.Citation, merge bool) (DedupeResult, error) {
	groups, stats, err := d.FindDuplicatesWithStats(cits)
	if err != nil {
		return DedupeResult{}, err
	}
	if groups == nil {
		groups = []citation.DuplicateGroup{}
	}

	result := DedupeResult{Stats: stats, Groups: groups}
	if merge {
		result.Merged = make([]citation.Citation, len(groups))
		for i, g := range groups {
			result.Merged[i] = dedupe.MergeGroup(g)
		}
	}
	return result, nil
}

func runPrune(d *dedupe.Deduplicator, cits []citation.Citation) error {
	kept, err := d.Prune(cits)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if dedupeOutput == "" {
		if err := storage.Encode(os.Stdout, kept); err != nil {
			exitWithError(ExitError, "writing citations: %v", err)
		}
		return nil
	}

	if err := storage.WriteAll(dedupeOutput, kept); err != nil {
		exitWithError(ExitError, "writing citations: %v", err)
	}
	if humanOutput {
		fmt.Printf("Kept %s of %d citations in %s\n", bold(len(kept)), len(cits), dedupeOutput)
	} else {
		outputJSON(StatusResponse{Status: fmt.Sprintf("kept %d of %d", len(kept), len(cits)), Path: dedupeOutput})
	}
	return nil
}

// indexRun rebuilds the SQLite index with this run's citations and groups.
func indexRun(path string, cits []citation.Citation, groups []citation.DuplicateGroup) error {
	db, err := storage.OpenDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ReplaceCitations(cits); err != nil {
		return err
	}
	return db.SaveGroups(groups)
}

func printDedupeHuman(result DedupeResult) {
	if len(result.Groups) == 0 {
		fmt.Printf("No duplicates among %d citations.\n", result.Stats.Citations)
		return
	}

	printGroupsHuman(result.Groups)
	fmt.Printf("%s duplicate groups, %s duplicates among %d citations (%d partitions)\n",
		bold(result.Stats.Groups), bold(result.Stats.Duplicates),
		result.Stats.Citations, result.Stats.Partitions)
}
