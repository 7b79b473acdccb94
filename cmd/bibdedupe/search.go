package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/bibdedupe/internal/citation"
)

const DefaultSearchLimit = 50

var (
	searchDB    string
	searchLimit int
)

func init() {
	searchCmd.Flags().StringVar(&searchDB, "db", "", "SQLite database written by 'dedupe --db' (default storage.db_path)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search of indexed citations",
	Long: `Search titles, authors, and journals of the citations indexed by the last
'dedupe --db' run.

Examples:
  bibdedupe search --db groups.db "protein folding"
  bibdedupe search Smith --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	path := searchDB
	if path == "" {
		path = appConfig.Storage.DBPath
	}
	db := mustOpenDatabase(path)
	defer db.Close()

	cits, err := db.Search(strings.Join(args, " "), searchLimit)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		if len(cits) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for i, c := range cits {
			fmt.Printf("%d. %s\n", i+1, formatCitationLine(c))
		}
		return nil
	}

	if cits == nil {
		cits = []citation.Citation{}
	}
	outputJSON(cits)
	return nil
}
