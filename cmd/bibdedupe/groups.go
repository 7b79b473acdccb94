package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibdedupe/internal/citation"
)

var groupsDB string

func init() {
	groupsCmd.Flags().StringVar(&groupsDB, "db", "", "SQLite database written by 'dedupe --db' (default storage.db_path)")
	rootCmd.AddCommand(groupsCmd)
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List duplicate groups stored by a previous dedupe run",
	Args:  cobra.NoArgs,
	RunE:  runGroups,
}

// GroupsResult is the JSON output of the groups command.
type GroupsResult struct {
	Citations int                       `json:"citations"`
	Groups    []citation.DuplicateGroup `json:"groups"`
}

func runGroups(cmd *cobra.Command, args []string) error {
	path := groupsDB
	if path == "" {
		path = appConfig.Storage.DBPath
	}
	db := mustOpenDatabase(path)
	defer db.Close()

	groups, err := db.Groups()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	count, err := db.CountCitations()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		if len(groups) == 0 {
			fmt.Printf("No duplicate groups stored (%d citations indexed).\n", count)
			return nil
		}
		printGroupsHuman(groups)
		fmt.Printf("%s groups among %d indexed citations\n", bold(len(groups)), count)
		return nil
	}

	if groups == nil {
		groups = []citation.DuplicateGroup{}
	}
	outputJSON(GroupsResult{Citations: count, Groups: groups})
	return nil
}
