package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a single study by ID",
	Long: `Get a single study by its ID.

Example:
  hdb get primary_12`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	id := args[0]
	rec, err := db.GetByID(id)
	if err != nil {
		exitWithError(ExitError, "getting study: %v", err)
	}
	if rec == nil {
		exitWithError(ExitError, "study not found: %s", id)
	}

	if humanOutput {
		printStudyDetail(*rec)
	} else {
		outputJSON(rec)
	}
	return nil
}
