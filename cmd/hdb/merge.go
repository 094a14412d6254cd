package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echowater/hydrodb/internal/ingest"
	"github.com/echowater/hydrodb/internal/study"
)

var (
	mergeFresh  bool
	mergeDryRun bool
)

func init() {
	mergeCmd.Flags().BoolVar(&mergeFresh, "fresh", false, "Rebuild the database from the sources alone, discarding existing studies")
	mergeCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "Report what the merge would produce without writing")
	rootCmd.AddCommand(mergeCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge all configured sources into the database",
	Long: `Load every source listed in config.json in order and merge it into the
database. While the database is empty a source is taken whole; each later
source only adds studies that are not duplicates of what is already there.
A source that fails to load is reported and skipped.

Add sources with 'hdb source add'.`,
	RunE: runMerge,
}

// MergeResponse is the JSON response for the merge command.
type MergeResponse struct {
	TotalStudies int                   `json:"total_studies"`
	Sources      []ingest.SourceResult `json:"sources"`
	DryRun       bool                  `json:"dry_run,omitempty"`
}

func runMerge(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	if len(cfg.Sources) == 0 {
		exitWithError(ExitConfigError, "no sources configured\n\nAdd one with 'hdb source add <name> <path>'.")
	}

	var existing []study.Record
	if !mergeFresh {
		existing = mustReadStudies(repoRoot)
	}

	m := &ingest.Merger{
		Loader:           ingest.NewLoader(repoRoot, appLog),
		MinTitleLength:   cfg.TitleLength(),
		IncludePotential: cfg.KeepPotential(),
		Workers:          cfg.Workers,
		Log:              appLog,
	}
	res, err := m.Merge(cmd.Context(), existing, cfg.Sources)
	if err != nil {
		exitWithError(ExitDataError, "merging: %v", err)
	}

	if !mergeDryRun {
		mustWriteStudies(repoRoot, res.Records)
	}

	if humanOutput {
		fmt.Print(ingest.MergeReport(res, now()))
	} else {
		outputJSON(MergeResponse{
			TotalStudies: len(res.Records),
			Sources:      res.Sources,
			DryRun:       mergeDryRun,
		})
	}
	return nil
}
