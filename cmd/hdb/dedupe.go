package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echowater/hydrodb/internal/dedupe"
	"github.com/echowater/hydrodb/internal/ingest"
)

var (
	dedupeName   string
	dedupeFormat string
	dedupeAll    bool
)

func init() {
	dedupeCmd.Flags().StringVar(&dedupeName, "name", "", "Source name (default: file name)")
	dedupeCmd.Flags().StringVar(&dedupeFormat, "format", "", "Input format (default: from extension)")
	dedupeCmd.Flags().BoolVar(&dedupeAll, "all", false, "Include unique studies in JSON output")
	rootCmd.AddCommand(dedupeCmd)
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <file>",
	Short: "Check a file for duplicates of existing studies",
	Long: `Classify every study in a file against the database without writing.

Each study is a duplicate (same DOI, same first author, year and journal,
or a title at least 85% similar), a potential duplicate (title at least
70% or abstract at least 80% similar), or unique.

With --human the plain-text duplicate report is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDedupe,
}

// DedupeResult is the JSON response for the dedupe command.
type DedupeResult struct {
	Source              string         `json:"source"`
	Rejected            int            `json:"rejected"`
	Summary             dedupe.Summary `json:"summary"`
	Duplicates          []dedupe.Match `json:"duplicates"`
	PotentialDuplicates []dedupe.Match `json:"potential_duplicates"`
	Unique              []dedupe.Match `json:"unique,omitempty"`
}

func runDedupe(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	src, recs := mustLoadFile(repoRoot, args[0], dedupeName, dedupeFormat)
	accepted, rejected := ingest.Filter(recs, cfg.TitleLength())

	res, err := ingest.Check(mustReadStudies(repoRoot), accepted, cfg.Workers)
	if err != nil {
		exitWithError(ExitDataError, "checking duplicates: %v", err)
	}

	if humanOutput {
		fmt.Print(dedupe.Report(res))
		return nil
	}

	out := DedupeResult{
		Source:              src.Name,
		Rejected:            len(rejected),
		Summary:             res.Summary,
		Duplicates:          res.Duplicates,
		PotentialDuplicates: res.PotentialDuplicates,
	}
	if dedupeAll {
		out.Unique = res.Unique
	}
	outputJSON(out)
	return nil
}
