package main

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/echowater/hydrodb/internal/config"
	"github.com/echowater/hydrodb/internal/dedupe"
	"github.com/echowater/hydrodb/internal/ingest"
	"github.com/echowater/hydrodb/internal/study"
)

var (
	importName        string
	importFormat      string
	importDryRun      bool
	importNoPotential bool
)

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "Source name used as provenance tag and ID prefix (default: file name)")
	importCmd.Flags().StringVar(&importFormat, "format", "", "Input format: csv, json, jsonl, html or pdf (default: from extension)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	importCmd.Flags().BoolVar(&importNoPotential, "no-potential", false, "Skip potential duplicates instead of keeping them for review")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import studies from a file, skipping duplicates",
	Long: `Import studies from a CSV export, JSON dump, JSONL file, HTML study
page or PDF. HTML and PDF imports may name a directory.

Rows without a title longer than min_title_length are rejected. Every
remaining study is checked against the database: confirmed duplicates
are skipped, potential duplicates are kept unless --no-potential is set.

Examples:
  hdb import "Hydrogen Research Database - Primary.csv" --name primary
  hdb import studies/ --format pdf --name pdfs --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	Source     string         `json:"source"`
	Rows       int            `json:"rows"`
	Accepted   int            `json:"accepted"`
	Rejected   int            `json:"rejected"`
	Duplicates int            `json:"duplicates"`
	Potential  int            `json:"potential_duplicates"`
	Imported   int            `json:"imported"`
	DryRun     bool           `json:"dry_run,omitempty"`
	Details    []ImportDetail `json:"details,omitempty"`
}

// ImportDetail describes a study that matched an existing one.
type ImportDetail struct {
	ID         string  `json:"id"`
	Action     string  `json:"action"` // skip, review
	Title      string  `json:"title"`
	MatchType  string  `json:"match_type"`
	MatchedID  string  `json:"matched_id"`
	Confidence float64 `json:"confidence"`
}

func runImport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	src, recs := mustLoadFile(repoRoot, args[0], importName, importFormat)
	accepted, rejected := ingest.Filter(recs, cfg.TitleLength())
	existing := mustReadStudies(repoRoot)

	check, err := ingest.Check(existing, accepted, cfg.Workers)
	if err != nil {
		exitWithError(ExitDataError, "checking duplicates: %v", err)
	}
	keep := cfg.KeepPotential() && !importNoPotential
	kept := ingest.Kept(check, keep)

	result := ImportResult{
		Source:     src.Name,
		Rows:       len(recs),
		Accepted:   len(accepted),
		Rejected:   len(rejected),
		Duplicates: check.Summary.Duplicates,
		Potential:  check.Summary.PotentialDuplicates,
		Imported:   len(kept),
		DryRun:     importDryRun,
		Details:    matchDetails(check, keep),
	}

	if !importDryRun {
		mustWriteStudies(repoRoot, ingest.Absorb(existing, kept))
		appLog.Info("imported studies", "source", src.Name, "imported", len(kept))
	}

	if humanOutput {
		verb := "Imported"
		if importDryRun {
			verb = "Would import"
		}
		fmt.Printf("%s %d of %d studies from %s\n", verb, result.Imported, result.Rows, src.Name)
		fmt.Printf("  rejected (short or missing title): %d\n", result.Rejected)
		fmt.Printf("  duplicates skipped:                %d\n", result.Duplicates)
		fmt.Printf("  potential duplicates:              %d\n", result.Potential)
		for _, d := range result.Details {
			fmt.Printf("  %-6s %s  %s (%s %.2f, matches %s)\n", d.Action, d.ID,
				truncateString(d.Title, ImportTitleMaxLen), d.MatchType, d.Confidence, d.MatchedID)
		}
	} else {
		outputJSON(result)
	}
	return nil
}

// mustLoadFile loads a single file as a source, exits on error.
func mustLoadFile(repoRoot, path, name, format string) (config.Source, []study.Record) {
	abs, err := filepath.Abs(config.ExpandPath(path))
	if err != nil {
		exitWithError(ExitError, "resolving %s: %v", path, err)
	}
	if name == "" {
		name = sourceNameFromPath(abs)
	}
	src := config.Source{Name: name, Path: abs, Format: format}
	if err := config.ValidateSource(src); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	recs, err := ingest.NewLoader(repoRoot, appLog).Load(src)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return src, recs
}

var nonNameChars = regexp.MustCompile(`[^a-z0-9]+`)

// sourceNameFromPath derives a source name from a file name:
// "Hydrogen DB - Primary.csv" becomes "hydrogen_db_primary".
func sourceNameFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := strings.Trim(nonNameChars.ReplaceAllString(strings.ToLower(base), "_"), "_")
	if name == "" {
		return "import"
	}
	return name
}

// matchDetails lists confirmed duplicates as skipped and potential
// duplicates as kept for review (or skipped when they are not kept).
func matchDetails(res *dedupe.Result, keepPotential bool) []ImportDetail {
	var details []ImportDetail
	add := func(m dedupe.Match, action string) {
		detail := ImportDetail{
			ID:         m.Record.ID,
			Action:     action,
			Title:      m.Record.Title,
			MatchType:  string(m.MatchType),
			Confidence: m.Confidence,
		}
		if m.Matched != nil {
			detail.MatchedID = m.Matched.ID
		}
		details = append(details, detail)
	}

	for _, m := range res.Duplicates {
		add(m, "skip")
	}
	potentialAction := "review"
	if !keepPotential {
		potentialAction = "skip"
	}
	for _, m := range res.PotentialDuplicates {
		add(m, potentialAction)
	}
	return details
}
