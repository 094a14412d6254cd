package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/echowater/hydrodb/internal/export"
	"github.com/echowater/hydrodb/internal/storage"
	"github.com/echowater/hydrodb/internal/study"
)

var (
	exportFormat string
	exportOutput string
	exportKeys   string
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format: csv, bibtex, json or parquet")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout; required for parquet)")
	exportCmd.Flags().StringVar(&exportKeys, "keys", "", "Export only specified IDs (comma-separated)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export studies to CSV, BibTeX, JSON or Parquet",
	Long: `Export studies to CSV, BibTeX, JSON or Parquet.

The JSON export wraps the studies with their statistics and export
metadata. Parquet output must go to a file.

Examples:
  hdb export > studies.csv
  hdb export --format bibtex --keys primary_1,primary_7
  hdb export --format parquet -o studies.parquet`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(exportFormat)
	switch format {
	case "csv", "bibtex", "json", "parquet":
	default:
		exitWithError(ExitError, "unknown export format: %s (valid: csv, bibtex, json, parquet)", exportFormat)
	}
	if format == "parquet" && exportOutput == "" {
		exitWithError(ExitError, "--output is required for parquet export")
	}

	repoRoot := mustFindRepository()
	recs := selectStudies(mustReadStudies(repoRoot), exportKeys)

	if format == "parquet" {
		if err := export.ToParquet(exportOutput, recs); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		reportExport(len(recs))
		return nil
	}

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", exportOutput, err)
		}
		defer f.Close()
		w = f
	}

	var err error
	switch format {
	case "csv":
		err = export.ToCSV(w, recs)
	case "bibtex":
		_, err = io.WriteString(w, export.ToBibTeXList(recs))
	case "json":
		err = export.ToJSON(w, recs, now())
	}
	if err != nil {
		exitWithError(ExitError, "writing %s: %v", format, err)
	}

	if exportOutput != "" {
		reportExport(len(recs))
	}
	return nil
}

// selectStudies returns the studies named in keys, in key order, or every
// study when keys is empty. Unknown keys are an error.
func selectStudies(recs []study.Record, keys string) []study.Record {
	if strings.TrimSpace(keys) == "" {
		return recs
	}
	var selected []study.Record
	for _, key := range strings.Split(keys, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		i, ok := storage.FindByID(recs, key)
		if !ok {
			exitWithError(ExitError, "unknown key: %s", key)
		}
		selected = append(selected, recs[i])
	}
	return selected
}

// ExportResult is the response when an export is written to a file.
type ExportResult struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Studies int    `json:"studies"`
}

func reportExport(n int) {
	if humanOutput {
		fmt.Fprintf(os.Stderr, "Exported %d studies to %s\n", n, exportOutput)
	} else {
		outputJSON(ExportResult{Status: "exported", Path: exportOutput, Studies: n})
	}
}
