package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echowater/hydrodb/internal/config"
	"github.com/echowater/hydrodb/internal/ingest"
	"github.com/echowater/hydrodb/internal/scraper"
)

var (
	scrapeName     string
	scrapeBaseURL  string
	scrapeMaxPages int
	scrapeDelayMS  int
	scrapeDryRun   bool
)

func init() {
	scrapeCmd.Flags().StringVar(&scrapeName, "name", "web", "Source name for scraped studies")
	scrapeCmd.Flags().StringVar(&scrapeBaseURL, "base-url", "", "Site root (default: scraper.base_url)")
	scrapeCmd.Flags().IntVar(&scrapeMaxPages, "max-pages", 0, "Listing pages to walk when the entry page has no study links (default: scraper.max_pages)")
	scrapeCmd.Flags().IntVar(&scrapeDelayMS, "delay-ms", 0, "Milliseconds between requests (default: scraper.delay_ms)")
	scrapeCmd.Flags().BoolVar(&scrapeDryRun, "dry-run", false, "Scrape and classify without writing")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape study pages from the studies website",
	Long: `Fetch study pages from the studies website and import them.

Requests are rate limited and retried with a growing delay. Pages that
cannot be fetched are reported and skipped. Scraped studies go through
the same title filter and duplicate check as 'hdb import'.

Settings come from the scraper section of ~/.config/hdb/config.yml.`,
	RunE: runScrape,
}

// ScrapeResult is the JSON response for the scrape command.
type ScrapeResult struct {
	EntryURL   string            `json:"entry_url"`
	Pages      int               `json:"pages"`
	Extracted  int               `json:"extracted"`
	Rejected   int               `json:"rejected"`
	Duplicates int               `json:"duplicates"`
	Potential  int               `json:"potential_duplicates"`
	Imported   int               `json:"imported"`
	Failures   []scraper.Failure `json:"failures,omitempty"`
	Details    []ImportDetail    `json:"details,omitempty"`
	DryRun     bool              `json:"dry_run,omitempty"`
}

func runScrape(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	settings, err := config.ScraperSettings()
	if err != nil {
		exitWithError(ExitConfigError, "loading scraper settings: %v", err)
	}
	if scrapeBaseURL != "" {
		settings.BaseURL = scrapeBaseURL
	}
	if scrapeMaxPages > 0 {
		settings.MaxPages = scrapeMaxPages
	}
	if scrapeDelayMS > 0 {
		settings.DelayMS = scrapeDelayMS
	}
	if err := config.ValidateSource(config.Source{Name: scrapeName, Path: settings.BaseURL, Format: "html"}); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	client := scraper.NewClientFromConfig(settings, appLog)
	res, err := scraper.New(client, settings.MaxPages, appLog).Scrape(cmd.Context())
	if err != nil {
		if errors.Is(err, scraper.ErrNoEntryPage) {
			exitWithError(ExitNetworkError, "%v", err)
		}
		exitWithError(ExitError, "scraping: %v", err)
	}

	recs := ingest.NewLoader(repoRoot, appLog).Records(res.Rows, scrapeName)
	accepted, rejected := ingest.Filter(recs, cfg.TitleLength())
	existing := mustReadStudies(repoRoot)

	check, err := ingest.Check(existing, accepted, cfg.Workers)
	if err != nil {
		exitWithError(ExitDataError, "checking duplicates: %v", err)
	}
	kept := ingest.Kept(check, cfg.KeepPotential())

	if !scrapeDryRun {
		mustWriteStudies(repoRoot, ingest.Absorb(existing, kept))
	}

	result := ScrapeResult{
		EntryURL:   res.EntryURL,
		Pages:      len(res.StudyURLs),
		Extracted:  len(res.Rows),
		Rejected:   len(rejected),
		Duplicates: check.Summary.Duplicates,
		Potential:  check.Summary.PotentialDuplicates,
		Imported:   len(kept),
		Failures:   res.Failures,
		Details:    matchDetails(check, cfg.KeepPotential()),
		DryRun:     scrapeDryRun,
	}

	if humanOutput {
		fmt.Printf("Scraped %d of %d study pages from %s\n", result.Extracted, result.Pages, result.EntryURL)
		fmt.Printf("  failed pages:         %d\n", len(result.Failures))
		fmt.Printf("  rejected:             %d\n", result.Rejected)
		fmt.Printf("  duplicates skipped:   %d\n", result.Duplicates)
		fmt.Printf("  potential duplicates: %d\n", result.Potential)
		fmt.Printf("  imported:             %d\n", result.Imported)
	} else {
		outputJSON(result)
	}
	return nil
}
