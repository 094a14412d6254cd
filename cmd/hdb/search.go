package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/echowater/hydrodb/internal/stats"
	"github.com/echowater/hydrodb/internal/storage"
	"github.com/echowater/hydrodb/internal/study"
)

var (
	searchLimit       int
	searchAuthors     []string
	searchYearFrom    int
	searchYearTo      int
	searchTopic       string
	searchCountry     string
	searchDesignation string
	searchJournal     string
	searchSource      string
	searchDOI         string
	searchSuggest     bool
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return (0 for all)")
	searchCmd.Flags().StringArrayVarP(&searchAuthors, "author", "a", nil, "Filter by author name (repeatable, AND logic)")
	searchCmd.Flags().IntVar(&searchYearFrom, "year-from", 0, "Earliest publication year")
	searchCmd.Flags().IntVar(&searchYearTo, "year-to", 0, "Latest publication year")
	searchCmd.Flags().StringVar(&searchTopic, "topic", "", "Filter by topic (substring)")
	searchCmd.Flags().StringVar(&searchCountry, "country", "", "Filter by country (substring)")
	searchCmd.Flags().StringVar(&searchDesignation, "designation", "", "Filter by designation (substring)")
	searchCmd.Flags().StringVar(&searchJournal, "journal", "", "Filter by journal (substring)")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "Filter by source tag")
	searchCmd.Flags().StringVar(&searchDOI, "doi", "", "Filter by exact DOI")
	searchCmd.Flags().BoolVar(&searchSuggest, "suggest", false, "Suggest topics, countries, journals and authors matching the query")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search studies by keyword and filters",
	Long: `Search studies by keyword and filters.

The keyword is matched against title, abstract, authors, journal and
topics. Filters combine with AND logic.

Examples:
  hdb search "oxidative stress"
  hdb search --topic exercise --year-from 2020
  hdb search -a Ohta "hydrogen water"
  hdb search --suggest japan`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	if searchSuggest {
		suggestions := stats.Suggestions(mustReadStudies(repoRoot), query)
		if suggestions == nil {
			suggestions = []string{}
		}
		if humanOutput {
			for _, s := range suggestions {
				fmt.Println(s)
			}
		} else {
			outputJSON(suggestions)
		}
		return nil
	}

	filters := storage.SearchFilters{
		Keyword:     query,
		Authors:     searchAuthors,
		YearFrom:    searchYearFrom,
		YearTo:      searchYearTo,
		Topic:       searchTopic,
		Country:     searchCountry,
		Designation: searchDesignation,
		Journal:     searchJournal,
		Source:      searchSource,
		DOI:         searchDOI,
	}
	if isEmptySearch(filters) {
		exitWithError(ExitError, "a query or at least one filter is required")
	}
	if filters.YearFrom > 0 && filters.YearTo > 0 && filters.YearFrom > filters.YearTo {
		exitWithError(ExitError, "--year-from %d is after --year-to %d", filters.YearFrom, filters.YearTo)
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	recs, err := db.SearchWithFilters(filters, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}
	if recs == nil {
		recs = []study.Record{}
	}

	if humanOutput {
		if len(recs) == 0 {
			fmt.Println("No studies found")
			return nil
		}
		fmt.Printf("Found %d studies:\n\n", len(recs))
		for i, rec := range recs {
			printStudySummary(i+1, rec)
		}
	} else {
		outputJSON(recs)
	}
	return nil
}

func isEmptySearch(f storage.SearchFilters) bool {
	return strings.TrimSpace(f.Keyword) == "" && len(f.Authors) == 0 &&
		f.YearFrom == 0 && f.YearTo == 0 && f.Topic == "" && f.Country == "" &&
		f.Designation == "" && f.Journal == "" && f.Source == "" && f.DOI == ""
}
