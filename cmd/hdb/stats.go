package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echowater/hydrodb/internal/stats"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long: `Show year coverage, category counts, recent studies, the top topics,
countries, journals and authors, and studies per year.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	s := stats.Compute(mustReadStudies(repoRoot), now())

	if !humanOutput {
		outputJSON(s)
		return nil
	}

	fmt.Printf("Studies:       %d\n", s.TotalStudies)
	yr := s.YearRange
	if yr.Earliest != nil {
		fmt.Printf("Years:         %d-%d (%d with a year)\n", *yr.Earliest, *yr.Latest, yr.StudiesWithYears)
	} else {
		fmt.Println("Years:         none")
	}
	fmt.Printf("Topics:        %d\n", s.TopicsCount)
	fmt.Printf("Countries:     %d\n", s.CountriesCount)
	fmt.Printf("Designations:  %d\n", s.DesignationsCount)
	fmt.Printf("Journals:      %d\n", s.JournalsCount)
	fmt.Printf("Authors:       %d\n", s.AuthorsCount)

	printRanking("Top topics", s.TopTopics)
	printRanking("Top countries", s.TopCountries)
	printRanking("Top journals", s.TopJournals)
	printRanking("Top authors", s.TopAuthors)

	if len(s.RecentStudies) > 0 {
		fmt.Println("\nRecent studies:")
		for _, rec := range s.RecentStudies {
			fmt.Printf("  %s  %s  %s\n", yearLabel(&rec), rec.ID, truncateString(rec.Title, SummaryTitleLen))
		}
	}

	if len(s.GrowthTrends) > 0 {
		fmt.Println("\nStudies per year:")
		for _, g := range s.GrowthTrends {
			fmt.Printf("  %d  %d\n", g.Year, g.Count)
		}
	}
	return nil
}

func printRanking(title string, counts []stats.Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for i, c := range counts {
		fmt.Printf("  %2d. %s (%d)\n", i+1, c.Name, c.Count)
	}
}
