package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/echowater/hydrodb/internal/stats"
)

// reportTopLimit bounds the topic and country rankings in MergeReport.
const reportTopLimit = 5

// MergeReport renders the plain-text update report for a merge.
func MergeReport(res *MergeResult, now time.Time) string {
	var b strings.Builder
	s := stats.Compute(res.Records, now)

	b.WriteString("=== HYDROGEN STUDIES DATABASE - COMPREHENSIVE UPDATE REPORT ===\n\n")

	b.WriteString("DATABASE SUMMARY:\n")
	fmt.Fprintf(&b, "- Total studies in database: %d\n", len(res.Records))
	fmt.Fprintf(&b, "- Data sources processed: %d\n\n", len(res.Sources))

	b.WriteString("SOURCE BREAKDOWN:\n")
	for _, sr := range res.Sources {
		name := strings.ToUpper(sr.Name)
		if !sr.OK() {
			fmt.Fprintf(&b, "- %s: FAILED TO LOAD\n", name)
			continue
		}
		fmt.Fprintf(&b, "- %s: %d studies loaded", name, sr.Accepted)
		if sr.Duplicates > 0 {
			fmt.Fprintf(&b, " (%d duplicates removed)", sr.Duplicates)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nSTATISTICS:\n")
	fmt.Fprintf(&b, "- Year range: %s to %s\n", yearOrNA(s.YearRange.Earliest), yearOrNA(s.YearRange.Latest))
	fmt.Fprintf(&b, "- Unique topics: %d\n", s.TopicsCount)
	fmt.Fprintf(&b, "- Unique countries: %d\n", s.CountriesCount)
	fmt.Fprintf(&b, "- Unique journals: %d\n", s.JournalsCount)
	fmt.Fprintf(&b, "- Unique authors: %d\n", s.AuthorsCount)

	b.WriteString("\nTOP TOPICS:\n")
	for i, c := range stats.Top(res.Records, stats.Topics, reportTopLimit) {
		fmt.Fprintf(&b, "%d. %s: %d studies\n", i+1, c.Name, c.Count)
	}

	b.WriteString("\nTOP COUNTRIES:\n")
	for i, c := range stats.Top(res.Records, stats.Countries, reportTopLimit) {
		fmt.Fprintf(&b, "%d. %s: %d studies\n", i+1, c.Name, c.Count)
	}

	fmt.Fprintf(&b, "\nUpdate completed: %s\n", now.Format(time.DateTime))
	return b.String()
}

func yearOrNA(y *int) string {
	if y == nil {
		return "N/A"
	}
	return strconv.Itoa(*y)
}
