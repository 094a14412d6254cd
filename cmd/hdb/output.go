package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/echowater/hydrodb/internal/study"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search/list commands

	SummaryTitleLen   = 70 // Used in search result summaries
	ImportTitleMaxLen = 60 // Used in import and dedupe details
	DetailWrapWidth   = 60 // Wrap width for detail views
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		switch {
		case line.Len() == 0:
			line.WriteString(word)
		case line.Len()+1+len(word) <= width:
			line.WriteString(" ")
			line.WriteString(word)
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n"+indent)
}

// formatAuthorsShort lists up to limit authors, then "et al.".
func formatAuthorsShort(authors []string, limit int) string {
	if len(authors) > limit {
		return strings.Join(authors[:limit], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
}

// yearLabel renders a year for display, "n.d." when absent.
func yearLabel(rec *study.Record) string {
	if !rec.HasYear() {
		return "n.d."
	}
	return fmt.Sprintf("%d", *rec.Year)
}

func printStudySummary(num int, rec study.Record) {
	fmt.Printf("[%d] %s\n", num, rec.ID)
	fmt.Printf("    %s\n", truncateString(rec.Title, SummaryTitleLen))
	if authors := rec.AllAuthors(); len(authors) > 0 {
		fmt.Printf("    %s\n", formatAuthorsShort(authors, 3))
	}
	if rec.Journal != "" {
		fmt.Printf("    %s (%s)\n", rec.Journal, yearLabel(&rec))
	} else {
		fmt.Printf("    (%s)\n", yearLabel(&rec))
	}
	fmt.Println()
}

func printStudyDetail(rec study.Record) {
	fmt.Println(rec.ID)
	fmt.Println(strings.Repeat("═", 70))
	fmt.Println()

	indent := strings.Repeat(" ", 14)
	field := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fmt.Printf("%-14s%s\n", label+":", wrapText(value, DetailWrapWidth, indent))
	}

	field("Title", rec.Title)
	field("Authors", strings.Join(rec.AllAuthors(), "; "))
	field("Year", yearLabel(&rec))
	field("Journal", rec.Journal)
	field("DOI", rec.DOI)
	field("URL", rec.URL)
	field("Topic", rec.Topic)
	field("Secondary", rec.SecondaryTopic)
	field("Tertiary", rec.TertiaryTopic)
	field("Organism", rec.Organism)
	field("Body system", rec.BodySystem)
	field("Country", rec.Country)
	field("Outcome", rec.Outcome)
	field("Designation", rec.Designation)
	field("Source", rec.Source)

	if rec.HasAbstract() {
		fmt.Println()
		fmt.Println("Abstract:")
		fmt.Printf("  %s\n", wrapText(rec.Abstract, DetailWrapWidth+8, "  "))
	}
}
