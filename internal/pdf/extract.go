// Package pdf extracts study fields from PDF articles.
package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/echowater/hydrodb/internal/importer"
)

// ScanPages is how many leading pages are read; title, DOI and abstract
// almost always sit on the first page or two.
const ScanPages = 3

// MaxAbstractLength bounds the abstract taken from the page text.
const MaxAbstractLength = 2000

var (
	doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

	abstractHeading = regexp.MustCompile(`(?i)\babstract\b[\s:.\-]*`)

	// Headings that end an abstract.
	abstractEnd = regexp.MustCompile(`(?im)^\s*(keywords?|key words|introduction|background|1\.?\s+introduction|abbreviations)\b`)
)

// ExtractRow reads the first pages of the PDF at path and returns a row with
// the canonical Title, DOI, Abstract and URL headers. Fields that cannot be
// found are left out.
func ExtractRow(path string) (importer.Row, error) {
	text, err := ExtractText(path, ScanPages)
	if err != nil {
		return nil, err
	}
	return RowFromText(text), nil
}

// ExtractText returns the plain text of the first maxPages pages.
// maxPages <= 0 reads every page.
func ExtractText(path string, maxPages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var b strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// RowFromText builds a row from extracted page text.
func RowFromText(text string) importer.Row {
	row := importer.Row{}
	if title := findTitle(text); title != "" {
		row["Title"] = title
	}
	if doi := findDOI(text); doi != "" {
		row["DOI"] = doi
		row["URL"] = "https://doi.org/" + doi
	}
	if abstract := findAbstract(text); abstract != "" {
		row["Abstract"] = abstract
	}
	return row
}

// findTitle returns the first substantial line that is not running header text.
func findTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) > 20 && !isHeaderLine(line) && !doiPattern.MatchString(line) {
			return line
		}
	}
	return ""
}

func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}

// findAbstract returns the text between an "Abstract" heading and the next
// section heading, whitespace-collapsed and bounded.
func findAbstract(text string) string {
	loc := abstractHeading.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]
	if end := abstractEnd.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	abstract := strings.Join(strings.Fields(rest), " ")
	if len(abstract) > MaxAbstractLength {
		abstract = abstract[:MaxAbstractLength]
		if i := strings.LastIndex(abstract, " "); i > 0 {
			abstract = abstract[:i]
		}
	}
	return abstract
}

func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "copyright"), strings.Contains(lower, "©"):
		return true
	case strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	case strings.HasPrefix(lower, "http"):
		return true
	}
	return false
}
