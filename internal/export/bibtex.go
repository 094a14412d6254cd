// Package export writes studies out as CSV, BibTeX, Parquet and JSON.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/echowater/hydrodb/internal/study"
)

var citeKeyUnsafe = regexp.MustCompile(`[^A-Za-z0-9_:\-]+`)

// ToBibTeX converts a study to a BibTeX entry keyed by its ID.
func ToBibTeX(rec study.Record) string {
	entryType := determineEntryType(rec)
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType, citeKey(rec.ID))

	if authors := rec.AllAuthors(); len(authors) > 0 {
		escaped := make([]string, len(authors))
		for i, a := range authors {
			escaped[i] = escapeLatex(a)
		}
		fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(escaped, " and "))
	}

	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(rec.Title))

	if rec.HasJournal() {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", fieldName, escapeLatex(rec.Journal))
	}

	if rec.HasYear() {
		fmt.Fprintf(&b, "  year = {%d},\n", *rec.Year)
	}

	if rec.HasDOI() {
		fmt.Fprintf(&b, "  doi = {%s},\n", strings.TrimSpace(rec.DOI))
	}

	if rec.URL != "" {
		fmt.Fprintf(&b, "  url = {%s},\n", rec.URL)
	}

	if rec.HasAbstract() {
		fmt.Fprintf(&b, "  abstract = {%s},\n", escapeLatex(rec.Abstract))
	}

	if rec.Topic != "" {
		fmt.Fprintf(&b, "  keywords = {%s},\n", escapeLatex(rec.Topic))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple studies to BibTeX, one blank line between entries.
func ToBibTeXList(recs []study.Record) string {
	entries := make([]string, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, ToBibTeX(rec))
	}
	return strings.Join(entries, "\n")
}

func determineEntryType(rec study.Record) string {
	venue := strings.ToLower(rec.Journal)

	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}
	if venue == "" {
		return "misc"
	}
	return "article"
}

func citeKey(id string) string {
	key := citeKeyUnsafe.ReplaceAllString(id, "_")
	if key == "" {
		return "study"
	}
	return key
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\textbackslash{}`,
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
