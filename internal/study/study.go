// Package study defines the canonical study record shared by every stage of
// the ingestion and duplicate-detection pipeline.
package study

import (
	"strings"
	"time"
)

// Year bounds for a publication year to be considered valid.
const (
	MinYear = 1800
)

// Record represents a single research study entry.
//
// Records are built once by the importer and treated as read-only afterwards.
// Text fields use the empty string for "absent"; Year uses nil.
type Record struct {
	// Identity
	ID     string `json:"id"`     // <source>_<row>, assigned at ingestion
	Source string `json:"source"` // Provenance tag (primary, engineering, scrape, ...)

	// Bibliographic metadata
	Title    string `json:"title"`
	Journal  string `json:"journal,omitempty"`
	DOI      string `json:"doi,omitempty"` // DOI, PMID or link as provided by the source
	Abstract string `json:"abstract,omitempty"`
	URL      string `json:"url,omitempty"`
	Year     *int   `json:"year,omitempty"`

	// Authors
	FirstAuthor  string   `json:"first_author,omitempty"`
	OtherAuthors []string `json:"other_authors,omitempty"`
	LastAuthor   string   `json:"last_author,omitempty"`

	// Classification
	Topic          string `json:"topic,omitempty"`
	SecondaryTopic string `json:"secondary_topic,omitempty"`
	TertiaryTopic  string `json:"tertiary_topic,omitempty"`
	Organism       string `json:"organism,omitempty"`
	BodySystem     string `json:"body_system,omitempty"`
	Country        string `json:"country,omitempty"`
	Outcome        string `json:"outcome,omitempty"`
	Designation    string `json:"designation,omitempty"`
}

// AllAuthors returns the first author, other authors and last author in that
// order, dropping blank names. It is always derived from the author fields.
func (r *Record) AllAuthors() []string {
	names := make([]string, 0, len(r.OtherAuthors)+2)
	add := func(name string) {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	add(r.FirstAuthor)
	for _, a := range r.OtherAuthors {
		add(a)
	}
	add(r.LastAuthor)
	return names
}

// HasTitle reports whether the record carries a non-blank title.
func (r *Record) HasTitle() bool { return !isBlank(r.Title) }

// HasDOI reports whether the record carries a non-blank DOI.
func (r *Record) HasDOI() bool { return !isBlank(r.DOI) }

// HasAbstract reports whether the record carries a non-blank abstract.
func (r *Record) HasAbstract() bool { return !isBlank(r.Abstract) }

// HasFirstAuthor reports whether the record carries a non-blank first author.
func (r *Record) HasFirstAuthor() bool { return !isBlank(r.FirstAuthor) }

// HasJournal reports whether the record carries a non-blank journal.
func (r *Record) HasJournal() bool { return !isBlank(r.Journal) }

// HasYear reports whether the record carries a publication year.
func (r *Record) HasYear() bool { return r.Year != nil }

// YearValue returns the publication year, or 0 when absent.
// Only use it for display; use HasYear to test presence.
func (r *Record) YearValue() int {
	if r.Year == nil {
		return 0
	}
	return *r.Year
}

// YearOf returns a pointer to y, for building records in code and tests.
func YearOf(y int) *int {
	return &y
}

// MaxYear returns the latest accepted publication year relative to now.
func MaxYear(now time.Time) int {
	return now.Year() + 1
}

// ValidYear reports whether y lies in [MinYear, MaxYear(now)].
func ValidYear(y int, now time.Time) bool {
	return y >= MinYear && y <= MaxYear(now)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
