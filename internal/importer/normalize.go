// Package importer turns raw study rows from CSV exports, JSON dumps and
// scraped HTML pages into canonical study records.
package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/echowater/hydrodb/internal/logger"
	"github.com/echowater/hydrodb/internal/study"
)

// Row is one raw input row keyed by column header.
type Row map[string]string

// Header aliases per field, tried in order. The first header present in the
// row wins even when its value is blank.
var (
	titleFields          = []string{"Title", "title"}
	yearFields           = []string{"Publish Year", "Year", "year"}
	journalFields        = []string{"Journal", "journal"}
	doiFields            = []string{"DOI/PMID/Link", "DOI", "doi", "Link"}
	abstractFields       = []string{"Abstract", "abstract"}
	urlFields            = []string{"URL", "Url", "url"}
	designationFields    = []string{"Designation", "designation", "Rank", "rank"}
	topicFields          = []string{"Primary Topic", "Topic", "topic", "PrimaryTopic"}
	secondaryTopicFields = []string{"Secondary Topic", "SecondaryTopic"}
	tertiaryTopicFields  = []string{"Tertiary Topic", "TertiaryTopic"}
	organismFields       = []string{"Organism", "organism", "Model", "model"}
	bodySystemFields     = []string{"Body System", "BodySystem", "bodySystem"}
	countryFields        = []string{"Country", "country"}
	outcomeFields        = []string{"Outcome", "outcome"}
	firstAuthorFields    = []string{"First Author", "FirstAuthor", "firstAuthor"}
	otherAuthorsFields   = []string{"Other Authors", "OtherAuthors", "otherAuthors"}
	lastAuthorFields     = []string{"Last Author", "LastAuthor", "lastAuthor"}
	authorsFields        = []string{"Authors", "authors", "Author", "author"}
)

var (
	yearTokenPattern   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	leadingIntPattern  = regexp.MustCompile(`^[+-]?\d+`)
	authorSplitPattern = regexp.MustCompile(`[;,\n]`)
)

// Normalizer converts rows to records. Invalid years are reported to Log.
type Normalizer struct {
	Log *logger.Logger
	Now func() time.Time
}

// NewNormalizer creates a normalizer that logs to log (nil discards).
func NewNormalizer(log *logger.Logger) *Normalizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Normalizer{Log: log, Now: time.Now}
}

// FromRow normalizes a row with a discarding logger and the current clock.
func FromRow(row Row, source string) study.Record {
	return NewNormalizer(nil).FromRow(row, source)
}

// FromRow builds a record from row. It always returns a record, even when
// the title is blank; rejecting such records is left to the caller.
// The record ID is not set.
func (n *Normalizer) FromRow(row Row, source string) study.Record {
	rec := study.Record{
		Source:         source,
		Title:          field(row, titleFields),
		Journal:        field(row, journalFields),
		DOI:            field(row, doiFields),
		Abstract:       field(row, abstractFields),
		URL:            field(row, urlFields),
		Designation:    field(row, designationFields),
		Topic:          field(row, topicFields),
		SecondaryTopic: field(row, secondaryTopicFields),
		TertiaryTopic:  field(row, tertiaryTopicFields),
		Organism:       field(row, organismFields),
		BodySystem:     field(row, bodySystemFields),
		Country:        field(row, countryFields),
		Outcome:        field(row, outcomeFields),
		FirstAuthor:    field(row, firstAuthorFields),
		OtherAuthors:   ParseAuthors(field(row, otherAuthorsFields)),
		LastAuthor:     field(row, lastAuthorFields),
	}

	rawYear := field(row, yearFields)
	year, ok := ParseYear(rawYear, n.Now())
	if !ok {
		n.Log.Warn("invalid year", "source", source, "title", rec.Title, "raw", rawYear)
	}
	rec.Year = year

	if !hasAny(row, firstAuthorFields, otherAuthorsFields, lastAuthorFields) {
		rec.FirstAuthor, rec.OtherAuthors, rec.LastAuthor = splitAuthors(ParseAuthors(field(row, authorsFields)))
	}

	return rec
}

// ParseYear parses a publication year. A value that starts with an integer
// is read by its leading digits ("2019a" and "2019-05-04" give 2019, "12 May
// 2020" gives 12); otherwise the first 19xx or 20xx token is used. The result
// must lie within the valid study year range for now.
//
// Blank input yields (nil, true). Non-blank input that yields no valid year
// returns (nil, false) so callers can report it.
func ParseYear(raw string, now time.Time) (*int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}

	digits := leadingIntPattern.FindString(raw)
	if digits == "" {
		digits = yearTokenPattern.FindString(raw)
	}
	if digits == "" {
		return nil, false
	}

	year, err := strconv.Atoi(digits)
	if err != nil || !study.ValidYear(year, now) {
		return nil, false
	}
	return study.YearOf(year), true
}

// ParseAuthors splits an author list on semicolons, commas and newlines,
// dropping blank names and keeping order.
func ParseAuthors(raw string) []string {
	if raw == "" {
		return nil
	}
	var authors []string
	for _, part := range authorSplitPattern.Split(raw, -1) {
		if part = strings.TrimSpace(part); part != "" {
			authors = append(authors, part)
		}
	}
	return authors
}

func splitAuthors(authors []string) (first string, others []string, last string) {
	switch len(authors) {
	case 0:
		return "", nil, ""
	case 1:
		return authors[0], nil, ""
	}
	first, last = authors[0], authors[len(authors)-1]
	if len(authors) > 2 {
		others = append([]string(nil), authors[1:len(authors)-1]...)
	}
	return first, others, last
}

func field(row Row, names []string) string {
	for _, name := range names {
		if v, ok := row[name]; ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func hasAny(row Row, groups ...[]string) bool {
	for _, names := range groups {
		for _, name := range names {
			if _, ok := row[name]; ok {
				return true
			}
		}
	}
	return false
}
