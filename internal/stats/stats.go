// Package stats summarizes a study corpus: year coverage, category counts,
// rankings and search suggestions.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/echowater/hydrodb/internal/study"
)

const (
	// DefaultTopLimit bounds every ranking and the recent study list.
	DefaultTopLimit = 10
	// RecentYears is how far back a study counts as recent.
	RecentYears = 2
	// MaxSuggestions bounds Suggestions.
	MaxSuggestions = 15
	// MinSuggestionQuery is the shortest query that yields suggestions.
	MinSuggestionQuery = 2
)

// YearRange describes year coverage. Earliest and Latest are nil when no
// study carries a year.
type YearRange struct {
	Earliest         *int `json:"earliest"`
	Latest           *int `json:"latest"`
	Span             int  `json:"span"`
	StudiesWithYears int  `json:"studies_with_years"`
	TotalStudies     int  `json:"total_studies"`
}

// Count is one entry of a ranking.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// YearCount is the number of studies published in one year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Statistics is the full summary of a corpus.
type Statistics struct {
	TotalStudies      int            `json:"total_studies"`
	YearRange         YearRange      `json:"year_range"`
	TopicsCount       int            `json:"topics_count"`
	CountriesCount    int            `json:"countries_count"`
	DesignationsCount int            `json:"designations_count"`
	JournalsCount     int            `json:"journals_count"`
	AuthorsCount      int            `json:"authors_count"`
	RecentStudies     []study.Record `json:"recent_studies"`
	TopTopics         []Count        `json:"top_topics"`
	TopCountries      []Count        `json:"top_countries"`
	TopJournals       []Count        `json:"top_journals"`
	TopAuthors        []Count        `json:"top_authors"`
	GrowthTrends      []YearCount    `json:"growth_trends"`
}

// Compute summarizes records. now anchors the recent study window.
func Compute(records []study.Record, now time.Time) *Statistics {
	return &Statistics{
		TotalStudies:      len(records),
		YearRange:         Years(records),
		TopicsCount:       len(Distinct(records, Topics)),
		CountriesCount:    len(Distinct(records, Countries)),
		DesignationsCount: len(Distinct(records, Designations)),
		JournalsCount:     len(Distinct(records, Journals)),
		AuthorsCount:      len(Distinct(records, Authors)),
		RecentStudies:     Recent(records, now, DefaultTopLimit),
		TopTopics:         Top(records, Topics, DefaultTopLimit),
		TopCountries:      Top(records, Countries, DefaultTopLimit),
		TopJournals:       Top(records, Journals, DefaultTopLimit),
		TopAuthors:        Top(records, Authors, DefaultTopLimit),
		GrowthTrends:      Growth(records),
	}
}

// Field extracts the values a record contributes to a category.
type Field func(r *study.Record) []string

func single(s string) []string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return []string{s}
}

// Category extractors.
var (
	Topics       Field = func(r *study.Record) []string { return single(r.Topic) }
	Countries    Field = func(r *study.Record) []string { return single(r.Country) }
	Designations Field = func(r *study.Record) []string { return single(r.Designation) }
	Journals     Field = func(r *study.Record) []string { return single(r.Journal) }
	Authors      Field = func(r *study.Record) []string { return r.AllAuthors() }
)

// Years reports year coverage.
func Years(records []study.Record) YearRange {
	yr := YearRange{TotalStudies: len(records)}
	for i := range records {
		if !records[i].HasYear() {
			continue
		}
		y := *records[i].Year
		yr.StudiesWithYears++
		if yr.Earliest == nil || y < *yr.Earliest {
			yr.Earliest = study.YearOf(y)
		}
		if yr.Latest == nil || y > *yr.Latest {
			yr.Latest = study.YearOf(y)
		}
	}
	if yr.Earliest != nil {
		yr.Span = *yr.Latest - *yr.Earliest + 1
	}
	return yr
}

// Distinct returns the sorted distinct values of a category.
func Distinct(records []study.Record, field Field) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range records {
		for _, v := range field(&records[i]) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Top ranks category values by study count, descending. Ties keep the order
// in which values first appear. limit <= 0 returns every value.
func Top(records []study.Record, field Field, limit int) []Count {
	index := make(map[string]int)
	counts := []Count{}
	for i := range records {
		for _, v := range field(&records[i]) {
			if j, ok := index[v]; ok {
				counts[j].Count++
				continue
			}
			index[v] = len(counts)
			counts = append(counts, Count{Name: v, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// Recent returns studies published in the last RecentYears years, newest
// first, at most limit of them.
func Recent(records []study.Record, now time.Time, limit int) []study.Record {
	cutoff := now.Year() - RecentYears
	recent := []study.Record{}
	for _, r := range records {
		if r.HasYear() && *r.Year >= cutoff {
			recent = append(recent, r)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return *recent[i].Year > *recent[j].Year
	})
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// Growth counts studies per year, oldest year first.
func Growth(records []study.Record) []YearCount {
	byYear := make(map[int]int)
	for i := range records {
		if records[i].HasYear() {
			byYear[*records[i].Year]++
		}
	}
	trends := make([]YearCount, 0, len(byYear))
	for y, c := range byYear {
		trends = append(trends, YearCount{Year: y, Count: c})
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Year < trends[j].Year })
	return trends
}

// Suggestions returns search completions for query: every topic, country,
// designation, journal and author containing it, case-insensitively, labelled
// by category.
func Suggestions(records []study.Record, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < MinSuggestionQuery {
		return nil
	}

	categories := []struct {
		label string
		field Field
	}{
		{"Topic", Topics},
		{"Country", Countries},
		{"Type", Designations},
		{"Journal", Journals},
		{"Author", Authors},
	}

	seen := make(map[string]bool)
	var out []string
	for _, c := range categories {
		for _, v := range Distinct(records, c.field) {
			if !strings.Contains(strings.ToLower(v), q) {
				continue
			}
			s := c.label + ": " + v
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
			if len(out) == MaxSuggestions {
				return out
			}
		}
	}
	return out
}
