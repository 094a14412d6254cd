package importer

import (
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/echowater/hydrodb/internal/logger"
)

var testNow = time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)

func TestParseYear(t *testing.T) {
	tests := []struct {
		raw    string
		want   int // 0 means nil
		wantOK bool
	}{
		{"2023", 2023, true},
		{"  1999 ", 1999, true},
		{"Published in 1995 (revised)", 1995, true},
		{"2019-05-04", 2019, true},
		{"not a year", 0, false},
		{"1750", 0, false},
		{"2027", 2027, true},
		{"2028", 0, false},
		{"", 0, true},
		{"   ", 0, true},
		{"1800", 1800, true},
		{"in 1750 and 2001", 2001, true},
		{"2020abc", 2020, true},
		{"2019a", 2019, true},
		{"+2021", 2021, true},
		{"12 May 2020", 0, false},
		{"1750 (reprinted 1995)", 0, false},
		{"99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseYear(tt.raw, testNow)
			if ok != tt.wantOK {
				t.Errorf("ParseYear(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			switch {
			case tt.want == 0 && got != nil:
				t.Errorf("ParseYear(%q) = %d, want nil", tt.raw, *got)
			case tt.want != 0 && (got == nil || *got != tt.want):
				t.Errorf("ParseYear(%q) = %v, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseAuthors(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"Smith J", []string{"Smith J"}},
		{"Smith J; Doe A, Lee K\nPark S", []string{"Smith J", "Doe A", "Lee K", "Park S"}},
		{" ; ,, Smith J ;", []string{"Smith J"}},
	}

	for _, tt := range tests {
		got := ParseAuthors(tt.raw)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseAuthors(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFromRow_Aliases(t *testing.T) {
	row := Row{
		"Title":         "  Hydrogen water improves acne vulgaris ",
		"title":         "ignored",
		"Publish Year":  "2023",
		"Year":          "1999",
		"Journal":       "J Dermatol",
		"DOI/PMID/Link": "10.1000/xyz",
		"Primary Topic": "Skin",
		"Rank":          "Clinical",
		"Model":         "Human",
		"BodySystem":    "Integumentary",
		"country":       "Japan",
		"Outcome":       "Positive",
		"First Author":  "Zhang Y",
		"Other Authors": "Li X; Wang Z",
		"Last Author":   "Chen Q",
		"url":           "https://example.org/study/1",
	}

	got := FromRow(row, "primary")

	if got.Title != "Hydrogen water improves acne vulgaris" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Year == nil || *got.Year != 2023 {
		t.Errorf("Year = %v, want 2023", got.Year)
	}
	if got.DOI != "10.1000/xyz" || got.Journal != "J Dermatol" {
		t.Errorf("DOI/Journal = %q/%q", got.DOI, got.Journal)
	}
	if got.Topic != "Skin" || got.Designation != "Clinical" || got.Organism != "Human" {
		t.Errorf("Topic/Designation/Organism = %q/%q/%q", got.Topic, got.Designation, got.Organism)
	}
	if got.BodySystem != "Integumentary" || got.Country != "Japan" || got.Outcome != "Positive" {
		t.Errorf("BodySystem/Country/Outcome = %q/%q/%q", got.BodySystem, got.Country, got.Outcome)
	}
	if got.URL != "https://example.org/study/1" || got.Source != "primary" {
		t.Errorf("URL/Source = %q/%q", got.URL, got.Source)
	}
	want := []string{"Zhang Y", "Li X", "Wang Z", "Chen Q"}
	if !reflect.DeepEqual(got.AllAuthors(), want) {
		t.Errorf("AllAuthors() = %q, want %q", got.AllAuthors(), want)
	}
}

func TestFromRow_FirstPresentAliasWinsEvenWhenBlank(t *testing.T) {
	got := FromRow(Row{"Title": "  ", "title": "Fallback title"}, "s")
	if got.Title != "" {
		t.Errorf("Title = %q, want empty", got.Title)
	}
}

func TestFromRow_EmptyRow(t *testing.T) {
	got := FromRow(Row{}, "s")
	if got.Title != "" || got.Year != nil || len(got.AllAuthors()) != 0 {
		t.Errorf("FromRow(empty) = %+v, want blank record", got)
	}
}

func TestFromRow_AuthorsColumn(t *testing.T) {
	tests := []struct {
		authors    string
		wantFirst  string
		wantOthers []string
		wantLast   string
	}{
		{"Smith J", "Smith J", nil, ""},
		{"Smith J; Doe A", "Smith J", nil, "Doe A"},
		{"Smith J, Doe A, Lee K, Park S", "Smith J", []string{"Doe A", "Lee K"}, "Park S"},
	}

	for _, tt := range tests {
		t.Run(tt.authors, func(t *testing.T) {
			got := FromRow(Row{"Title": "A study title", "Authors": tt.authors}, "s")
			if got.FirstAuthor != tt.wantFirst || got.LastAuthor != tt.wantLast {
				t.Errorf("first/last = %q/%q, want %q/%q", got.FirstAuthor, got.LastAuthor, tt.wantFirst, tt.wantLast)
			}
			if !reflect.DeepEqual(got.OtherAuthors, tt.wantOthers) {
				t.Errorf("OtherAuthors = %q, want %q", got.OtherAuthors, tt.wantOthers)
			}
		})
	}
}

func TestFromRow_AuthorsColumnIgnoredWithSplitColumns(t *testing.T) {
	got := FromRow(Row{"First Author": "", "Authors": "Smith J; Doe A"}, "s")
	if got.FirstAuthor != "" || got.LastAuthor != "" {
		t.Errorf("first/last = %q/%q, want empty", got.FirstAuthor, got.LastAuthor)
	}
}

func TestNormalizer_LogsInvalidYear(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	n := NewNormalizer(logger.FromZap(zap.New(core)))
	n.Now = func() time.Time { return testNow }

	rec := n.FromRow(Row{"Title": "A study title", "Year": "1750"}, "primary")

	if rec.Year != nil {
		t.Errorf("Year = %d, want nil", *rec.Year)
	}
	if logs.Len() != 1 {
		t.Fatalf("got %d warnings, want 1", logs.Len())
	}
	if raw := logs.All()[0].ContextMap()["raw"]; raw != "1750" {
		t.Errorf("logged raw = %v, want 1750", raw)
	}

	n.FromRow(Row{"Title": "A study title"}, "primary")
	if logs.Len() != 1 {
		t.Errorf("missing year should not be logged, got %d warnings", logs.Len())
	}
}
