package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/echowater/hydrodb/internal/study"
)

var testNow = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func corpus() []study.Record {
	return []study.Record{
		{ID: "a", Title: "Hydrogen and fatigue", Year: study.YearOf(2025), Topic: "Exercise", Country: "Japan", Journal: "Med Gas Res", FirstAuthor: "Ohta S", Designation: "Human"},
		{ID: "b", Title: "Hydrogen and stroke", Year: study.YearOf(2019), Topic: "Neurology", Country: "China", Journal: "Med Gas Res", FirstAuthor: "Ohta S", LastAuthor: "Ito M"},
		{ID: "c", Title: "Hydrogen inhalation", Year: study.YearOf(2024), Topic: "Exercise", Country: "Japan", Journal: "Sci Rep", OtherAuthors: []string{"Li X"}},
		{ID: "d", Title: "Hydrogen review", Topic: " ", Country: "USA", Designation: "Review"},
	}
}

func TestCompute(t *testing.T) {
	s := Compute(corpus(), testNow)

	if s.TotalStudies != 4 {
		t.Errorf("TotalStudies = %d, want 4", s.TotalStudies)
	}
	if s.TopicsCount != 2 || s.CountriesCount != 3 || s.JournalsCount != 2 || s.DesignationsCount != 2 || s.AuthorsCount != 3 {
		t.Errorf("counts = topics %d countries %d journals %d designations %d authors %d",
			s.TopicsCount, s.CountriesCount, s.JournalsCount, s.DesignationsCount, s.AuthorsCount)
	}

	yr := s.YearRange
	if *yr.Earliest != 2019 || *yr.Latest != 2025 || yr.Span != 7 || yr.StudiesWithYears != 3 || yr.TotalStudies != 4 {
		t.Errorf("YearRange = %+v", yr)
	}

	wantTopics := []Count{{"Exercise", 2}, {"Neurology", 1}}
	if !reflect.DeepEqual(s.TopTopics, wantTopics) {
		t.Errorf("TopTopics = %v, want %v", s.TopTopics, wantTopics)
	}

	wantGrowth := []YearCount{{2019, 1}, {2024, 1}, {2025, 1}}
	if !reflect.DeepEqual(s.GrowthTrends, wantGrowth) {
		t.Errorf("GrowthTrends = %v, want %v", s.GrowthTrends, wantGrowth)
	}

	if len(s.RecentStudies) != 2 || s.RecentStudies[0].ID != "a" || s.RecentStudies[1].ID != "c" {
		t.Errorf("RecentStudies = %v", s.RecentStudies)
	}
}

func TestYearsWithoutYears(t *testing.T) {
	yr := Years([]study.Record{{ID: "x"}})
	if yr.Earliest != nil || yr.Latest != nil || yr.Span != 0 || yr.TotalStudies != 1 {
		t.Errorf("Years() = %+v", yr)
	}
}

func TestTopTiesKeepFirstAppearance(t *testing.T) {
	recs := []study.Record{
		{Country: "Korea"}, {Country: "Japan"}, {Country: "China"}, {Country: "Japan"}, {Country: "Korea"},
	}
	got := Top(recs, Countries, 0)
	want := []Count{{"Korea", 2}, {"Japan", 2}, {"China", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Top() = %v, want %v", got, want)
	}
	if got := Top(recs, Countries, 1); len(got) != 1 || got[0].Name != "Korea" {
		t.Errorf("Top(limit 1) = %v", got)
	}
}

func TestSuggestions(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"too short", "j", nil},
		{"blank", "   ", nil},
		{"country", "JAP", []string{"Country: Japan"}},
		{"journal and topic", "e", []string{
			"Topic: Exercise", "Topic: Neurology",
			"Type: Review",
			"Journal: Med Gas Res", "Journal: Sci Rep",
		}},
		{"author", "ohta", []string{"Author: Ohta S"}},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggestions(corpus(), tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Suggestions(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSuggestionsLimit(t *testing.T) {
	var recs []study.Record
	for i := 0; i < 20; i++ {
		recs = append(recs, study.Record{Topic: "Hydrogen topic " + string(rune('a'+i))})
	}
	if got := Suggestions(recs, "hydrogen"); len(got) != MaxSuggestions {
		t.Errorf("len = %d, want %d", len(got), MaxSuggestions)
	}
}
