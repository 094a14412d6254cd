package study

import (
	"reflect"
	"testing"
	"time"
)

func TestRecord_AllAuthors(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want []string
	}{
		{
			name: "all fields",
			rec:  Record{FirstAuthor: "Zhang Y", OtherAuthors: []string{"Li X", "Wang Q"}, LastAuthor: "Ohta S"},
			want: []string{"Zhang Y", "Li X", "Wang Q", "Ohta S"},
		},
		{
			name: "blank names dropped",
			rec:  Record{FirstAuthor: "  ", OtherAuthors: []string{"", "Li X", " "}, LastAuthor: ""},
			want: []string{"Li X"},
		},
		{
			name: "names trimmed",
			rec:  Record{FirstAuthor: " Zhang Y ", LastAuthor: "Ohta S\n"},
			want: []string{"Zhang Y", "Ohta S"},
		},
		{
			name: "no authors",
			rec:  Record{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rec.AllAuthors()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AllAuthors() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecord_Presence(t *testing.T) {
	rec := Record{Title: "  ", DOI: "10.1/x", Abstract: "\n"}
	if rec.HasTitle() {
		t.Error("HasTitle() = true for blank title")
	}
	if !rec.HasDOI() {
		t.Error("HasDOI() = false for non-blank DOI")
	}
	if rec.HasAbstract() {
		t.Error("HasAbstract() = true for blank abstract")
	}
	if rec.HasYear() {
		t.Error("HasYear() = true for nil year")
	}
	if rec.YearValue() != 0 {
		t.Errorf("YearValue() = %d, want 0", rec.YearValue())
	}

	rec.Year = YearOf(2023)
	if !rec.HasYear() || rec.YearValue() != 2023 {
		t.Errorf("Year = %v, want 2023", rec.Year)
	}
}

func TestValidYear(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		year int
		want bool
	}{
		{1799, false},
		{1800, true},
		{1995, true},
		{2027, true},
		{2028, false},
	}

	for _, tt := range tests {
		if got := ValidYear(tt.year, now); got != tt.want {
			t.Errorf("ValidYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}
