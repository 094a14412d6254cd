package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/echowater/hydrodb/internal/study"
)

func sampleStudies() []study.Record {
	return []study.Record{
		{
			ID:           "primary_1",
			Source:       "primary",
			Title:        "Hydrogen & exercise: 50% less fatigue",
			FirstAuthor:  "Ohta S",
			OtherAuthors: []string{"Ito M"},
			Year:         study.YearOf(2021),
			Journal:      "Med Gas Res",
			DOI:          "10.4103/2045-9912.1",
			Topic:        "Exercise",
			Country:      "Japan",
			BodySystem:   "Muscular",
		},
		{
			ID:    "web_2",
			Title: "Hydrogen inhalation after stroke",
		},
	}
}

func TestToBibTeX(t *testing.T) {
	got := ToBibTeX(sampleStudies()[0])
	want := `@article{primary_1,
  author = {Ohta S and Ito M},
  title = {Hydrogen \& exercise: 50\% less fatigue},
  journal = {Med Gas Res},
  year = {2021},
  doi = {10.4103/2045-9912.1},
  keywords = {Exercise},
}
`
	if got != want {
		t.Errorf("ToBibTeX() =\n%s\nwant\n%s", got, want)
	}
}

func TestToBibTeXMinimal(t *testing.T) {
	got := ToBibTeX(sampleStudies()[1])
	want := "@misc{web_2,\n  title = {Hydrogen inhalation after stroke},\n}\n"
	if got != want {
		t.Errorf("ToBibTeX() = %q, want %q", got, want)
	}
}

func TestDetermineEntryType(t *testing.T) {
	tests := []struct {
		journal string
		want    string
	}{
		{"Scientific Reports", "article"},
		{"Proceedings of the Hydrogen Symposium", "inproceedings"},
		{"", "misc"},
	}
	for _, tt := range tests {
		if got := determineEntryType(study.Record{Journal: tt.journal}); got != tt.want {
			t.Errorf("determineEntryType(%q) = %q, want %q", tt.journal, got, tt.want)
		}
	}
}

func TestToBibTeXList(t *testing.T) {
	got := ToBibTeXList(sampleStudies())
	if strings.Count(got, "@") != 2 || !strings.Contains(got, "}\n\n@misc{web_2") {
		t.Errorf("ToBibTeXList() = %q", got)
	}
}

func TestCiteKey(t *testing.T) {
	if got := citeKey("my study/1"); got != "my_study_1" {
		t.Errorf("citeKey() = %q", got)
	}
	if got := citeKey(""); got != "study" {
		t.Errorf("citeKey(\"\") = %q", got)
	}
}

func TestToCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ToCSV(&buf, sampleStudies()); err != nil {
		t.Fatalf("ToCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(CSVHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	first := rows[1]
	if first[0] != "Hydrogen & exercise: 50% less fatigue" || first[1] != "Ohta S; Ito M" || first[2] != "2021" || first[9] != "Muscular" {
		t.Errorf("row = %v", first)
	}
	if rows[2][2] != "" {
		t.Errorf("missing year = %q, want empty", rows[2][2])
	}
}

func TestToParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studies.parquet")
	if err := ToParquet(path, sampleStudies()); err != nil {
		t.Fatalf("ToParquet() error = %v", err)
	}

	rows, err := parquet.ReadFile[ParquetRow](path)
	if err != nil {
		t.Fatalf("reading parquet back: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].ID != "primary_1" || rows[0].Authors != "Ohta S; Ito M" || rows[0].Year == nil || *rows[0].Year != 2021 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Year != nil {
		t.Errorf("row 1 year = %v, want nil", *rows[1].Year)
	}
}

func TestToJSON(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	if err := ToJSON(&buf, sampleStudies(), now); err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var env struct {
		Studies    []study.Record `json:"studies"`
		Statistics struct {
			TotalStudies int `json:"total_studies"`
		} `json:"statistics"`
		Metadata Metadata `json:"metadata"`
	}
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(env.Studies) != 2 || env.Statistics.TotalStudies != 2 {
		t.Errorf("studies = %d, total = %d", len(env.Studies), env.Statistics.TotalStudies)
	}
	want := Metadata{ExportDate: "2026-05-01T09:30:00Z", TotalStudies: 2, Version: FormatVersion}
	if env.Metadata != want {
		t.Errorf("metadata = %+v, want %+v", env.Metadata, want)
	}
}

func TestToJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := ToJSON(&buf, nil, time.Now()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"studies": []`) {
		t.Errorf("empty export should have an empty studies array: %s", buf.String())
	}
}
