package ingest

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/echowater/hydrodb/internal/config"
	"github.com/echowater/hydrodb/internal/storage"
	"github.com/echowater/hydrodb/internal/study"
)

const primaryCSV = `Title,Publish Year,Journal,DOI,First Author,Primary Topic,Country
"Hydrogen water improves fatigue in athletes",2021,Med Gas Res,10.1/abc,Ohta S,Exercise,Japan
Molecular hydrogen in ischemic stroke,2019,Stroke,,Ito M,Neurology,China
Short,2020,,,,,
`

const secondaryCSV = `Title,Year,Journal,DOI,First Author,Topic,Country
Completely different title on H2 baths,2022,J Foo,https://doi.org/10.1/ABC,X,Skin,Japan
Hydrogen-rich saline in sepsis models,2020,Shock,,Li X,Sepsis,China
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func mergeFixture(t *testing.T) (*MergeResult, error) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "primary.csv", primaryCSV)
	writeFile(t, dir, "secondary.csv", secondaryCSV)

	m := &Merger{
		Loader:           NewLoader(dir, nil),
		MinTitleLength:   config.DefaultMinTitleLength,
		IncludePotential: true,
		Workers:          2,
	}
	return m.Merge(context.Background(), nil, []config.Source{
		{Name: "primary", Path: "primary.csv"},
		{Name: "secondary", Path: "secondary.csv"},
		{Name: "missing", Path: "missing.csv"},
	})
}

func TestMerge(t *testing.T) {
	res, err := mergeFixture(t)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	var ids []string
	for _, r := range res.Records {
		ids = append(ids, r.ID)
	}
	wantIDs := []string{"primary_1", "primary_2", "secondary_2"}
	if !reflect.DeepEqual(ids, wantIDs) {
		t.Errorf("IDs = %v, want %v", ids, wantIDs)
	}

	if len(res.Sources) != 3 {
		t.Fatalf("Sources = %d, want 3", len(res.Sources))
	}
	p, s, m := res.Sources[0], res.Sources[1], res.Sources[2]
	if p.Rows != 3 || p.Accepted != 2 || p.Rejected != 1 || p.Added != 2 || p.Duplicates != 0 {
		t.Errorf("primary = %+v", p)
	}
	if s.Rows != 2 || s.Accepted != 2 || s.Duplicates != 1 || s.Added != 1 {
		t.Errorf("secondary = %+v", s)
	}
	if m.OK() || m.Error == "" {
		t.Errorf("missing source should have failed: %+v", m)
	}
}

func TestMergeReport(t *testing.T) {
	res, err := mergeFixture(t)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	got := MergeReport(res, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	want := `=== HYDROGEN STUDIES DATABASE - COMPREHENSIVE UPDATE REPORT ===

DATABASE SUMMARY:
- Total studies in database: 3
- Data sources processed: 3

SOURCE BREAKDOWN:
- PRIMARY: 2 studies loaded
- SECONDARY: 2 studies loaded (1 duplicates removed)
- MISSING: FAILED TO LOAD

STATISTICS:
- Year range: 2019 to 2021
- Unique topics: 3
- Unique countries: 2
- Unique journals: 3
- Unique authors: 3

TOP TOPICS:
1. Exercise: 1 studies
2. Neurology: 1 studies
3. Sepsis: 1 studies

TOP COUNTRIES:
1. China: 2 studies
2. Japan: 1 studies

Update completed: 2026-05-01 12:00:00
`
	if got != want {
		t.Errorf("MergeReport() =\n%s\nwant\n%s", got, want)
	}
}

func TestMergeIntoExistingCorpus(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "primary.csv", primaryCSV)

	existing := []study.Record{{ID: "primary_1", Title: "Hydrogen water improves fatigue in athletes", DOI: "10.1/ABC"}}
	m := &Merger{Loader: NewLoader(dir, nil), MinTitleLength: 10}
	res, err := m.Merge(context.Background(), existing, []config.Source{{Name: "primary", Path: "primary.csv"}})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if got := res.Sources[0]; got.Duplicates != 1 || got.Added != 1 {
		t.Errorf("source = %+v", got)
	}
	if len(res.Records) != 2 || res.Records[1].ID != "primary_2" {
		t.Errorf("Records = %+v", res.Records)
	}
}

func TestMergeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &Merger{Loader: NewLoader(t.TempDir(), nil)}
	if _, err := m.Merge(ctx, nil, []config.Source{{Name: "a", Path: "a.csv"}}); err == nil {
		t.Error("Merge() with cancelled context: want error")
	}
}

func TestFilter(t *testing.T) {
	recs := []study.Record{
		{ID: "1", Title: "Hydrogen therapy"},
		{ID: "2", Title: "   "},
		{ID: "3", Title: "Ten chars!"},
		{ID: "4", Title: "  Eleven chars  "},
	}
	accepted, rejected := Filter(recs, 10)
	if len(accepted) != 2 || accepted[0].ID != "1" || accepted[1].ID != "4" {
		t.Errorf("accepted = %+v", accepted)
	}
	if len(rejected) != 2 {
		t.Errorf("rejected = %+v", rejected)
	}
}

func TestAbsorbRenamesTakenIDs(t *testing.T) {
	corpus := []study.Record{{ID: "web_1"}}
	got := Absorb(corpus, []study.Record{{ID: "web_1"}, {ID: "web_1"}, {ID: "web_2"}})
	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	want := []string{"web_1", "web_1-2", "web_1-3", "web_2"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("IDs = %v, want %v", ids, want)
	}
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "studies.json", `[
		{"title": "Hydrogen gas and sepsis", "year": 2018, "otherAuthors": ["A", "B"]},
		{"title": {"nested": true}},
		{"Title": "Hydrogen and liver injury", "Year": "2017"}
	]`)

	if err := os.Mkdir(filepath.Join(dir, "pages"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "pages"), "b.html", `<h1>Hydrogen and kidney disease</h1>`)
	writeFile(t, filepath.Join(dir, "pages"), "a.htm", `<h1>Hydrogen and skin aging</h1>`)
	writeFile(t, filepath.Join(dir, "pages"), "notes.txt", `ignored`)

	jsonlPath := filepath.Join(dir, "other.jsonl")
	if err := storage.WriteAll(jsonlPath, []study.Record{{ID: "keep_me", Title: "Stored study"}}); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(dir, nil)

	tests := []struct {
		name   string
		src    config.Source
		ids    []string
		titles []string
	}{
		{
			name:   "json",
			src:    config.Source{Name: "dump", Path: "studies.json"},
			ids:    []string{"dump_1", "dump_2"},
			titles: []string{"Hydrogen gas and sepsis", "Hydrogen and liver injury"},
		},
		{
			name:   "html directory",
			src:    config.Source{Name: "web", Path: "pages", Format: "html"},
			ids:    []string{"web_1", "web_2"},
			titles: []string{"Hydrogen and skin aging", "Hydrogen and kidney disease"},
		},
		{
			name:   "jsonl",
			src:    config.Source{Name: "other", Path: jsonlPath},
			ids:    []string{"keep_me"},
			titles: []string{"Stored study"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := l.Load(tt.src)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			var ids, titles []string
			for _, r := range recs {
				ids = append(ids, r.ID)
				titles = append(titles, r.Title)
				if r.Source != tt.src.Name {
					t.Errorf("Source = %q, want %q", r.Source, tt.src.Name)
				}
			}
			if !reflect.DeepEqual(ids, tt.ids) {
				t.Errorf("IDs = %v, want %v", ids, tt.ids)
			}
			if !reflect.DeepEqual(titles, tt.titles) {
				t.Errorf("titles = %v, want %v", titles, tt.titles)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader(t.TempDir(), nil)
	for _, src := range []config.Source{
		{Name: "", Path: "a.csv"},
		{Name: "x", Path: "a.xls"},
		{Name: "x", Path: "missing.csv"},
		{Name: "x", Path: "missing.pdf"},
	} {
		if _, err := l.Load(src); err == nil {
			t.Errorf("Load(%+v): want error", src)
		}
	}
}
