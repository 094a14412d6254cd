package importer

import (
	"strings"
	"testing"
)

const studyPage = `<html><head><title>Site name</title></head><body>
<div class="meta"><span class="date">Published March 2022</span></div>
<h1 class="study-title">  Molecular hydrogen
  in exercise recovery </h1>
<div class="authors">Aoki K; Nakao A</div>
<div class="journal">Med Gas Res</div>
<div class="abstract">Ten athletes drank hydrogen-rich water.</div>
<a href="https://doi.org/10.4103/2045-9912.12345">full text</a>
<span class="health-topic">Exercise</span>
<span class="country">Japan</span>
</body></html>`

func TestFromHTML(t *testing.T) {
	row, err := FromHTML(strings.NewReader(studyPage), "https://example.org/study/42")
	if err != nil {
		t.Fatalf("FromHTML() error = %v", err)
	}

	want := map[string]string{
		"Title":    "Molecular hydrogen in exercise recovery",
		"Authors":  "Aoki K; Nakao A",
		"Year":     "2022",
		"Journal":  "Med Gas Res",
		"Abstract": "Ten athletes drank hydrogen-rich water.",
		"DOI":      "10.4103/2045-9912.12345",
		"URL":      "https://example.org/study/42",
		"Topic":    "Exercise",
		"Country":  "Japan",
	}
	for k, v := range want {
		if row[k] != v {
			t.Errorf("row[%q] = %q, want %q", k, row[k], v)
		}
	}
	for _, k := range []string{"Organism", "Outcome", "Designation", "Body System"} {
		if _, ok := row[k]; ok {
			t.Errorf("row[%q] should be absent, got %q", k, row[k])
		}
	}

	rec := FromRow(row, "scrape")
	if rec.FirstAuthor != "Aoki K" || rec.LastAuthor != "Nakao A" {
		t.Errorf("authors = %q/%q", rec.FirstAuthor, rec.LastAuthor)
	}
}

func TestFromHTML_Fallbacks(t *testing.T) {
	page := `<html><head><title>Page title only</title></head>
<body><p>See doi 10.1016/j.redox.2020.101234.</p></body></html>`

	row, err := FromHTML(strings.NewReader(page), "https://example.org/2018/hydrogen-study")
	if err != nil {
		t.Fatalf("FromHTML() error = %v", err)
	}
	if row["Title"] != "Page title only" {
		t.Errorf("Title = %q", row["Title"])
	}
	if row["Year"] != "2018" {
		t.Errorf("Year = %q, want year from URL", row["Year"])
	}
	if row["DOI"] != "10.1016/j.redox.2020.101234" {
		t.Errorf("DOI = %q", row["DOI"])
	}
	if _, ok := row["Journal"]; ok {
		t.Error("missing journal should stay absent")
	}
}

func TestFromHTML_NoYear(t *testing.T) {
	row, err := FromHTML(strings.NewReader(`<h1>Untimed</h1>`), "https://example.org/study/x")
	if err != nil {
		t.Fatalf("FromHTML() error = %v", err)
	}
	if _, ok := row["Year"]; ok {
		t.Errorf("Year = %q, want absent", row["Year"])
	}
}
