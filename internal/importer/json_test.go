package importer

import (
	"encoding/json"
	"testing"
)

func TestFlexibleString_String(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string year", `"2026"`, "2026"},
		{"number year", `2026`, "2026"},
		{"null value", `null`, ""},
		{"float number", `2026.0`, "2026.0"},
		{"bool", `true`, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleString
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("UnmarshalJSON() error = %v", err)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlexibleString_InvalidInput(t *testing.T) {
	for _, input := range []string{`[1,2,3]`, `{"key": "value"}`} {
		var f FlexibleString
		if err := json.Unmarshal([]byte(input), &f); err == nil {
			t.Errorf("UnmarshalJSON() expected error for input %s", input)
		}
	}
}

func TestReadJSON(t *testing.T) {
	data := []byte(`[
		{"title": "Hydrogen water and sleep quality", "year": 2021, "doi": null,
		 "firstAuthor": "Kim H", "otherAuthors": ["Lee J", "Park S"], "lastAuthor": "Cho M"},
		{"title": "Broken entry", "meta": {"nested": true}},
		{"Title": "Second valid study title", "Year": "2019"}
	]`)

	rows, errs := ReadJSON(data)
	if len(errs) != 1 {
		t.Errorf("got %d errors, want 1: %v", len(errs), errs)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	if _, ok := rows[0]["doi"]; ok {
		t.Error("null field should be absent")
	}
	if got := rows[0]["otherAuthors"]; got != "Lee J; Park S" {
		t.Errorf("otherAuthors = %q", got)
	}

	rec := FromRow(rows[0], "json")
	if rec.Year == nil || *rec.Year != 2021 {
		t.Errorf("Year = %v, want 2021", rec.Year)
	}
	if got := rec.AllAuthors(); len(got) != 4 {
		t.Errorf("AllAuthors() = %q, want 4 names", got)
	}
}

func TestReadJSON_Invalid(t *testing.T) {
	rows, errs := ReadJSON([]byte(`{"not": "an array"}`))
	if rows != nil || len(errs) != 1 {
		t.Errorf("ReadJSON(object) = %v, %v; want nil rows and one error", rows, errs)
	}
}
