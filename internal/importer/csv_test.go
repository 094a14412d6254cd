package importer

import (
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffTitle,Publish Year, Journal \n" +
		"\"  Hydrogen   water and  sleep \",2021,Sleep Med\n" +
		",,\n" +
		"Short row only\n" +
		"\"Quoted \"\"inner\"\" title\",2020,J\n"

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	if got := rows[0]["Title"]; got != "Hydrogen water and sleep" {
		t.Errorf("rows[0] Title = %q", got)
	}
	if got := rows[0]["Journal"]; got != "Sleep Med" {
		t.Errorf("rows[0] Journal = %q (header should be trimmed)", got)
	}
	if _, ok := rows[1]["Journal"]; ok {
		t.Error("short row should not carry missing columns")
	}
	if got := rows[2]["Title"]; got != `Quoted "inner" title` {
		t.Errorf("rows[2] Title = %q", got)
	}
}

func TestReadCSV_StripsWrappingQuotes(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("Title\n\"\"\"Wrapped title\"\"\"\n"))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 1 || rows[0]["Title"] != "Wrapped title" {
		t.Errorf("rows = %v", rows)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}
