package export

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/echowater/hydrodb/internal/study"
)

// ParquetRow is the flat row layout written by ToParquet.
type ParquetRow struct {
	ID             string `parquet:"id"`
	Source         string `parquet:"source"`
	Title          string `parquet:"title"`
	Authors        string `parquet:"authors"`
	FirstAuthor    string `parquet:"first_author"`
	LastAuthor     string `parquet:"last_author"`
	Year           *int64 `parquet:"year,optional"`
	Journal        string `parquet:"journal"`
	DOI            string `parquet:"doi"`
	Abstract       string `parquet:"abstract"`
	URL            string `parquet:"url"`
	Topic          string `parquet:"topic"`
	SecondaryTopic string `parquet:"secondary_topic"`
	TertiaryTopic  string `parquet:"tertiary_topic"`
	Organism       string `parquet:"organism"`
	BodySystem     string `parquet:"body_system"`
	Country        string `parquet:"country"`
	Outcome        string `parquet:"outcome"`
	Designation    string `parquet:"designation"`
}

// NewParquetRow flattens a record.
func NewParquetRow(rec study.Record) ParquetRow {
	row := ParquetRow{
		ID:             rec.ID,
		Source:         rec.Source,
		Title:          rec.Title,
		Authors:        strings.Join(rec.AllAuthors(), "; "),
		FirstAuthor:    rec.FirstAuthor,
		LastAuthor:     rec.LastAuthor,
		Journal:        rec.Journal,
		DOI:            rec.DOI,
		Abstract:       rec.Abstract,
		URL:            rec.URL,
		Topic:          rec.Topic,
		SecondaryTopic: rec.SecondaryTopic,
		TertiaryTopic:  rec.TertiaryTopic,
		Organism:       rec.Organism,
		BodySystem:     rec.BodySystem,
		Country:        rec.Country,
		Outcome:        rec.Outcome,
		Designation:    rec.Designation,
	}
	if rec.HasYear() {
		y := int64(*rec.Year)
		row.Year = &y
	}
	return row
}

// ToParquet writes records to a parquet file at path.
func ToParquet(path string, records []study.Record) error {
	rows := make([]ParquetRow, len(records))
	for i, rec := range records {
		rows[i] = NewParquetRow(rec)
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("writing parquet %s: %w", path, err)
	}
	return nil
}
