package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/echowater/hydrodb/internal/stats"
	"github.com/echowater/hydrodb/internal/study"
)

// FormatVersion is written into the metadata of JSON exports.
const FormatVersion = "2.0"

// Metadata describes a JSON export.
type Metadata struct {
	ExportDate   string `json:"export_date"`
	TotalStudies int    `json:"total_studies"`
	Version      string `json:"version"`
}

// Envelope is the document written by ToJSON.
type Envelope struct {
	Studies    []study.Record    `json:"studies"`
	Statistics *stats.Statistics `json:"statistics"`
	Metadata   Metadata          `json:"metadata"`
}

// ToJSON writes records with their statistics as one indented JSON document.
func ToJSON(w io.Writer, records []study.Record, now time.Time) error {
	if records == nil {
		records = []study.Record{}
	}
	env := Envelope{
		Studies:    records,
		Statistics: stats.Compute(records, now),
		Metadata: Metadata{
			ExportDate:   now.UTC().Format(time.RFC3339),
			TotalStudies: len(records),
			Version:      FormatVersion,
		},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
