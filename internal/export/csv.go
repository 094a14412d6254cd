package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/echowater/hydrodb/internal/study"
)

// CSVHeader is the column order written by ToCSV.
var CSVHeader = []string{
	"Title", "Authors", "Year", "Journal", "Abstract", "DOI", "URL",
	"Topic", "Organism", "Body System", "Country", "Outcome", "Designation",
}

// ToCSV writes records as CSV with CSVHeader. Authors are joined with "; "
// and a missing year is an empty cell.
func ToCSV(w io.Writer, records []study.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for i := range records {
		rec := &records[i]
		year := ""
		if rec.HasYear() {
			year = strconv.Itoa(*rec.Year)
		}
		row := []string{
			rec.Title,
			strings.Join(rec.AllAuthors(), "; "),
			year,
			rec.Journal,
			rec.Abstract,
			rec.DOI,
			rec.URL,
			rec.Topic,
			rec.Organism,
			rec.BodySystem,
			rec.Country,
			rec.Outcome,
			rec.Designation,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
