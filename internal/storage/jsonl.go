// Package storage handles study persistence in JSONL and SQLite formats.
//
// The JSONL file is the source of truth and is meant to be committed to git.
// The SQLite database is an ephemeral query cache rebuilt from it.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/echowater/hydrodb/internal/study"
	"github.com/echowater/hydrodb/internal/textnorm"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all studies from a JSONL file.
func ReadAll(path string) ([]study.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Empty file returns empty slice
		}
		return nil, fmt.Errorf("opening studies file: %w", err)
	}
	defer f.Close()

	return readStudies(f)
}

func readStudies(r io.Reader) ([]study.Record, error) {
	var studies []study.Record
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec study.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("invalid study at line %d: missing id", lineNum)
		}
		studies = append(studies, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading studies file: %w", err)
	}

	return studies, nil
}

// writeStudyJSONL marshals a study to JSON and writes it as a JSONL line.
func writeStudyJSONL(w io.Writer, rec study.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding study %s: %w", rec.ID, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing study %s: %w", rec.ID, err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}
	return nil
}

// Append adds studies to the end of a JSONL file.
func Append(path string, recs ...study.Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening studies file for append: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, rec := range recs {
		if err := writeStudyJSONL(w, rec); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteAll writes all studies to a JSONL file, replacing existing content.
// The file is written next to path and renamed into place.
func WriteAll(path string, recs []study.Record) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating studies file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, rec := range recs {
		if err := writeStudyJSONL(w, rec); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flushing studies file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing studies file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing studies file: %w", err)
	}
	return nil
}

// FindByID searches for a study by ID.
func FindByID(recs []study.Record, id string) (int, bool) {
	for i, rec := range recs {
		if rec.ID == id {
			return i, true
		}
	}
	return -1, false
}

// FindByDOI searches for a study by DOI, ignoring case and doi.org prefixes.
func FindByDOI(recs []study.Record, doi string) (int, bool) {
	want := textnorm.DOI(doi)
	if want == "" {
		return -1, false
	}
	for i, rec := range recs {
		if rec.HasDOI() && textnorm.DOI(rec.DOI) == want {
			return i, true
		}
	}
	return -1, false
}

// GenerateUniqueID returns an ID that isn't in taken.
// If the base ID exists, appends -2, -3, etc.
func GenerateUniqueID(taken map[string]bool, baseID string) string {
	if !taken[baseID] {
		return baseID
	}

	// Start at 2: baseID is taken, so first duplicate becomes baseID-2
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", baseID, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

// IDSet returns the IDs of recs as a set.
func IDSet(recs []study.Record) map[string]bool {
	ids := make(map[string]bool, len(recs))
	for _, rec := range recs {
		ids[rec.ID] = true
	}
	return ids
}
