// Package ingest loads study sources, filters them and merges them into a
// de-duplicated corpus.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/echowater/hydrodb/internal/config"
	"github.com/echowater/hydrodb/internal/importer"
	"github.com/echowater/hydrodb/internal/logger"
	"github.com/echowater/hydrodb/internal/pdf"
	"github.com/echowater/hydrodb/internal/storage"
	"github.com/echowater/hydrodb/internal/study"
)

// Loader reads configured sources. Relative source paths resolve against Root.
type Loader struct {
	Root string
	Norm *importer.Normalizer
	Log  *logger.Logger
}

// NewLoader creates a loader for the repository at root.
func NewLoader(root string, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{Root: root, Norm: importer.NewNormalizer(log), Log: log}
}

// Load reads src and returns its normalized records with IDs <name>_<n>,
// n counting input rows from 1. JSONL sources keep their stored IDs.
// HTML and PDF sources may name a directory, in which case every matching
// file in it is read in name order.
func (l *Loader) Load(src config.Source) ([]study.Record, error) {
	if err := config.ValidateSource(src); err != nil {
		return nil, err
	}
	format, _ := config.SourceFormat(src)
	path := config.ResolvePath(l.Root, src.Path)

	switch format {
	case "csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", src.Name, err)
		}
		defer f.Close()
		rows, err := importer.ReadCSV(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.Name, err)
		}
		return l.Records(rows, src.Name), nil

	case "json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", src.Name, err)
		}
		rows, errs := importer.ReadJSON(data)
		if len(rows) == 0 && len(errs) > 0 {
			return nil, fmt.Errorf("read %s: %w", src.Name, errs[0])
		}
		for _, e := range errs {
			l.Log.Warn("skipping JSON entry", "source", src.Name, "error", e)
		}
		return l.Records(rows, src.Name), nil

	case "jsonl":
		recs, err := storage.ReadAll(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.Name, err)
		}
		for i := range recs {
			if recs[i].Source == "" {
				recs[i].Source = src.Name
			}
		}
		return recs, nil

	case "html":
		rows, err := l.readFiles(path, []string{".html", ".htm"}, func(p string) (importer.Row, error) {
			f, err := os.Open(p)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return importer.FromHTML(f, "")
		})
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.Name, err)
		}
		return l.Records(rows, src.Name), nil

	case "pdf":
		rows, err := l.readFiles(path, []string{".pdf"}, pdf.ExtractRow)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.Name, err)
		}
		return l.Records(rows, src.Name), nil
	}

	return nil, fmt.Errorf("source %s: unsupported format %q", src.Name, format)
}

// Records normalizes rows into records with IDs <source>_<n>.
func (l *Loader) Records(rows []importer.Row, source string) []study.Record {
	recs := make([]study.Record, 0, len(rows))
	for i, row := range rows {
		rec := l.Norm.FromRow(row, source)
		rec.ID = fmt.Sprintf("%s_%d", source, i+1)
		recs = append(recs, rec)
	}
	return recs
}

// readFiles extracts one row per file. A single file that fails is an error;
// within a directory, failing files are logged and skipped.
func (l *Loader) readFiles(path string, exts []string, extract func(string) (importer.Row, error)) ([]importer.Row, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		row, err := extract(path)
		if err != nil {
			return nil, err
		}
		return []importer.Row{row}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == want {
				names = append(names, e.Name())
				break
			}
		}
	}
	sort.Strings(names)

	rows := make([]importer.Row, 0, len(names))
	for _, name := range names {
		row, err := extract(filepath.Join(path, name))
		if err != nil {
			l.Log.Warn("skipping file", "file", name, "error", err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Filter splits records into those with a title longer than minTitleLength
// characters and those without.
func Filter(records []study.Record, minTitleLength int) (accepted, rejected []study.Record) {
	accepted = make([]study.Record, 0, len(records))
	for _, rec := range records {
		title := strings.TrimSpace(rec.Title)
		if title != "" && utf8.RuneCountInString(title) > minTitleLength {
			accepted = append(accepted, rec)
		} else {
			rejected = append(rejected, rec)
		}
	}
	return accepted, rejected
}
