package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/echowater/hydrodb/internal/study"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// studyColumns is the standard column list for SELECT queries.
var studyColumns = []string{
	"id", "source", "title", "journal", "doi", "abstract", "url", "year",
	"first_author", "other_authors_json", "last_author",
	"topic", "secondary_topic", "tertiary_topic",
	"organism", "body_system", "country", "outcome", "designation",
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS studies (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			title TEXT NOT NULL,
			journal TEXT,
			doi TEXT,
			abstract TEXT,
			url TEXT,
			year INTEGER,
			first_author TEXT,
			other_authors_json TEXT,
			last_author TEXT,
			topic TEXT,
			secondary_topic TEXT,
			tertiary_topic TEXT,
			organism TEXT,
			body_system TEXT,
			country TEXT,
			outcome TEXT,
			designation TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_studies_doi ON studies(doi) WHERE doi IS NOT NULL AND doi != '';
		CREATE INDEX IF NOT EXISTS idx_studies_year ON studies(year);

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS studies_fts USING fts5(
			id,
			title,
			abstract,
			authors_text,
			journal,
			topic_text
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	recs, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM studies"); err != nil {
		return 0, fmt.Errorf("clearing studies table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM studies_fts"); err != nil {
		return 0, fmt.Errorf("clearing studies_fts table: %w", err)
	}

	insertSQL, _, err := sq.Insert("studies").
		Columns(studyColumns...).
		Values(make([]interface{}, len(studyColumns))...).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building studies insert: %w", err)
	}
	studiesStmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing studies insert: %w", err)
	}
	defer studiesStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO studies_fts (id, title, abstract, authors_text, journal, topic_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, rec := range recs {
		var othersJSON []byte
		if len(rec.OtherAuthors) > 0 {
			othersJSON, err = json.Marshal(rec.OtherAuthors)
			if err != nil {
				return 0, fmt.Errorf("marshaling authors for %s: %w", rec.ID, err)
			}
		}

		var year sql.NullInt64
		if rec.Year != nil {
			year = sql.NullInt64{Int64: int64(*rec.Year), Valid: true}
		}

		_, err = studiesStmt.Exec(
			rec.ID, rec.Source, rec.Title,
			nullableStringValue(rec.Journal), nullableStringValue(rec.DOI),
			nullableStringValue(rec.Abstract), nullableStringValue(rec.URL), year,
			nullableStringValue(rec.FirstAuthor), nullableString(othersJSON), nullableStringValue(rec.LastAuthor),
			nullableStringValue(rec.Topic), nullableStringValue(rec.SecondaryTopic), nullableStringValue(rec.TertiaryTopic),
			nullableStringValue(rec.Organism), nullableStringValue(rec.BodySystem),
			nullableStringValue(rec.Country), nullableStringValue(rec.Outcome), nullableStringValue(rec.Designation),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting study %s: %w", rec.ID, err)
		}

		topicText := strings.Join(nonEmpty(rec.Topic, rec.SecondaryTopic, rec.TertiaryTopic), ", ")
		_, err = ftsStmt.Exec(rec.ID, rec.Title, rec.Abstract, strings.Join(rec.AllAuthors(), ", "), rec.Journal, topicText)
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(recs), nil
}

// GetByID retrieves a study by its ID. It returns nil when no study matches.
func (d *DB) GetByID(id string) (*study.Record, error) {
	query, args, err := sq.Select(studyColumns...).From("studies").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building lookup: %w", err)
	}
	return scanStudy(d.db.QueryRow(query, args...))
}

// Search performs a full-text search and returns matching studies.
func (d *DB) Search(query string, limit int) ([]study.Record, error) {
	return d.SearchWithFilters(SearchFilters{Keyword: query}, limit)
}

// SearchFilters contains optional filters for SearchWithFilters.
// Text filters other than Keyword and Authors are case-insensitive substring
// matches.
type SearchFilters struct {
	Keyword     string   // FTS over title, abstract, authors, journal and topics
	Authors     []string // Author names (AND logic, prefix matching)
	YearFrom    int      // Minimum publication year (0 = no minimum)
	YearTo      int      // Maximum publication year (0 = no maximum)
	Topic       string   // Any of the primary, secondary or tertiary topic
	Country     string
	Designation string
	Journal     string
	Source      string // Exact source tag
	DOI         string // Exact DOI match
}

// SearchWithFilters performs a search with multiple optional filters.
// Returns studies matching ALL specified criteria (AND logic), newest first.
// A limit of 0 returns every match.
func (d *DB) SearchWithFilters(filters SearchFilters, limit int) ([]study.Record, error) {
	q := sq.Select(studyColumns...).From("studies")

	var ftsTerms []string
	if kw := prepareFTSQuery(filters.Keyword); kw != "" {
		ftsTerms = append(ftsTerms, kw)
	}
	for _, author := range filters.Authors {
		if author = strings.TrimSpace(author); author != "" {
			ftsTerms = append(ftsTerms, "authors_text:"+prepareAuthorQuery(author))
		}
	}
	if len(ftsTerms) > 0 {
		q = q.Where("id IN (SELECT id FROM studies_fts WHERE studies_fts MATCH ?)", strings.Join(ftsTerms, " AND "))
	}

	if filters.YearFrom > 0 {
		q = q.Where(sq.GtOrEq{"year": filters.YearFrom})
	}
	if filters.YearTo > 0 {
		q = q.Where(sq.LtOrEq{"year": filters.YearTo})
	}
	if filters.Topic != "" {
		pattern := likePattern(filters.Topic)
		q = q.Where(sq.Or{
			sq.Like{"topic": pattern},
			sq.Like{"secondary_topic": pattern},
			sq.Like{"tertiary_topic": pattern},
		})
	}
	if filters.Country != "" {
		q = q.Where(sq.Like{"country": likePattern(filters.Country)})
	}
	if filters.Designation != "" {
		q = q.Where(sq.Like{"designation": likePattern(filters.Designation)})
	}
	if filters.Journal != "" {
		q = q.Where(sq.Like{"journal": likePattern(filters.Journal)})
	}
	if filters.Source != "" {
		q = q.Where(sq.Eq{"source": filters.Source})
	}
	if filters.DOI != "" {
		q = q.Where(sq.Eq{"doi": filters.DOI})
	}

	q = q.OrderBy("year IS NULL", "year DESC", "id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building search: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching with filters: %w", err)
	}
	defer rows.Close()

	return scanStudies(rows)
}

// prepareAuthorQuery prepares an author name for FTS5 search with prefix matching.
// It adds a wildcard (*) to enable fuzzy matching (e.g., "Tim" matches "Timothy").
func prepareAuthorQuery(author string) string {
	parts := strings.Fields(author)
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		escaped := strings.ReplaceAll(part, "\"", "\"\"")
		terms = append(terms, "\""+escaped+"\"*")
	}

	// Use OR for multi-word author queries (match any part)
	return "(" + strings.Join(terms, " OR ") + ")"
}

// ListAll returns all studies ordered by ID, optionally limited.
func (d *DB) ListAll(limit int) ([]study.Record, error) {
	q := sq.Select(studyColumns...).From("studies").OrderBy("id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list: %w", err)
	}
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing studies: %w", err)
	}
	defer rows.Close()

	return scanStudies(rows)
}

// Count returns the total number of studies.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM studies").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStudy(s scanner) (*study.Record, error) {
	var rec study.Record
	var journal, doi, abstract, url sql.NullString
	var firstAuthor, othersJSON, lastAuthor sql.NullString
	var topic, secondary, tertiary sql.NullString
	var organism, bodySystem, country, outcome, designation sql.NullString
	var year sql.NullInt64

	err := s.Scan(
		&rec.ID, &rec.Source, &rec.Title, &journal, &doi, &abstract, &url, &year,
		&firstAuthor, &othersJSON, &lastAuthor,
		&topic, &secondary, &tertiary,
		&organism, &bodySystem, &country, &outcome, &designation,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rec.Journal = journal.String
	rec.DOI = doi.String
	rec.Abstract = abstract.String
	rec.URL = url.String
	rec.FirstAuthor = firstAuthor.String
	rec.LastAuthor = lastAuthor.String
	rec.Topic = topic.String
	rec.SecondaryTopic = secondary.String
	rec.TertiaryTopic = tertiary.String
	rec.Organism = organism.String
	rec.BodySystem = bodySystem.String
	rec.Country = country.String
	rec.Outcome = outcome.String
	rec.Designation = designation.String

	if year.Valid {
		rec.Year = study.YearOf(int(year.Int64))
	}
	if othersJSON.Valid && othersJSON.String != "" {
		if err := json.Unmarshal([]byte(othersJSON.String), &rec.OtherAuthors); err != nil {
			return nil, fmt.Errorf("parsing authors JSON for %s: %w", rec.ID, err)
		}
	}

	return &rec, nil
}

func scanStudies(rows *sql.Rows) ([]study.Record, error) {
	var recs []study.Record
	for rows.Next() {
		rec, err := scanStudy(rows)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			recs = append(recs, *rec)
		}
	}
	return recs, rows.Err()
}

func nullableString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,/") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

func likePattern(s string) string {
	return "%" + strings.TrimSpace(s) + "%"
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

