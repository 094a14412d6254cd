package scraper

import (
	"context"
	"fmt"

	"github.com/echowater/hydrodb/internal/importer"
	"github.com/echowater/hydrodb/internal/logger"
)

// Failure records a page that could not be fetched.
type Failure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Result is the outcome of one scrape run.
type Result struct {
	EntryURL  string         `json:"entry_url"`
	StudyURLs []string       `json:"study_urls"`
	Rows      []importer.Row `json:"-"`
	Failures  []Failure      `json:"failures,omitempty"`
}

// Scraper walks the study site and extracts one row per study page.
type Scraper struct {
	client   *Client
	maxPages int
	log      *logger.Logger
}

// New creates a Scraper. maxPages bounds the pagination fallback.
func New(client *Client, maxPages int, log *logger.Logger) *Scraper {
	if log == nil {
		log = logger.Nop()
	}
	return &Scraper{client: client, maxPages: maxPages, log: log}
}

// Scrape finds study links from the first reachable entry page, falling back
// to the paginated search listing when the entry page has none, and extracts
// each study page. Pages that fail are logged and skipped.
func (s *Scraper) Scrape(ctx context.Context) (*Result, error) {
	entryURL, urls, err := s.discoverFromEntry(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{EntryURL: entryURL}

	if len(urls) == 0 {
		s.log.Info("no study links on entry page, paginating", "entry", entryURL, "max_pages", s.maxPages)
		urls = s.discoverFromPages(ctx, res)
	}
	res.StudyURLs = urls
	s.log.Info("discovered study pages", "count", len(urls))

	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		doc, err := s.client.FetchDocument(ctx, u)
		if err != nil {
			s.log.Warn("skipping study page", "url", u, "error", err)
			res.Failures = append(res.Failures, Failure{URL: u, Error: err.Error()})
			continue
		}
		row := importer.RowFromDocument(doc, u)
		res.Rows = append(res.Rows, row)
		s.log.Debug("extracted study", "index", i+1, "url", u, "title", row["Title"])
	}

	return res, nil
}

func (s *Scraper) discoverFromEntry(ctx context.Context) (string, []string, error) {
	base := s.client.BaseURL()
	var lastErr error
	for _, path := range EntryPaths {
		u := base + path
		doc, err := s.client.FetchDocument(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return "", nil, ctx.Err()
			}
			s.log.Debug("entry page unavailable", "url", u, "error", err)
			lastErr = err
			continue
		}
		return u, DiscoverStudyURLs(doc, u), nil
	}
	return "", nil, fmt.Errorf("%w at %s: %v", ErrNoEntryPage, base, lastErr)
}

func (s *Scraper) discoverFromPages(ctx context.Context, res *Result) []string {
	base := s.client.BaseURL()
	seen := make(map[string]bool)
	var urls []string

	for page := 1; page <= s.maxPages; page++ {
		if ctx.Err() != nil {
			break
		}
		u := fmt.Sprintf("%s/search/?pg=%d", base, page)
		doc, err := s.client.FetchDocument(ctx, u)
		if err != nil {
			s.log.Warn("skipping listing page", "page", page, "error", err)
			res.Failures = append(res.Failures, Failure{URL: u, Error: err.Error()})
			continue
		}
		found := DiscoverStudyURLs(doc, u)
		s.log.Debug("listing page scanned", "page", page, "links", len(found))
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				urls = append(urls, f)
			}
		}
	}
	return urls
}
