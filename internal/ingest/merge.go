package ingest

import (
	"context"
	"fmt"

	"github.com/echowater/hydrodb/internal/config"
	"github.com/echowater/hydrodb/internal/dedupe"
	"github.com/echowater/hydrodb/internal/logger"
	"github.com/echowater/hydrodb/internal/storage"
	"github.com/echowater/hydrodb/internal/study"
)

// SourceResult reports what happened to one source during a merge.
type SourceResult struct {
	Name       string `json:"name"`
	Rows       int    `json:"rows"`     // records loaded
	Accepted   int    `json:"accepted"` // passed the title filter
	Rejected   int    `json:"rejected"`
	Duplicates int    `json:"duplicates"`
	Potential  int    `json:"potential_duplicates"`
	Added      int    `json:"added"`
	Err        error  `json:"-"`
	Error      string `json:"error,omitempty"`
}

// OK reports whether the source loaded.
func (r SourceResult) OK() bool { return r.Err == nil }

// MergeResult is the merged corpus and the per-source breakdown.
type MergeResult struct {
	Records []study.Record `json:"-"`
	Sources []SourceResult `json:"sources"`
}

// Merger merges sources into a corpus.
type Merger struct {
	Loader           *Loader
	MinTitleLength   int
	IncludePotential bool
	Workers          int
	Log              *logger.Logger
}

// Merge loads each source in order and adds its studies to the corpus that
// starts as existing. While the corpus is empty a source is taken whole;
// every later source is checked against the corpus built so far and only its
// non-duplicate studies are added. A source that fails to load is recorded
// and skipped.
func (m *Merger) Merge(ctx context.Context, existing []study.Record, sources []config.Source) (*MergeResult, error) {
	log := m.Log
	if log == nil {
		log = logger.Nop()
	}

	corpus := make([]study.Record, len(existing))
	copy(corpus, existing)
	res := &MergeResult{}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sr := SourceResult{Name: src.Name}
		recs, err := m.Loader.Load(src)
		if err != nil {
			log.Error("source failed to load", "source", src.Name, "error", err)
			sr.Err = err
			sr.Error = err.Error()
			res.Sources = append(res.Sources, sr)
			continue
		}

		accepted, rejected := Filter(recs, m.MinTitleLength)
		sr.Rows = len(recs)
		sr.Accepted = len(accepted)
		sr.Rejected = len(rejected)

		var added []study.Record
		if len(corpus) == 0 {
			added = accepted
		} else {
			check, err := Check(corpus, accepted, m.Workers)
			if err != nil {
				return nil, fmt.Errorf("source %s: %w", src.Name, err)
			}
			sr.Duplicates = check.Summary.Duplicates
			sr.Potential = check.Summary.PotentialDuplicates
			added = Kept(check, m.IncludePotential)
		}

		corpus = Absorb(corpus, added)
		sr.Added = len(added)
		log.Info("merged source", "source", src.Name, "accepted", sr.Accepted,
			"duplicates", sr.Duplicates, "potential", sr.Potential, "added", sr.Added)
		res.Sources = append(res.Sources, sr)
	}

	res.Records = corpus
	return res, nil
}

// Check classifies incoming against corpus.
func Check(corpus, incoming []study.Record, workers int) (*dedupe.Result, error) {
	idx, err := dedupe.Build(pointers(corpus))
	if err != nil {
		return nil, err
	}
	return dedupe.ClassifyAll(pointers(incoming), idx, dedupe.WithWorkers(workers))
}

// Kept returns copies of the records of res worth persisting, in input order.
func Kept(res *dedupe.Result, includePotential bool) []study.Record {
	kept := res.Keep(includePotential)
	out := make([]study.Record, len(kept))
	for i, rec := range kept {
		out[i] = *rec
	}
	return out
}

// Absorb appends recs to corpus, renaming any ID already taken.
func Absorb(corpus, recs []study.Record) []study.Record {
	taken := storage.IDSet(corpus)
	for _, rec := range recs {
		rec.ID = storage.GenerateUniqueID(taken, rec.ID)
		taken[rec.ID] = true
		corpus = append(corpus, rec)
	}
	return corpus
}

func pointers(recs []study.Record) []*study.Record {
	ptrs := make([]*study.Record, len(recs))
	for i := range recs {
		ptrs[i] = &recs[i]
	}
	return ptrs
}
