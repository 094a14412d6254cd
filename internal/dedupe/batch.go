package dedupe

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/echowater/hydrodb/internal/study"
)

// Match pairs an incoming record with the verdict it received.
type Match struct {
	Position int           `json:"position"` // index in the classified batch
	Record   *study.Record `json:"record"`
	Verdict
}

// Summary counts the outcome of a batch.
type Summary struct {
	Total               int     `json:"total"`
	Duplicates          int     `json:"duplicates"`
	PotentialDuplicates int     `json:"potential_duplicates"`
	Unique              int     `json:"unique"`
	DuplicateRate       float64 `json:"duplicate_rate"` // Duplicates/Total, 0 for an empty batch
}

// Result is the routed outcome of ClassifyAll. Each list preserves input order.
type Result struct {
	Duplicates          []Match `json:"duplicates"`
	PotentialDuplicates []Match `json:"potential_duplicates"`
	Unique              []Match `json:"unique"`
	Summary             Summary `json:"summary"`
}

// Keep returns the records worth persisting, in input order: every unique
// record plus, if includePotential is set, the potential duplicates.
// Confirmed duplicates are never kept.
func (r *Result) Keep(includePotential bool) []*study.Record {
	n := len(r.Unique)
	if includePotential {
		n += len(r.PotentialDuplicates)
	}
	kept := make([]*study.Record, 0, n)

	u, p := 0, 0
	for u < len(r.Unique) || (includePotential && p < len(r.PotentialDuplicates)) {
		takeUnique := u < len(r.Unique)
		if takeUnique && includePotential && p < len(r.PotentialDuplicates) {
			takeUnique = r.Unique[u].Position < r.PotentialDuplicates[p].Position
		}
		if takeUnique {
			kept = append(kept, r.Unique[u].Record)
			u++
		} else {
			kept = append(kept, r.PotentialDuplicates[p].Record)
			p++
		}
	}
	return kept
}

// Option configures ClassifyAll.
type Option func(*batchOptions)

type batchOptions struct {
	workers int
}

// WithWorkers classifies up to n records concurrently. Values below 2 run
// sequentially. Output order does not depend on n.
func WithWorkers(n int) Option {
	return func(o *batchOptions) {
		o.workers = n
	}
}

// ClassifyAll classifies every record against idx and routes it into
// duplicates, potential duplicates or unique. A nil record fails the whole
// batch.
func ClassifyAll(records []*study.Record, idx *Index, opts ...Option) (*Result, error) {
	if idx == nil {
		return nil, ErrNilIndex
	}
	o := batchOptions{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	verdicts := make([]Verdict, len(records))

	if o.workers < 2 {
		for i, rec := range records {
			v, err := Classify(rec, idx)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			verdicts[i] = v
		}
	} else {
		var g errgroup.Group
		g.SetLimit(o.workers)
		for i, rec := range records {
			g.Go(func() error {
				v, err := Classify(rec, idx)
				if err != nil {
					return fmt.Errorf("record %d: %w", i, err)
				}
				verdicts[i] = v
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Duplicates:          []Match{},
		PotentialDuplicates: []Match{},
		Unique:              []Match{},
	}
	for i, v := range verdicts {
		m := Match{Position: i, Record: records[i], Verdict: v}
		switch {
		case v.IsDuplicate:
			res.Duplicates = append(res.Duplicates, m)
		case v.IsPotentialDuplicate:
			res.PotentialDuplicates = append(res.PotentialDuplicates, m)
		default:
			res.Unique = append(res.Unique, m)
		}
	}

	res.Summary = Summary{
		Total:               len(records),
		Duplicates:          len(res.Duplicates),
		PotentialDuplicates: len(res.PotentialDuplicates),
		Unique:              len(res.Unique),
	}
	if len(records) > 0 {
		res.Summary.DuplicateRate = float64(len(res.Duplicates)) / float64(len(records))
	}

	return res, nil
}
