package dedupe

import (
	"errors"
	"fmt"

	"github.com/echowater/hydrodb/internal/study"
	"github.com/echowater/hydrodb/internal/textnorm"
)

// Errors returned for structurally invalid input. Missing optional fields are
// never errors.
var (
	// ErrNilRecord indicates a nil record where a study was expected.
	ErrNilRecord = errors.New("nil study record")

	// ErrNilIndex indicates classification was attempted without an index.
	ErrNilIndex = errors.New("nil duplicate index")
)

// Index is an immutable snapshot of an existing corpus keyed by match keys.
// It is safe for concurrent reads once Build returns.
type Index struct {
	buckets map[Key][]*study.Record
	order   []Key // keys in first-insertion order

	// entries holds each indexed record once, in bucket-iteration order,
	// with its comparison text precomputed.
	entries []entry
}

type entry struct {
	rec      *study.Record
	title    string // normalized title, "" when the record has none
	abstract string // normalized abstract, "" when the record has none
}

// Build indexes the existing corpus. Records sharing a key land in the same
// bucket in corpus order. The returned index holds pointers into records; the
// records themselves are never modified.
func Build(records []*study.Record) (*Index, error) {
	idx := &Index{buckets: make(map[Key][]*study.Record)}

	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("corpus record %d: %w", i, ErrNilRecord)
		}
		for _, key := range KeysFor(rec) {
			if _, ok := idx.buckets[key]; !ok {
				idx.order = append(idx.order, key)
			}
			idx.buckets[key] = append(idx.buckets[key], rec)
		}
	}

	seen := make(map[*study.Record]bool, len(records))
	for _, key := range idx.order {
		for _, rec := range idx.buckets[key] {
			if seen[rec] {
				continue
			}
			seen[rec] = true

			e := entry{rec: rec}
			if rec.HasTitle() {
				e.title = textnorm.Title(rec.Title)
			}
			if rec.HasAbstract() {
				e.abstract = textnorm.Abstract(rec.Abstract)
			}
			idx.entries = append(idx.entries, e)
		}
	}

	return idx, nil
}

// Lookup returns the records stored under key, or nil if none.
func (idx *Index) Lookup(key Key) []*study.Record {
	bucket := idx.buckets[key]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]*study.Record, len(bucket))
	copy(out, bucket)
	return out
}

// Records returns every distinct indexed record once.
// Records that produced no keys are not part of the index.
func (idx *Index) Records() []*study.Record {
	out := make([]*study.Record, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = e.rec
	}
	return out
}

// Len returns the number of distinct indexed records.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// KeyCount returns the number of distinct keys.
func (idx *Index) KeyCount() int {
	return len(idx.order)
}

func (idx *Index) first(key Key) *study.Record {
	if bucket := idx.buckets[key]; len(bucket) > 0 {
		return bucket[0]
	}
	return nil
}
